// Package config centralizes startup configuration: the routes file,
// API key discovery and env helpers. Everything here is loaded once at
// startup; failures are fatal before the collection loop starts.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"traffic-monitor-service/internal/domain"
)

// Returned for any fatal startup configuration problem.
var ErrConfiguration = errors.New("configuration error")

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// Read an environment variable with a fallback default.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type routesFile struct {
	Routes []domain.RouteSpec `json:"routes"`
}

// Load the monitored routes from a JSON config file.
// The file carries a routes array; order is preserved and becomes the
// fetch order within every collection cycle. Missing file, malformed
// JSON, an empty list or invalid entries are configuration errors.
func LoadRoutes(path string) ([]domain.RouteSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read routes config %q: %v", ErrConfiguration, path, err)
	}

	var cfg routesFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse routes config %q: %v", ErrConfiguration, path, err)
	}

	if len(cfg.Routes) == 0 {
		return nil, fmt.Errorf("%w: routes config %q contains no routes", ErrConfiguration, path)
	}

	seen := make(map[string]struct{}, len(cfg.Routes))
	for _, r := range cfg.Routes {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: routes config %q: %v", ErrConfiguration, path, err)
		}
		if _, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("%w: routes config %q: duplicate route id %q", ErrConfiguration, path, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	return cfg.Routes, nil
}

const (
	apiKeyPrefix   = "ROUTES_API_KEY_"
	apiKeyFallback = "ROUTES_API_KEY"
)

// Scan the environment for API keys.
// Numbered variables (ROUTES_API_KEY_1, ROUTES_API_KEY_2, ...) are read
// until the sequence breaks; when none are set, the single
// ROUTES_API_KEY variable is tried. The returned order is the
// rotation order. No keys at all is a configuration error.
func APIKeysFromEnv() ([]string, error) {
	var keys []string
	for i := 1; ; i++ {
		key := strings.TrimSpace(os.Getenv(fmt.Sprintf("%s%d", apiKeyPrefix, i)))
		if key == "" {
			break
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		if key := strings.TrimSpace(os.Getenv(apiKeyFallback)); key != "" {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no API keys found, set %s or %s1 in the environment or .env",
			ErrConfiguration, apiKeyFallback, apiKeyPrefix)
	}

	return keys, nil
}
