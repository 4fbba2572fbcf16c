package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleRoutes = `{
  "routes": [
    {
      "id": "R01",
      "name": "Station Square -> Airport",
      "origin": {"lat": 41.7086, "lng": 44.7995},
      "destination": {"lat": 41.6692, "lng": 44.9547}
    },
    {
      "id": "R02",
      "name": "Old Town -> University",
      "origin": {"lat": 41.6934, "lng": 44.8015},
      "destination": {"lat": 41.7101, "lng": 44.7462}
    }
  ]
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRoutes(t *testing.T) {
	path := writeConfig(t, sampleRoutes)

	routes, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].ID != "R01" || routes[1].ID != "R02" {
		t.Fatalf("route order not preserved: %q, %q", routes[0].ID, routes[1].ID)
	}
	if routes[0].Origin.Lat != 41.7086 {
		t.Fatalf("origin lat = %v, want 41.7086", routes[0].Origin.Lat)
	}
}

// Loading the same file twice must yield identical sequences.
func TestLoadRoutesIdempotent(t *testing.T) {
	path := writeConfig(t, sampleRoutes)

	first, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("loads differ: %v vs %v", first, second)
	}
}

func TestLoadRoutesErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"malformed JSON", `{"routes": [`},
		{"empty routes", `{"routes": []}`},
		{"missing routes key", `{}`},
		{"blank id", `{"routes": [{"id": "", "name": "x", "origin": {"lat": 0, "lng": 0}, "destination": {"lat": 1, "lng": 1}}]}`},
		{"duplicate id", `{"routes": [
			{"id": "A", "name": "x", "origin": {"lat": 0, "lng": 0}, "destination": {"lat": 1, "lng": 1}},
			{"id": "A", "name": "y", "origin": {"lat": 0, "lng": 0}, "destination": {"lat": 1, "lng": 1}}
		]}`},
		{"latitude out of range", `{"routes": [{"id": "A", "name": "x", "origin": {"lat": 95, "lng": 0}, "destination": {"lat": 1, "lng": 1}}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := LoadRoutes(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !IsConfigurationError(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoadRoutesMissingFile(t *testing.T) {
	_, err := LoadRoutes(filepath.Join(t.TempDir(), "nope.json"))
	if !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

// Mask any ambient keys so tests see a clean environment.
func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ROUTES_API_KEY", "")
	for i := 1; i <= 8; i++ {
		t.Setenv(fmt.Sprintf("ROUTES_API_KEY_%d", i), "")
	}
}

func TestAPIKeysFromEnvNumbered(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("ROUTES_API_KEY_1", "key-one-1111")
	t.Setenv("ROUTES_API_KEY_2", "key-two-2222")

	keys, err := APIKeysFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0] != "key-one-1111" || keys[1] != "key-two-2222" {
		t.Fatalf("wrong key order: %v", keys)
	}
}

// The scan stops at the first gap in the numbered sequence.
func TestAPIKeysFromEnvSequenceBreak(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("ROUTES_API_KEY_1", "key-one-1111")
	t.Setenv("ROUTES_API_KEY_3", "key-three-3333")

	keys, err := APIKeysFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "key-one-1111" {
		t.Fatalf("expected only the first key, got %v", keys)
	}
}

func TestAPIKeysFromEnvFallback(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("ROUTES_API_KEY", "single-key-9999")

	keys, err := APIKeysFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "single-key-9999" {
		t.Fatalf("expected fallback key, got %v", keys)
	}
}

func TestAPIKeysFromEnvNone(t *testing.T) {
	clearKeyEnv(t)

	_, err := APIKeysFromEnv()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
