// Package sink persists fetch outcomes as flat per-call JSON files,
// one file per attempted fetch under a single output directory.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"traffic-monitor-service/internal/domain"
	"traffic-monitor-service/internal/platform/obs"
)

// File layout of one record. Either Response (raw provider body) or
// Error is populated, matching the outcome.
type record struct {
	Timestamp    string          `json:"timestamp"`
	RouteID      string          `json:"route_id"`
	RouteName    string          `json:"route_name"`
	APIKeySuffix string          `json:"api_key_suffix"`
	Response     json.RawMessage `json:"response,omitempty"`
	Error        string          `json:"error,omitempty"`
}

type FileSink struct {
	dir string
}

// Create a sink writing into dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("new file sink: output directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("new file sink: create output directory %q: %w", dir, err)
	}
	return &FileSink{dir: dir}, nil
}

// Write one record for the outcome as <routeID>_<YYYYMMDD_HHMMSS>.json.
// When two attempts for the same route land within the same second, a
// numeric suffix keeps the second attempt from overwriting the first.
func (s *FileSink) Store(ctx context.Context, outcome domain.FetchOutcome) (err error) {
	defer obs.Time(ctx, "sink.Store")(&err)

	rec := record{
		Timestamp:    outcome.FetchedAt.Format(time.RFC3339),
		RouteID:      outcome.Route.ID,
		RouteName:    outcome.Route.Name,
		APIKeySuffix: outcome.KeySuffix,
	}
	if outcome.OK() {
		rec.Response = outcome.Raw
	} else {
		rec.Error = outcome.FailReason
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("store outcome: marshal record: %w", err)
	}

	stamp := outcome.FetchedAt.Format("20060102_150405")
	base := fmt.Sprintf("%s_%s", outcome.Route.ID, stamp)

	path := filepath.Join(s.dir, base+".json")
	for n := 1; ; n++ {
		if _, serr := os.Stat(path); os.IsNotExist(serr) {
			break
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", base, n))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store outcome: write %q: %w", path, err)
	}

	return nil
}
