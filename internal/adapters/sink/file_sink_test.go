package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"traffic-monitor-service/internal/domain"
)

var sinkRoute = domain.RouteSpec{
	ID:   "R01",
	Name: "Station Square -> Airport",
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStoreSuccessOutcome(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	outcome := domain.SuccessOutcome(sinkRoute, at, "...1234",
		domain.RouteMetrics{DurationSeconds: 1080, StaticDurationSeconds: 900, DelaySeconds: 180, DistanceMeters: 5200},
		json.RawMessage(`{"routes":[{"duration":"1080s"}]}`))

	if err := s.Store(context.Background(), outcome); err != nil {
		t.Fatalf("store: %v", err)
	}

	files := listFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("expected exactly 1 record file, got %d: %v", len(files), files)
	}
	if files[0] != "R01_20260314_093000.json" {
		t.Errorf("file name = %q", files[0])
	}

	data, err := os.ReadFile(filepath.Join(dir, files[0]))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	var rec struct {
		Timestamp    string          `json:"timestamp"`
		RouteID      string          `json:"route_id"`
		RouteName    string          `json:"route_name"`
		APIKeySuffix string          `json:"api_key_suffix"`
		Response     json.RawMessage `json:"response"`
		Error        string          `json:"error"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("parse record: %v", err)
	}

	if rec.RouteID != "R01" || rec.RouteName != sinkRoute.Name {
		t.Errorf("record route = %q / %q", rec.RouteID, rec.RouteName)
	}
	if rec.APIKeySuffix != "...1234" {
		t.Errorf("key suffix = %q", rec.APIKeySuffix)
	}
	if len(rec.Response) == 0 {
		t.Error("raw response missing from record")
	}
	if rec.Error != "" {
		t.Errorf("success record carries error %q", rec.Error)
	}
}

func TestStoreFailureOutcome(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	outcome := domain.FailureOutcome(sinkRoute, at, "...1234", "request timed out")

	if err := s.Store(context.Background(), outcome); err != nil {
		t.Fatalf("store: %v", err)
	}

	files := listFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("expected exactly 1 record file, got %d", len(files))
	}

	data, err := os.ReadFile(filepath.Join(dir, files[0]))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if rec["error"] != "request timed out" {
		t.Errorf("error field = %v", rec["error"])
	}
	if _, ok := rec["response"]; ok {
		t.Error("failure record must not carry a response")
	}
}

// Two attempts in the same second must produce two files.
func TestStoreSameSecondCollision(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		outcome := domain.FailureOutcome(sinkRoute, at, "...1234", "request timed out")
		if err := s.Store(context.Background(), outcome); err != nil {
			t.Fatalf("store %d: %v", i, err)
		}
	}

	if files := listFiles(t, dir); len(files) != 2 {
		t.Fatalf("expected 2 record files, got %d: %v", len(files), files)
	}
}

func TestNewFileSinkCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "raw")
	if _, err := NewFileSink(dir); err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
}
