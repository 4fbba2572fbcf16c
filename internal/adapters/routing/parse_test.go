package routing

import (
	"testing"
)

func TestParseSeconds(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1080s", 1080, false},
		{"0s", 0, false},
		{"7s", 7, false},
		{"abc", 0, true},
		{"", 0, true},
		{"1080", 0, true},
		{"s", 0, true},
		{"12.5s", 0, true},
		{"-5s", 0, true},
		{"1080ss", 0, true},
	}

	for _, tc := range cases {
		got, err := parseSeconds(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseSeconds(%q) = %d, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSeconds(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseSeconds(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseRouteMetrics(t *testing.T) {
	raw := []byte(`{
		"routes": [{
			"duration": "1080s",
			"staticDuration": "900s",
			"distanceMeters": 5200,
			"polyline": {"encodedPolyline": "abc123"}
		}]
	}`)

	m, err := parseRouteMetrics(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.DurationSeconds != 1080 {
		t.Errorf("duration = %d, want 1080", m.DurationSeconds)
	}
	if m.StaticDurationSeconds != 900 {
		t.Errorf("staticDuration = %d, want 900", m.StaticDurationSeconds)
	}
	if m.DelaySeconds != 180 {
		t.Errorf("delay = %d, want 180", m.DelaySeconds)
	}
	if m.DistanceMeters != 5200 {
		t.Errorf("distance = %d, want 5200", m.DistanceMeters)
	}
	if m.EncodedPolyline != "abc123" {
		t.Errorf("polyline = %q, want abc123", m.EncodedPolyline)
	}
}

func TestParseRouteMetricsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not JSON", `{{{`},
		{"empty routes", `{"routes": []}`},
		{"missing routes", `{"fallbackInfo": {}}`},
		{"missing duration", `{"routes": [{"staticDuration": "900s", "distanceMeters": 1}]}`},
		{"non-numeric duration", `{"routes": [{"duration": "abcs", "staticDuration": "900s"}]}`},
		{"missing static duration", `{"routes": [{"duration": "900s", "distanceMeters": 1}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseRouteMetrics([]byte(tc.raw)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
