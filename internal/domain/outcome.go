package domain

import (
	"encoding/json"
	"time"
)

// Travel metrics parsed from a successful routing response.
// DelaySeconds is derived as DurationSeconds - StaticDurationSeconds and
// can be negative when live traffic beats the free-flow estimate.
// EncodedPolyline is only populated when the field mask asked for it.
type RouteMetrics struct {
	DurationSeconds       int
	StaticDurationSeconds int
	DelaySeconds          int
	DistanceMeters        int
	EncodedPolyline       string
}

// Result of one fetch attempt for one route.
// Exactly one of Metrics/Raw (success) or FailReason (failure) is set;
// an outcome is never partially populated.
type FetchOutcome struct {
	Route      RouteSpec
	FetchedAt  time.Time
	KeySuffix  string
	Metrics    *RouteMetrics
	Raw        json.RawMessage
	FailReason string
}

func (o FetchOutcome) OK() bool { return o.FailReason == "" }

// Show only the last 4 characters of an API key for display and logs.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "..." + key
	}
	return "..." + key[len(key)-4:]
}

// Build a success outcome.
func SuccessOutcome(route RouteSpec, at time.Time, keySuffix string, m RouteMetrics, raw json.RawMessage) FetchOutcome {
	return FetchOutcome{
		Route:     route,
		FetchedAt: at,
		KeySuffix: keySuffix,
		Metrics:   &m,
		Raw:       raw,
	}
}

// Build a failure outcome with a human-readable reason.
func FailureOutcome(route RouteSpec, at time.Time, keySuffix string, reason string) FetchOutcome {
	if reason == "" {
		reason = "unknown failure"
	}
	return FetchOutcome{
		Route:      route,
		FetchedAt:  at,
		KeySuffix:  keySuffix,
		FailReason: reason,
	}
}
