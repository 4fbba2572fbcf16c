package ports

import (
	"context"
	"traffic-monitor-service/internal/domain"
)

// Contract for issuing one routing request for one route.
// Fetch never returns a Go error: every transport or parse failure is
// captured as a Failure outcome so the collection loop can keep going.
// Implementations must not touch credential usage state; the caller
// records usage, and only on success.
type RouteProvider interface {
	Fetch(ctx context.Context, route domain.RouteSpec, apiKey string) domain.FetchOutcome
}
