package ports

import (
	"context"
	"traffic-monitor-service/internal/domain"
)

// Durably records fetch outcomes, one record per attempted fetch.
type ResponseSink interface {
	Store(ctx context.Context, outcome domain.FetchOutcome) error
}
