package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"traffic-monitor-service/internal/domain"
)

// Scripted outcome for one route, keyed by route ID.
type MockFetch struct {
	RouteID    string
	Metrics    domain.RouteMetrics
	FailReason string
}

type MockCall struct {
	RouteID string
	Key     string
}

// In-memory RouteProvider for loop tests. Records every call so tests
// can assert on fetch order and key assignment.
type MockRouteProvider struct {
	m     map[string]MockFetch
	Calls []MockCall
}

func NewMockRouteProvider(fetches []MockFetch) *MockRouteProvider {
	m := make(map[string]MockFetch, len(fetches))
	for _, f := range fetches {
		m[f.RouteID] = f
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Fetch(
	_ context.Context,
	route domain.RouteSpec,
	apiKey string,
) domain.FetchOutcome {
	p.Calls = append(p.Calls, MockCall{RouteID: route.ID, Key: apiKey})

	at := time.Now()
	suffix := domain.MaskKey(apiKey)

	f, ok := p.m[route.ID]
	if !ok {
		return domain.FailureOutcome(route, at, suffix, fmt.Sprintf("no scripted outcome for route %q", route.ID))
	}
	if f.FailReason != "" {
		return domain.FailureOutcome(route, at, suffix, f.FailReason)
	}

	return domain.SuccessOutcome(route, at, suffix, f.Metrics, json.RawMessage(`{"routes":[]}`))
}
