package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"traffic-monitor-service/internal/domain"
	"traffic-monitor-service/internal/platform/obs"
)

const (
	defaultEndpoint = "https://routes.googleapis.com/directions/v2:computeRoutes"

	// Broad mask used by the collection loop; the raw response is kept
	// whole in the per-call record.
	MonitorFieldMask = "routes,geocodingResults,fallbackInfo"

	// Narrow mask for map rendering: metrics plus the encoded polyline.
	PolylineFieldMask = "routes.duration,routes.staticDuration,routes.distanceMeters,routes.polyline.encodedPolyline"

	// Departure a little ahead of now so the timestamp never lapses
	// before the provider validates it.
	departureLead = time.Minute

	requestTimeout = 10 * time.Second
)

// RouteProvider backed by the Google Routes API v2 computeRoutes
// endpoint. Stateless besides the shared HTTP client; the API key is
// supplied per call so the caller controls rotation.
type GoogleRoutesProvider struct {
	session   *http.Client
	endpoint  string
	fieldMask string
	now       func() time.Time
}

func NewGoogleRoutesProvider(fieldMask string) *GoogleRoutesProvider {
	if fieldMask == "" {
		fieldMask = MonitorFieldMask
	}
	return &GoogleRoutesProvider{
		session:   &http.Client{Timeout: requestTimeout},
		endpoint:  defaultEndpoint,
		fieldMask: fieldMask,
		now:       time.Now,
	}
}

type waypoint struct {
	Location struct {
		LatLng domain.Coordinates `json:"latLng"`
	} `json:"location"`
}

func makeWaypoint(c domain.Coordinates) waypoint {
	var w waypoint
	w.Location.LatLng = c
	return w
}

type computeRoutesRequest struct {
	Origin                   waypoint `json:"origin"`
	Destination              waypoint `json:"destination"`
	TravelMode               string   `json:"travelMode"`
	RoutingPreference        string   `json:"routingPreference"`
	DepartureTime            string   `json:"departureTime"`
	ComputeAlternativeRoutes bool     `json:"computeAlternativeRoutes"`
}

type computeRoutesResponse struct {
	Routes []struct {
		Duration       string `json:"duration"`
		StaticDuration string `json:"staticDuration"`
		DistanceMeters int    `json:"distanceMeters"`
		Polyline       struct {
			EncodedPolyline string `json:"encodedPolyline"`
		} `json:"polyline"`
	} `json:"routes"`
}

// Issue one computeRoutes request for the route with the given key.
// Every failure path (timeout, connection error, non-2xx, malformed
// body, missing route) comes back as a Failure outcome, never as a Go
// error: one bad call must not be able to stop the collection loop.
func (g *GoogleRoutesProvider) Fetch(
	ctx context.Context,
	route domain.RouteSpec,
	apiKey string,
) domain.FetchOutcome {
	var err error
	defer obs.Time(ctx, "routing.Fetch")(&err)

	at := g.now()
	suffix := domain.MaskKey(apiKey)

	fail := func(reason string) domain.FetchOutcome {
		err = errors.New(reason)
		return domain.FailureOutcome(route, at, suffix, reason)
	}

	reqBody := computeRoutesRequest{
		Origin:                   makeWaypoint(route.Origin),
		Destination:              makeWaypoint(route.Destination),
		TravelMode:               "DRIVE",
		RoutingPreference:        "TRAFFIC_AWARE_OPTIMAL",
		DepartureTime:            at.UTC().Add(departureLead).Format(time.RFC3339),
		ComputeAlternativeRoutes: true,
	}

	payload, merr := json.Marshal(reqBody)
	if merr != nil {
		return fail(fmt.Sprintf("marshal request: %v", merr))
	}

	resp, derr := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, apiKey, bytes.NewReader(payload))
	})
	if derr != nil {
		return fail(requestFailReason(derr))
	}
	defer resp.Body.Close()

	raw, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return fail(fmt.Sprintf("read response body: %v", rerr))
	}

	metrics, perr := parseRouteMetrics(raw)
	if perr != nil {
		return fail(perr.Error())
	}

	return domain.SuccessOutcome(route, at, suffix, metrics, json.RawMessage(raw))
}

// Parse the first route of a computeRoutes response body into metrics.
// Kept as a pure function: the provider's duration encoding (integer
// seconds with a trailing unit) is a wire-format coupling that wants
// exhaustive malformed-input tests of its own.
func parseRouteMetrics(raw []byte) (domain.RouteMetrics, error) {
	var body computeRoutesResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.RouteMetrics{}, fmt.Errorf("decode response: %v", err)
	}

	if len(body.Routes) == 0 {
		return domain.RouteMetrics{}, errors.New("no route in response")
	}

	first := body.Routes[0]

	duration, err := parseSeconds(first.Duration)
	if err != nil {
		return domain.RouteMetrics{}, fmt.Errorf("parse duration: %v", err)
	}

	static, err := parseSeconds(first.StaticDuration)
	if err != nil {
		return domain.RouteMetrics{}, fmt.Errorf("parse staticDuration: %v", err)
	}

	return domain.RouteMetrics{
		DurationSeconds:       duration,
		StaticDurationSeconds: static,
		DelaySeconds:          duration - static,
		DistanceMeters:        first.DistanceMeters,
		EncodedPolyline:       first.Polyline.EncodedPolyline,
	}, nil
}

// Decode the provider's "<N>s" duration encoding into whole seconds.
func parseSeconds(s string) (int, error) {
	v, ok := strings.CutSuffix(s, "s")
	if !ok {
		return 0, fmt.Errorf("duration %q missing trailing unit", s)
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("duration %q is not numeric", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("duration %q is negative", s)
	}

	return n, nil
}

// Flatten a transport error into a reason string for the outcome.
func requestFailReason(err error) string {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Error()
	}

	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return "request timed out"
	}

	return fmt.Sprintf("request failed: %v", err)
}
