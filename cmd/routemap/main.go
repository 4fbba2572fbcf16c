// One-shot visualization tool: fetches every configured route once with
// a polyline field mask and renders a self-contained Leaflet map.
// Each run consumes one quota unit per route from the shared key pool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	polyline "github.com/twpayne/go-polyline"
	"go.uber.org/zap"

	"traffic-monitor-service/internal/adapters/routing"
	"traffic-monitor-service/internal/config"
	"traffic-monitor-service/internal/domain"
	"traffic-monitor-service/internal/platform/logx"
	"traffic-monitor-service/internal/services"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", config.Get("ROUTES_CONFIG", "config/routes.json"), "path to routes config JSON")
	outPath := flag.String("out", config.Get("MAP_OUTPUT", "output/routes_map.html"), "output HTML map path")
	flag.Parse()

	logger, err := logx.New(config.Get("LOGGING_LEVEL", "info"), "")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	routes, err := config.LoadRoutes(*configPath)
	if err != nil {
		logger.Fatal(err)
	}

	keys, err := config.APIKeysFromEnv()
	if err != nil {
		logger.Fatal(err)
	}

	limit := 4800
	if v := os.Getenv("KEY_USAGE_LIMIT"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			logger.Fatalf("KEY_USAGE_LIMIT must be an integer, got %q", v)
		}
	}

	pool, err := services.NewKeyPool(keys, limit)
	if err != nil {
		logger.Fatal(err)
	}

	provider := routing.NewGoogleRoutesProvider(routing.PolylineFieldMask)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	views := make([]routeView, 0, len(routes))
	for _, route := range routes {
		views = append(views, fetchRouteView(ctx, logger, provider, pool, route))
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}
	if err := renderMap(*outPath, views); err != nil {
		logger.Fatal(err)
	}

	logger.Infow("map written", "path", *outPath, "routes", len(views))
}

func fetchRouteView(
	ctx context.Context,
	logger *zap.SugaredLogger,
	provider *routing.GoogleRoutesProvider,
	pool *services.KeyPool,
	route domain.RouteSpec,
) routeView {
	view := routeView{
		ID:   route.ID,
		Name: route.Name,
		// Fallback path when no polyline is available: a straight
		// origin->destination line, rendered dashed.
		Path: [][]float64{
			{route.Origin.Lat, route.Origin.Lng},
			{route.Destination.Lat, route.Destination.Lng},
		},
	}

	key, err := pool.NextUsable()
	if err != nil {
		logger.Errorw("no usable API key", "route", route.ID, "error", err)
		view.Failed = true
		return view
	}

	outcome := provider.Fetch(ctx, route, key)
	if !outcome.OK() {
		logger.Errorw("route fetch failed", "route", route.ID, "reason", outcome.FailReason)
		view.Failed = true
		return view
	}
	pool.RecordSuccess(key)

	m := outcome.Metrics
	view.DurationMin = float64(m.DurationSeconds) / 60
	view.StaticMin = float64(m.StaticDurationSeconds) / 60
	view.DelayMin = float64(m.DelaySeconds) / 60
	view.DistanceKm = float64(m.DistanceMeters) / 1000
	view.Color = delayColor(m.DurationSeconds, m.StaticDurationSeconds)

	if m.EncodedPolyline != "" {
		coords, _, err := polyline.DecodeCoords([]byte(m.EncodedPolyline))
		if err != nil {
			logger.Errorw("decode polyline failed", "route", route.ID, "error", err)
		} else if len(coords) >= 2 {
			view.Path = coords
		}
	}

	return view
}

// Color the route line by how much live traffic inflates the free-flow
// duration.
func delayColor(duration, static int) string {
	if static <= 0 {
		return "gray"
	}
	ratio := float64(duration) / float64(static)
	switch {
	case ratio >= 1.3:
		return "red"
	case ratio >= 1.1:
		return "orange"
	default:
		return "green"
	}
}

func popupText(v routeView) string {
	if v.Failed {
		return fmt.Sprintf("%s (%s): no data", v.Name, v.ID)
	}
	return fmt.Sprintf("%s (%s): %.0f min live / %.0f min free-flow, %.1f km",
		v.Name, v.ID, v.DurationMin, v.StaticMin, v.DistanceKm)
}
