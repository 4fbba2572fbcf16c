package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/heptiolabs/healthcheck"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"traffic-monitor-service/internal/adapters/routing"
	"traffic-monitor-service/internal/adapters/sink"
	"traffic-monitor-service/internal/config"
	"traffic-monitor-service/internal/platform/logx"
	"traffic-monitor-service/internal/services"
)

// Google allows 5000 free computeRoutes calls per key per month; stay
// a little under it.
const defaultUsageLimit = 4800

// main is the application composition root.
// It wires the routing provider and file sink behind ports, builds the
// key pool from the environment and runs the collection loop until the
// process is interrupted.
func main() {
	dotenvErr := godotenv.Load()

	configPath := flag.String("config", config.Get("ROUTES_CONFIG", "config/routes.json"), "path to routes config JSON")
	outputDir := flag.String("output", config.Get("OUTPUT_DIR", "data/raw"), "output directory for raw responses")
	logFile := flag.String("log-file", config.Get("LOG_FILE", "traffic_monitor.log"), "log file path")
	flag.Parse()

	logger, err := logx.New(config.Get("LOGGING_LEVEL", "info"), *logFile)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if dotenvErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	routes, err := config.LoadRoutes(*configPath)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infow("routes loaded", "count", len(routes), "path", *configPath)

	keys, err := config.APIKeysFromEnv()
	if err != nil {
		logger.Fatal(err)
	}

	limit := defaultUsageLimit
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
	logger.Infow("API keys loaded", "count", pool.Len(), "usage_limit", limit)

	responseSink, err := sink.NewFileSink(*outputDir)
	if err != nil {
		logger.Fatal(err)
	}

	provider := routing.NewGoogleRoutesProvider(routing.MonitorFieldMask)

	startHealthcheck(config.Get("HEALTH_ADDR", ":8086"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := services.NewCollector(routes, pool, provider, responseSink, logger)
	_ = collector.Run(ctx)

	logger.Infow("usage at shutdown", "usage", pool.UsageSnapshot())
}

// Expose a liveness endpoint for container orchestration.
func startHealthcheck(addr string) {
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(500))
	go func() {
		/* #nosec G114 */
		if err := http.ListenAndServe(addr, health); err != nil {
			zap.S().Errorw("healthcheck listener failed", "addr", addr, "error", err)
		}
	}()
}
