package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fulfillment/cmd"
	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configs := getConfigs()

	app, err := cmd.NewCompositionRoot(configs, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	metrics.Register()
	app.Start()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}

	e := newWebServer(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			e.Logger.Fatal(startErr)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	jobManager.StopAll()
	if err = app.Stop(shutdownCtx); err != nil {
		logger.Error("Notification queue did not drain", "error", err)
	}
}

func getConfigs() cmd.Config {
	// A missing .env is fine when the environment is set directly.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	return cmd.Config{
		HTTPPort:                  envOr("HTTP_PORT", "8080"),
		DBDriver:                  envOr("DB_DRIVER", cmd.StoragePostgres),
		DSN:                       os.Getenv("DSN"),
		DBHost:                    envOr("DB_HOST", "localhost"),
		DBPort:                    envOr("DB_PORT", "5432"),
		DBUser:                    os.Getenv("DB_USER"),
		DBPassword:                os.Getenv("DB_PASSWORD"),
		DBName:                    os.Getenv("DB_NAME"),
		DBSslMode:                 envOr("DB_SSLMODE", "disable"),
		AutoDispatchSchedule:      envOr("AUTO_DISPATCH_SCHEDULE", "*/5 * * * * *"),
		AutoDispatchBatch:         intEnv("AUTO_DISPATCH_BATCH", 20),
		ReconciliationSchedule:    envOr("RECONCILIATION_SCHEDULE", "0 * * * * *"),
		NotificationQueueSize:     intEnv("NOTIFICATION_QUEUE_SIZE", 1024),
		NotificationWorkers:       intEnv("NOTIFICATION_WORKERS", 2),
		CourierSpeedKmh:           floatEnv("COURIER_SPEED_KMH", 25),
		DispatchMaxDistanceMeters: floatEnv("DISPATCH_MAX_DISTANCE_METERS", 10_000),
		DispatchCandidateLimit:    intEnv("DISPATCH_CANDIDATE_LIMIT", 10),
	}
}

// envOr returns fallback only when key is unset; an empty value disables
// optional features such as job schedules.
func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return value
}

func floatEnv(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return value
}

func newWebServer(app *cmd.CompositionRoot) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := httpadapter.Register(e, app.CreateHTTPServer()); err != nil {
		log.Fatalf("Failed to register API routes: %v", err)
	}

	return e
}
