package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deals-dashboard/internal/api"
	"deals-dashboard/internal/auth"
	"deals-dashboard/internal/config"
	"deals-dashboard/internal/openmercato"
	"deals-dashboard/internal/ratelimit"
	"deals-dashboard/internal/services"
	"deals-dashboard/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting deals dashboard", "port", cfg.HTTPPort, "upstream", cfg.APIBaseURL)
	if cfg.APIKey == "" {
		slog.Warn("OPEN_MERCATO_API_KEY is not set; the page will show a configuration error")
	}

	location, _ := time.LoadLocation(cfg.Timezone)
	formatter, err := api.NewFormatter(cfg.Locale, location)
	if err != nil {
		slog.Error("Invalid display settings", "error", err)
		os.Exit(1)
	}

	var limiter api.RateLimiter
	if cfg.RedisAddr != "" {
		redisLimiter, err := ratelimit.NewLimiter(cfg.RedisAddr, cfg.RateLimitPerMinute)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisLimiter.Close()
		limiter = redisLimiter
		slog.Info("Connected to Redis", "addr", cfg.RedisAddr, "per_minute", cfg.RateLimitPerMinute)
	}

	client := openmercato.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout})
	dealService := services.NewDealService(cfg, client)

	handler, err := api.NewHandler(dealService, limiter, formatter)
	if err != nil {
		slog.Error("Failed to build handler", "error", err)
		os.Exit(1)
	}

	pageHandler := handler.DealsPage
	if cfg.JWTSecret != "" {
		pageHandler = auth.NewMiddleware(cfg.JWTSecret).ValidateToken(pageHandler)
		slog.Info("Dashboard requires a signed token")
	}

	mux := http.NewServeMux()

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", handler.Health)
	mux.HandleFunc("GET /{$}", telemetry.Middleware("/", pageHandler))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           telemetry.RequestID(telemetry.RequestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("Shutting down")
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
