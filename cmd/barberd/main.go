package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"barberia/internal/api"
	"barberia/internal/availability"
	"barberia/internal/barberapi"
	"barberia/internal/booking"
	"barberia/internal/config"
	"barberia/internal/events"
	"barberia/internal/metrics"
	"barberia/internal/snapshot"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("BARBERIA_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Booking.Timezone).Msg("unknown booking timezone")
	}

	client := barberapi.NewClient(cfg.BookingAPI.BaseURL, cfg.APITimeout())
	if cfg.BookingAPI.RatePerSecond > 0 {
		client.UseRateLimit(barberapi.NewRateLimiter(cfg.BookingAPI.RatePerSecond, cfg.BookingAPI.RateBurst))
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.BookingAPI.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	store := snapshot.NewStore(client, logger)
	store.Bind(bus)

	engine := availability.New(loc)
	submitter := booking.NewSubmitter(client, bus, logger)
	sessions := booking.NewSessionStore(cfg.SessionTimeout())

	// Prime the snapshot before serving; core collections are required.
	primeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	year := time.Now().In(loc).Year()
	if err := store.Refresh(primeCtx, year); err != nil {
		logger.Error().Err(err).Msg("initial snapshot load failed; serving 503 until a refresh succeeds")
	}
	cancel()
	store.Watch(ctx, cfg.RefreshInterval())

	go sessionCleanupLoop(ctx, sessions, &logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, store, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := api.NewHTTPServer(cfg.Server.Port, store, engine, submitter, sessions, bus, logger)

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Str("timezone", loc.String()).Msg("barberia availability service started")
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("http server error")
	}
}

func sessionCleanupLoop(ctx context.Context, sessions *booking.SessionStore, logger *zerolog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := sessions.Cleanup(); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("expired booking sessions cleaned up")
			}
		case <-ctx.Done():
			return
		}
	}
}

func startHealthServer(ctx context.Context, port int, store *snapshot.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !store.Ready() {
			http.Error(w, "snapshot not loaded", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			ctxPing, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
