package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"labreserve/internal/api"
	"labreserve/internal/booking"
	"labreserve/internal/calendar"
	"labreserve/internal/config"
	"labreserve/internal/database"
	"labreserve/internal/metrics"
	"labreserve/internal/session"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("LABRESERVE_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	opts := database.Options{ExclusiveIHC: cfg.IHC.Mode == "exclusive"}
	db, err := database.NewDB(cfg.Database.Path, opts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var sessions session.Store
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		sessions = session.NewRedisStore(rdb, "")
		logger.Info().Str("addr", cfg.Redis.Address).Msg("sessions stored in redis")
	} else {
		sessions = session.NewMemoryStore()
		logger.Info().Msg("sessions stored in memory; restarts drop them")
	}

	grid := calendar.BSCGrid{Cabinets: cfg.BSC.Cabinets, SlotsPerDay: cfg.BSC.SlotsPerDay}
	deps := api.Deps{
		DB:         db,
		Registry:   booking.NewRegistry(db, &logger),
		BSC:        booking.NewBSC(db, grid, cfg.Booking.WindowDays, &logger),
		IHC:        booking.NewIHC(db, booking.IHCMode(cfg.IHC.Mode), cfg.IHC.TrayCap, cfg.Booking.WindowDays, &logger),
		Freezer:    booking.NewFreezer(db, cfg.Freezer.OverdueAfterDays, &logger),
		Sessions:   sessions,
		SessionTTL: cfg.SessionTTL(),
		RateRPS:    cfg.RateLimit.RPS,
		RateBurst:  cfg.RateLimit.Burst,
		Logger:     &logger,
	}
	srv := api.New(cfg.Server.Address, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		go runBackups(ctx, db, cfg, &logger)
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Info().Str("ihc_mode", cfg.IHC.Mode).Msg("lab reservation service started")
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("http server error")
	}
	logger.Info().Msg("lab reservation service stopped")
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
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

// runBackups snapshots the database on a fixed interval and prunes old
// snapshots past the retention window.
func runBackups(ctx context.Context, db *database.DB, cfg *config.Config, logger *zerolog.Logger) {
	interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if err := os.MkdirAll(cfg.Backup.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("create backup dir failed")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dest := filepath.Join(cfg.Backup.Path, fmt.Sprintf("labreserve-%s.db", time.Now().Format("20060102-150405")))
			if err := db.Backup(ctx, dest); err != nil {
				logger.Error().Err(err).Msg("backup failed")
				continue
			}
			retention := time.Duration(cfg.Backup.RetentionDays) * 24 * time.Hour
			if retention > 0 {
				if n, err := db.CleanupBackups(cfg.Backup.Path, retention); err != nil {
					logger.Error().Err(err).Msg("backup cleanup failed")
				} else if n > 0 {
					logger.Info().Int("removed", n).Msg("old backups pruned")
				}
			}
			logger.Info().Str("dest", dest).Msg("backup written")
		}
	}
}
