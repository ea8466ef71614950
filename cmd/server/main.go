package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"planhebdo/internal/api"
	"planhebdo/internal/config"
	"planhebdo/internal/events"
	"planhebdo/internal/export"
	"planhebdo/internal/importer"
	"planhebdo/internal/metrics"
	"planhebdo/internal/notify"
	"planhebdo/internal/planning"
	"planhebdo/internal/stats"
	"planhebdo/internal/store"
	"planhebdo/internal/validation"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("PLANHEBDO_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer st.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	plans := planning.NewManager(st, bus, logger)
	val := validation.NewManager(st, bus, logger)
	imp := importer.New(st, bus, logger)
	exports := export.NewService(plans, logger)
	statsSvc := stats.NewService(st, stats.NewCache(rdb, cfg.StatsCacheTTL()), logger)
	statsSvc.RegisterHandlers(bus)

	var sheets *export.SheetsExporter
	if cfg.Sheets.Enabled {
		sheets, err = export.NewSheetsExporter(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if err != nil {
			logger.Fatal().Err(err).Msg("sheets exporter error")
		}
	}

	if notifier, nerr := notify.New(cfg.Telegram.BotToken, cfg.Telegram.ManagerChatIDs, cfg.Telegram.Debug, logger); nerr != nil {
		logger.Error().Err(nerr).Msg("telegram notifier disabled")
	} else if notifier != nil {
		notifier.RegisterHandlers(ctx, bus)
	}

	shops, err := config.LoadShopsConfig(cfg.ShopsConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load shops config error")
	}
	server := api.NewHTTPServer(st, plans, val, imp, exports, statsSvc, sheets, shops, logger)

	// Hot reload of the shop roster without a restart.
	go func() {
		if werr := config.WatchShops(ctx, cfg.ShopsConfigPath, 30*time.Second, logger, server.SetShops); werr != nil {
			logger.Error().Err(werr).Msg("shops watcher stopped")
		}
	}()

	if cfg.Backup.Enabled {
		go st.RunBackupLoop(ctx, cfg.Backup, &logger)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, st, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Int("port", cfg.Server.Port).Msg("planhebdo server started")
	if err := server.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func startHealthServer(ctx context.Context, port int, st *store.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := st.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
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
