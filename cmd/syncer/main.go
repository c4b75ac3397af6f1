package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"videosync/internal/cache"
	"videosync/internal/config"
	"videosync/internal/httpx"
	"videosync/internal/publisher"
	"videosync/internal/service"
	"videosync/internal/source/youtube"
	"videosync/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	channel := flag.String("channel", "", "channel id override for this run")
	limit := flag.Int("limit", 0, "maximum number of items to import (0 = no limit)")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store cache.Cache
	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := cache.NewRedis(ctx, cfg.Cache.RedisURL, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		store = redisCache
	default:
		store = cache.NewMemory(ctx, 5*time.Minute)
	}

	// Publisher is optional: without a broker URL the import still runs,
	// it just emits no record events.
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	httpClient := httpx.New(httpx.Config{
		Timeout: cfg.YouTube.Timeout,
		Referer: cfg.YouTube.Referer,
	}, logger)

	source := youtube.New(youtube.Config{
		APIKey:        cfg.YouTube.APIKey,
		APIBaseURL:    cfg.YouTube.APIBaseURL,
		CaptionsURL:   cfg.YouTube.CaptionsURL,
		PageSize:      cfg.Import.PageSize,
		PlaylistTTL:   cfg.Cache.PlaylistTTL,
		ItemsTTL:      cfg.Cache.ItemsTTL,
		EnrichmentTTL: cfg.Cache.EnrichmentTTL,
	}, httpClient, store, logger)

	importService := service.NewImportService(
		source,
		postgres.NewContentStore(db),
		postgres.NewTransactionManager(db),
		pub,
		logger,
		cfg.Import,
		cfg.YouTube.ChannelID,
		cfg.YouTube.APIKey != "",
	)

	stats, err := importService.Run(ctx, service.RunOptions{
		ChannelID: *channel,
		Limit:     *limit,
	})
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}

	for _, msg := range stats.Errors {
		logger.Warn("import error", "error", msg)
	}

	logger.Info("import finished",
		"channel_id", stats.ChannelID,
		"fetched", stats.Fetched,
		"created", stats.Created,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", len(stats.Errors),
		"duration", stats.Duration,
	)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
