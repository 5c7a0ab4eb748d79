package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/admarket/moderation/internal/adapters/kafkaq"
	"github.com/admarket/moderation/internal/bootstrap"
	"github.com/admarket/moderation/internal/migrate"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting moderation service",
		"db_host", cfg.Postgres.Host,
		"db_port", cfg.Postgres.Port,
		"db_name", cfg.Postgres.Name,
		"kafka_brokers", cfg.Kafka.Brokers,
		"enabled_services", bootstrap.GetEnabledServices(&cfg))

	if err = bootstrap.ValidateServiceConfig(&cfg); err != nil {
		return err
	}

	db, err := bootstrap.ConnectDB(cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	// The cache is optional: refusing to start over an unreachable Redis
	// would turn a best-effort collaborator into a hard dependency.
	redisClient, err := bootstrap.ConnectCache(cfg.Cache, logger)
	if err != nil {
		logger.WarnContext(ctx, "cache unavailable, continuing without it", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = migrate.Run(ctx, db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.InfoContext(ctx, "database migrations applied")
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	var producer *kafkaq.Producer
	if cfg.IsHTTPServerEnabled() {
		producer, err = bootstrap.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := producer.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close producer failed", "error", cerr)
			}
		}()
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Producer:    producer,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:   &cfg,
		Services: services,
		DB:       db,
		Logger:   logger,
	})
}
