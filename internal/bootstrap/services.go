package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/admarket/moderation/config"
	"github.com/admarket/moderation/internal/adapters/kafkaq"
	"github.com/admarket/moderation/internal/adapters/worker"
	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/data"
	"github.com/admarket/moderation/internal/scoring"
	"github.com/admarket/moderation/internal/service"
)

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient *redis.Client // Optional: nil runs without a cache
	Producer    *kafkaq.Producer
	Logger      *slog.Logger
}

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Predict *service.PredictService
	Submit  *service.SubmitService
	Queries *service.TaskQueryService
	Closure *service.ClosureService

	Cache    *core.ResultCache
	Tasks    core.TaskRepository
	Listings core.ListingRepository
	Scorer   core.Scorer
}

// NewServices constructs the service container from shared infrastructure.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return nil, errors.New("config and database are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cacheRepo core.CacheRepository
	if deps.RedisClient != nil {
		cacheRepo = data.NewRedisCacheRepo(deps.RedisClient)
	}
	cache := core.NewResultCache(core.ResultCacheOptions{
		Repo:   cacheRepo,
		TTL:    deps.Config.Cache.TTL,
		Logger: logger,
	})

	taskRepo := data.NewTaskRepo(deps.DB)
	listingRepo := data.NewListingRepo(deps.DB)
	scorer := scoring.NewLogisticScorer()

	predict, err := service.NewPredictService(service.PredictServiceOptions{
		Listings: listingRepo,
		Scorer:   scorer,
		Cache:    cache,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create predict service: %w", err)
	}

	var submit *service.SubmitService
	if deps.Producer != nil {
		submit, err = service.NewSubmitService(service.SubmitServiceOptions{
			Listings: listingRepo,
			Tasks:    taskRepo,
			Producer: deps.Producer,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create submit service: %w", err)
		}
	}

	queries, err := service.NewTaskQueryService(service.TaskQueryServiceOptions{
		Tasks:  taskRepo,
		Cache:  cache,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create task query service: %w", err)
	}

	closure, err := service.NewClosureService(service.ClosureServiceOptions{
		Listings: listingRepo,
		Tasks:    taskRepo,
		Cache:    cache,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create closure service: %w", err)
	}

	return &ServiceContainer{
		Predict:  predict,
		Submit:   submit,
		Queries:  queries,
		Closure:  closure,
		Cache:    cache,
		Tasks:    taskRepo,
		Listings: listingRepo,
		Scorer:   scorer,
	}, nil
}

// ServiceOrchestrationConfig groups dependencies for RunServicesWithShutdown.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service
// fails; either event cancels the shared context so everything drains.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Config.IsHTTPServerEnabled() {
		startHTTPServer(ctx, g, cfg, logger)
	}

	if cfg.Config.IsWorkerEnabled() {
		if err := startWorker(ctx, g, cfg, logger); err != nil {
			stop()
			return err
		}
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("all services stopped")
	return nil
}

// startWorker wires the consumer and the worker runner into the group.
func startWorker(ctx context.Context, g *errgroup.Group, cfg *ServiceOrchestrationConfig, logger *slog.Logger) error {
	consumer, err := NewConsumer(cfg.Config.Kafka, logger)
	if err != nil {
		return err
	}

	dlqProducer, err := NewProducer(cfg.Config.Kafka, logger)
	if err != nil {
		closeErr := consumer.Close()
		return errors.Join(err, closeErr)
	}

	runner, err := worker.NewRunner(worker.RunnerOptions{
		Consumer:    consumer,
		Tasks:       cfg.Services.Tasks,
		Listings:    cfg.Services.Listings,
		Scorer:      cfg.Services.Scorer,
		DLQ:         dlqProducer,
		Cache:       cfg.Services.Cache,
		Logger:      logger,
		MaxRetries:  cfg.Config.Worker.MaxRetries,
		RetryDelays: cfg.Config.Worker.RetryDelays,
	})
	if err != nil {
		return errors.Join(err, consumer.Close(), dlqProducer.Close())
	}

	g.Go(func() error {
		defer func() {
			if cerr := consumer.Close(); cerr != nil {
				logger.Error("close consumer failed", "error", cerr)
			}
			if cerr := dlqProducer.Close(); cerr != nil {
				logger.Error("close DLQ producer failed", "error", cerr)
			}
		}()
		return runner.Run(ctx)
	})
	return nil
}
