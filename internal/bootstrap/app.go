package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appsvc "studynotes/internal/app"
	"studynotes/internal/cache"
	"studynotes/internal/config"
	"studynotes/internal/metrics"
	mysqlClient "studynotes/internal/platform/mysql"
	rabbitmqClient "studynotes/internal/platform/rabbitmq"
	redisClient "studynotes/internal/platform/redis"
	"studynotes/internal/repository"
	"studynotes/internal/vectordb"
	"studynotes/internal/worker"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	MySQL   *gorm.DB
	Redis   *redis.Client
	MQConn  *amqp.Connection
	Vectors *VectorStack
	Worker  *worker.IngestWorker

	AuthService   *appsvc.AuthService
	RuleService   *appsvc.RuleService
	FileService   *appsvc.FileService
	SearchService *appsvc.SearchService

	StartedAt time.Time
}

// New connects every dependency, provisions the vector collections and
// starts the ingest worker. On error, whatever was opened is closed again.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (app *App, err error) {
	app = &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		StartedAt: time.Now(),
	}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	if app.MySQL, err = OpenMySQL(ctx, cfg); err != nil {
		return app, err
	}
	if app.Redis, err = redisClient.New(ctx, cfg.Redis); err != nil {
		return app, err
	}
	if app.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.IngestQueue); err != nil {
		return app, err
	}
	if app.Vectors, err = NewVectorStack(cfg); err != nil {
		return app, err
	}
	if err = vectordb.EnsureCollections(ctx, app.Vectors.Backend); err != nil {
		return app, err
	}

	docs := NewLlamaCloud(cfg)
	runs := cache.NewRunCache(app.Redis, cfg.RunStatusTTL())

	app.Worker = worker.NewIngestWorker(
		app.MQConn,
		NewPipeline(app.MySQL, app.Vectors, docs, logger),
		runs,
		app.Metrics,
		logger.Named("worker"),
		cfg.RabbitMQ.IngestQueue,
		cfg.RabbitMQ.Prefetch,
	)
	if err = app.Worker.Start(ctx); err != nil {
		return app, fmt.Errorf("start ingest worker failed: %w", err)
	}

	app.AuthService = appsvc.NewAuthService(
		repository.NewUserRepository(app.MySQL),
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	app.RuleService = appsvc.NewRuleService(repository.NewRuleRepository(app.MySQL))
	app.FileService = appsvc.NewFileService(
		repository.NewFileRepository(app.MySQL),
		docs,
		rabbitmqClient.NewJobPublisher(app.MQConn, cfg.RabbitMQ.IngestQueue),
		runs,
		logger.Named("files"),
	)
	app.SearchService = appsvc.NewSearchService(app.Vectors.Dispatcher, app.Metrics)

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Worker != nil {
		a.Worker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Vectors != nil {
		if err := a.Vectors.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
