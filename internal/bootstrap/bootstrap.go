// Package bootstrap builds the shared runtime of the API server and the
// worker from a Config: logger, metrics, stores and the two services.
// Every store is optional; a disabled section falls back to the in-process
// implementation inside the report service.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/ClauseWise/internal/application/analysis"
	"github.com/turtacn/ClauseWise/internal/application/reporting"
	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/cache/local"
	"github.com/turtacn/ClauseWise/internal/infrastructure/database/postgres"
	"github.com/turtacn/ClauseWise/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/ClauseWise/internal/infrastructure/database/redis"
	"github.com/turtacn/ClauseWise/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseWise/internal/infrastructure/search/opensearch"
	"github.com/turtacn/ClauseWise/internal/infrastructure/storage/minio"
	"github.com/turtacn/ClauseWise/internal/intelligence/remote"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/handlers"
)

// Runtime holds everything built from the config. Close releases it in
// reverse order of construction.
type Runtime struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AnalysisMetrics
	Analyzer  analysis.Service
	Reports   reporting.Service
	// Checkers feed /readyz and the gRPC health status.
	Checkers []handlers.HealthChecker

	closers []closer
}

type closer struct {
	name string
	fn   func() error
}

// NewLogger builds the zap logger from the log section.
func NewLogger(cfg *config.Config) (logging.Logger, error) {
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}

// Build connects every enabled store. With kafka enabled, Submit publishes
// jobs and Process publishes completions; otherwise jobs run in-process.
// On error everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *Runtime, err error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	rt := &Runtime{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		if rt.Collector, err = prometheus.NewMetricsCollector(cfg.Metrics.Collector(), logger); err != nil {
			return nil, err
		}
	} else {
		rt.Collector = prometheus.NewNoopCollector()
	}
	rt.Metrics = prometheus.NewAnalysisMetrics(rt.Collector)

	engine, err := analysis.BuildEngine(cfg.Analysis.RulesPath, cfg.Analysis.SummarySentences)
	if err != nil {
		return nil, err
	}
	collaborator, err := remote.New(cfg.Remote, &http.Client{}, logger, rt.Metrics)
	if err != nil {
		return nil, err
	}
	rt.Analyzer = analysis.NewService(engine, collaborator, logger, rt.Metrics, analysis.Config{
		MaxClauseLength:       cfg.Analysis.MaxClauseLength,
		ClauseLimit:           cfg.Analysis.ClauseLimit,
		ExtractionClauseLimit: cfg.Analysis.ExtractionClauseLimit,
		BatchConcurrency:      cfg.Analysis.BatchConcurrency,
	})

	deps := reporting.Deps{
		Analyzer: rt.Analyzer,
		Logger:   logger,
		Metrics:  rt.Metrics,
	}
	if err := rt.connectStores(ctx, &deps); err != nil {
		return nil, err
	}
	if cfg.Kafka.Enabled {
		if err := rt.connectEvents(ctx, &deps); err != nil {
			return nil, err
		}
	}

	rt.Reports = reporting.NewService(deps, reporting.Config{
		SharedCacheTTL: cfg.Cache.RedisTTL,
		JobLockTTL:     cfg.Worker.HandlerTimeout,
		Options:        analysis.Options{ClauseLimit: cfg.Analysis.ClauseLimit},
	})
	return rt, nil
}

func (rt *Runtime) connectStores(ctx context.Context, deps *reporting.Deps) error {
	cfg, logger := rt.Config, rt.Logger

	if cfg.Database.Enabled {
		conn, err := postgres.NewConnection(ctx, cfg.Database, logger.Named("postgres"))
		if err != nil {
			return err
		}
		rt.onClose("postgres", conn.Close)
		if cfg.Database.AutoMigrate {
			if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
				return err
			}
		}
		deps.Repository = repositories.NewPostgresReportRepo(conn, logger)
		rt.check("postgres", conn.HealthCheck)
	}

	if cfg.Cache.Enabled {
		lc := local.NewReportCache(cfg.Cache.LocalTTL, cfg.Cache.CleanupInterval)
		deps.Local = lc
		rt.onClose("local_cache", func() error { lc.Flush(); return nil })
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis, logger.Named("redis"))
		if err != nil {
			return err
		}
		rt.onClose("redis", client.Close)
		if cfg.Cache.Enabled {
			deps.Shared = redis.NewRedisCache(client, logger, redis.WithDefaultTTL(cfg.Cache.RedisTTL))
		}
		deps.Locks = redis.NewLockFactory(client, logger)
		rt.check("redis", client.HealthCheck)
	}

	if cfg.MinIO.Enabled {
		client, err := minio.NewClient(ctx, cfg.MinIO, logger.Named("minio"))
		if err != nil {
			return err
		}
		rt.onClose("minio", client.Close)
		if err := client.EnsureBucket(ctx); err != nil {
			return err
		}
		deps.Archive = minio.NewArchive(client, logger)
		rt.check("minio", client.HealthCheck)
	}

	if cfg.Search.Enabled {
		client, err := opensearch.NewClient(opensearch.ClientConfigFrom(cfg.Search), logger.Named("opensearch"))
		if err != nil {
			return err
		}
		rt.onClose("opensearch", client.Close)
		store := opensearch.NewClauseStore(client, cfg.Search.ClauseIndex, logger)
		if err := store.EnsureIndex(ctx); err != nil {
			return err
		}
		deps.Index = store
		rt.check("opensearch", store.HealthCheck)
	}
	return nil
}

func (rt *Runtime) connectEvents(ctx context.Context, deps *reporting.Deps) error {
	cfg, logger := rt.Config.Kafka, rt.Logger.Named("kafka")

	topics, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		return err
	}
	ensureErr := topics.EnsureTopics(ctx, kafka.DefaultTopics(cfg.RequestTopic, cfg.CompletedTopic, cfg.DLQTopic))
	_ = topics.Close()
	if ensureErr != nil {
		return ensureErr
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.Brokers,
		BatchTimeout: cfg.BatchTimeout,
	}, logger)
	if err != nil {
		return err
	}
	events := kafka.NewEventPublisher(producer, cfg.RequestTopic, cfg.CompletedTopic)
	rt.onClose("kafka_producer", events.Close)
	deps.Events = events
	return nil
}

func (rt *Runtime) onClose(name string, fn func() error) {
	rt.closers = append(rt.closers, closer{name: name, fn: fn})
}

func (rt *Runtime) check(name string, fn func(ctx context.Context) error) {
	rt.Checkers = append(rt.Checkers, handlers.CheckFunc{Component: name, Fn: fn})
}

// Ready runs every checker with a short timeout.
func (rt *Runtime) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, c := range rt.Checkers {
		if err := c.Check(ctx); err != nil {
			return false
		}
	}
	return true
}

// Close releases every connection. Errors are logged, not returned.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		c := rt.closers[i]
		if err := c.fn(); err != nil {
			rt.Logger.Warn("close failed", logging.String("component", c.name), logging.Err(err))
		}
	}
	rt.closers = nil
	_ = rt.Logger.Sync()
}

//Personal.AI order the ending
