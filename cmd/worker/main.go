// Command worker consumes analysis.requested events and completes the
// queued reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/bootstrap"
	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ClauseWise/internal/interfaces/http"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/handlers"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/middleware"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka must be enabled for the worker")
	}
	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		Topics:         []string{cfg.Kafka.RequestTopic},
		StartOffset:    cfg.Kafka.StartOffset,
		Concurrency:    cfg.Worker.Concurrency,
		HandlerTimeout: cfg.Worker.HandlerTimeout,
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.Worker.MaxRetries,
			RetryBackoff:    cfg.Worker.RetryBackoff,
			DeadLetterTopic: cfg.Kafka.DLQTopic,
		},
	}, logger.Named("consumer"))
	if err != nil {
		return err
	}
	consumer.Subscribe(cfg.Kafka.RequestTopic, newJobHandler(rt.Reports, logger.Named("worker")))

	gin.SetMode(gin.ReleaseMode)
	health := handlers.NewHealthHandler(version, append(rt.Checkers, handlers.CheckFunc{
		Component: "consumer",
		Fn: func(context.Context) error {
			if !consumer.Running() {
				return fmt.Errorf("consumer stopped")
			}
			return nil
		},
	})...)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:  health,
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         logger,
		Metrics:        rt.Metrics,
		MetricsHandler: rt.Collector.Handler(),
		MetricsPath:    cfg.Metrics.Path,
	})
	srv := httpserver.NewServer(config.HTTPServerConfig{Port: cfg.Worker.HealthPort}, router, logger)

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info("worker started",
		logging.String("version", version),
		logging.String("topic", cfg.Kafka.RequestTopic),
		logging.Int("concurrency", cfg.Worker.Concurrency),
		logging.Int("health_port", cfg.Worker.HealthPort))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("health server failed", logging.Err(err))
		}
	}

	logger.Info("shutting down worker")
	if err := consumer.Close(); err != nil {
		logger.Error("consumer close failed", logging.Err(err))
	}
	processed, failed, deadLettered := consumer.Stats()
	logger.Info("consumer stopped",
		logging.Int64("processed", processed),
		logging.Int64("failed", failed),
		logging.Int64("dead_lettered", deadLettered))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// loadConfig reads configPath when it exists and falls back to environment
// configuration otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

//Personal.AI order the ending
