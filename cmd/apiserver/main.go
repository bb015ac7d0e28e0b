// API server entry point for ClauseWise.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/bootstrap"
	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/ingestion"
	grpcserver "github.com/turtacn/ClauseWise/internal/interfaces/grpc"
	httpserver "github.com/turtacn/ClauseWise/internal/interfaces/http"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/handlers"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/middleware"
)

const (
	defaultConfigPath   = "configs/config.yaml"
	healthProbeInterval = 10 * time.Second
)

var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort, *grpcPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort, grpcPort int) error {
	cfg, fromFile, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.HTTP.Port = httpPort
	}
	if grpcPort > 0 {
		cfg.Server.GRPC.Port = grpcPort
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.HTTP.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	health := handlers.NewHealthHandler(version, rt.Checkers...)
	router := httpserver.NewRouter(routerConfig(cfg, rt, health))
	httpSrv := httpserver.NewServer(cfg.Server.HTTP, router, logger)

	errCh := make(chan error, 2)
	go func() { errCh <- httpSrv.Start() }()

	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPC.Enabled {
		opts := []grpcserver.Option{
			grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithGracefulTimeout(cfg.Server.HTTP.ShutdownTimeout),
			grpcserver.WithReadiness(func(ctx context.Context) bool {
				_, ok := health.Ready(ctx)
				return ok
			}, healthProbeInterval),
		}
		if cfg.Server.HTTP.Mode == gin.DebugMode {
			opts = append(opts, grpcserver.WithReflection())
		}
		grpcSrv, err = grpcserver.NewServer(cfg.Server.GRPC, opts...)
		if err != nil {
			return err
		}
		go func() { errCh <- grpcSrv.Start() }()
	}

	if fromFile {
		watchLogLevel(configPath, logger)
	}

	logger.Info("clausewise API server started",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.HTTP.Port),
		logging.Bool("grpc_enabled", cfg.Server.GRPC.Enabled),
		logging.Int("grpc_port", cfg.Server.GRPC.Port),
		logging.Bool("remote", cfg.Remote.Enabled),
		logging.Bool("kafka", cfg.Kafka.Enabled))

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", logging.Err(err))
		}
	}

	timeout := cfg.Server.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if grpcSrv != nil {
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error("gRPC shutdown failed", logging.Err(err))
			firstErr = err
		}
	}
	if err := httpSrv.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", logging.Err(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	logger.Info("server exited")
	return firstErr
}

func routerConfig(cfg *config.Config, rt *bootstrap.Runtime, health *handlers.HealthHandler) httpserver.RouterConfig {
	logger := rt.Logger
	extractor := ingestion.New(cfg.Server.HTTP.MaxBodySize, logger.Named("ingestion"))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.HTTP.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.Server.HTTP.CORSOrigins
	}

	var limit *middleware.RateLimitConfig
	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.RequestsPerSecond > 0 {
			rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		}
		if cfg.RateLimit.Burst > 0 {
			rl.Burst = cfg.RateLimit.Burst
		}
		limit = &rl
	}

	rc := httpserver.RouterConfig{
		AnalysisHandler: handlers.NewAnalysisHandler(rt.Analyzer, rt.Reports, extractor, logger.Named("http")),
		ReportHandler:   handlers.NewReportHandler(rt.Reports),
		HealthHandler:   health,
		CORS:            cors,
		Logging:         middleware.DefaultLoggingConfig(),
		RateLimit:       limit,
		APIKeys:         cfg.Server.HTTP.APIKeys,
		MaxBodySize:     cfg.Server.HTTP.MaxBodySize,
		Logger:          logger,
		Metrics:         rt.Metrics,
	}
	if cfg.Metrics.Enabled {
		rc.MetricsHandler = rt.Collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	return rc
}

// watchLogLevel applies log level changes from the config file without a
// restart. Other sections need a restart.
func watchLogLevel(path string, logger logging.Logger) {
	err := config.Watch(path, func(fresh *config.Config) {
		if err := logging.SetLevel(logger, fresh.Log.Level); err != nil {
			logger.Warn("ignoring invalid log level", logging.String("level", fresh.Log.Level), logging.Err(err))
			return
		}
		logger.Info("log level updated", logging.String("level", fresh.Log.Level))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

// loadConfig reads path when it exists and falls back to environment
// configuration otherwise.
func loadConfig(path string) (*config.Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := config.Load(path)
		return cfg, true, err
	}
	cfg, err := config.LoadFromEnv()
	return cfg, false, err
}

//Personal.AI order the ending
