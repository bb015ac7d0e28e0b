// Package config defines the configuration structures for ClauseWise. Loading
// lives in loader.go and defaults in defaults.go; this file holds plain data
// types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// HTTPServerConfig holds gin server tunables.
type HTTPServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	Mode            string        `mapstructure:"mode" yaml:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size" yaml:"max_body_size" validate:"min=1"`
	// APIKeys enables X-API-Key checking on /api routes when non-empty.
	APIKeys     []string `mapstructure:"api_keys" yaml:"api_keys"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// GRPCServerConfig controls the gRPC health endpoint.
type GRPCServerConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
}

type ServerConfig struct {
	HTTP HTTPServerConfig `mapstructure:"http" yaml:"http"`
	GRPC GRPCServerConfig `mapstructure:"grpc" yaml:"grpc"`
}

// AnalysisConfig holds the limits used by the analysis pipeline.
type AnalysisConfig struct {
	MaxClauseLength       int    `mapstructure:"max_clause_length" yaml:"max_clause_length"`
	ClauseLimit           int    `mapstructure:"clause_limit" yaml:"clause_limit"`
	ExtractionClauseLimit int    `mapstructure:"extraction_clause_limit" yaml:"extraction_clause_limit" validate:"min=1"`
	SummarySentences      int    `mapstructure:"summary_sentences" yaml:"summary_sentences" validate:"min=1"`
	RulesPath             string `mapstructure:"rules_path" yaml:"rules_path"`
	BatchConcurrency      int    `mapstructure:"batch_concurrency" yaml:"batch_concurrency" validate:"min=1"`
}

// BackendConfig addresses one remote model service.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// Remote backends.
const (
	BackendHuggingFace = "huggingface"
	BackendGranite     = "granite"
)

// RemoteConfig selects the optional remote collaborator.
type RemoteConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	Backend         string        `mapstructure:"backend" yaml:"backend" validate:"oneof=huggingface granite"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	SimplifyTimeout time.Duration `mapstructure:"simplify_timeout" yaml:"simplify_timeout"`
	HuggingFace     BackendConfig `mapstructure:"huggingface" yaml:"huggingface"`
	Granite         BackendConfig `mapstructure:"granite" yaml:"granite"`
}

// Active returns the settings of the selected backend.
func (r RemoteConfig) Active() BackendConfig {
	if r.Backend == BackendGranite {
		return r.Granite
	}
	return r.HuggingFace
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	Host            string        `mapstructure:"host" yaml:"host" validate:"required_if=Enabled true"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	User            string        `mapstructure:"user" yaml:"user"`
	Password        string        `mapstructure:"password" yaml:"password"`
	DBName          string        `mapstructure:"db_name" yaml:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns" validate:"min=1"`
	MinConns        int32         `mapstructure:"min_conns" yaml:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	// MigrationPath is a golang-migrate source URL; empty uses the
	// migrations embedded in the binary.
	MigrationPath string `mapstructure:"migration_path" yaml:"migration_path"`
	AutoMigrate   bool   `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// DSN renders a postgres URL for pgx and golang-migrate.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr         string        `mapstructure:"addr" yaml:"addr" validate:"required_if=Enabled true"`
	Password     string        `mapstructure:"password" yaml:"password"`
	DB           int           `mapstructure:"db" yaml:"db" validate:"min=0"`
	PoolSize     int           `mapstructure:"pool_size" yaml:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// CacheConfig controls report caching.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	LocalTTL        time.Duration `mapstructure:"local_ttl" yaml:"local_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
	RedisTTL        time.Duration `mapstructure:"redis_ttl" yaml:"redis_ttl"`
}

// MinIOConfig holds object storage parameters.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket" validate:"required_if=Enabled true"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	Region    string `mapstructure:"region" yaml:"region"`
}

// KafkaConfig holds producer and consumer parameters.
type KafkaConfig struct {
	Enabled        bool          `mapstructure:"enabled" yaml:"enabled"`
	Brokers        []string      `mapstructure:"brokers" yaml:"brokers" validate:"required_if=Enabled true"`
	GroupID        string        `mapstructure:"group_id" yaml:"group_id"`
	RequestTopic   string        `mapstructure:"request_topic" yaml:"request_topic"`
	CompletedTopic string        `mapstructure:"completed_topic" yaml:"completed_topic"`
	DLQTopic       string        `mapstructure:"dlq_topic" yaml:"dlq_topic"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout" yaml:"batch_timeout"`
	StartOffset    string        `mapstructure:"start_offset" yaml:"start_offset" validate:"oneof=earliest latest"`
}

// SearchConfig holds OpenSearch parameters.
type SearchConfig struct {
	Enabled            bool     `mapstructure:"enabled" yaml:"enabled"`
	Addresses          []string `mapstructure:"addresses" yaml:"addresses" validate:"required_if=Enabled true"`
	Username           string   `mapstructure:"username" yaml:"username"`
	Password           string   `mapstructure:"password" yaml:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	ClauseIndex        string   `mapstructure:"clause_index" yaml:"clause_index"`
}

// WorkerConfig holds background job parameters.
type WorkerConfig struct {
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency" validate:"min=1"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout" yaml:"handler_timeout"`
	MaxRetries     int           `mapstructure:"max_retries" yaml:"max_retries" validate:"min=0"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`
	HealthPort     int           `mapstructure:"health_port" yaml:"health_port" validate:"min=1,max=65535"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" yaml:"burst" validate:"gte=0"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	Path           string `mapstructure:"path" yaml:"path"`
	Namespace      string `mapstructure:"namespace" yaml:"namespace"`
	ProcessMetrics bool   `mapstructure:"process_metrics" yaml:"process_metrics"`
	GoMetrics      bool   `mapstructure:"go_metrics" yaml:"go_metrics"`
}

// Collector converts the section into collector settings.
func (m MetricsConfig) Collector() prometheus.CollectorConfig {
	return prometheus.CollectorConfig{
		Namespace:            m.Namespace,
		EnableProcessMetrics: m.ProcessMetrics,
		EnableGoMetrics:      m.GoMetrics,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is built once at startup and passed explicitly to constructors.
type Config struct {
	Server    ServerConfig      `mapstructure:"server" yaml:"server"`
	Log       logging.LogConfig `mapstructure:"log" yaml:"log"`
	Analysis  AnalysisConfig    `mapstructure:"analysis" yaml:"analysis"`
	Remote    RemoteConfig      `mapstructure:"remote" yaml:"remote"`
	Database  DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig       `mapstructure:"redis" yaml:"redis"`
	Cache     CacheConfig       `mapstructure:"cache" yaml:"cache"`
	MinIO     MinIOConfig       `mapstructure:"minio" yaml:"minio"`
	Kafka     KafkaConfig       `mapstructure:"kafka" yaml:"kafka"`
	Search    SearchConfig      `mapstructure:"search" yaml:"search"`
	Worker    WorkerConfig      `mapstructure:"worker" yaml:"worker"`
	RateLimit RateLimitConfig   `mapstructure:"ratelimit" yaml:"ratelimit"`
	Metrics   MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

const maxRemoteTimeout = 60 * time.Second

var validate = validator.New()

// Validate checks struct tags and then the cross-field rules. It returns the
// first error encountered.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	if c.Analysis.ClauseLimit < 1 {
		return fmt.Errorf("config: analysis.clause_limit must be >= 1, got %d", c.Analysis.ClauseLimit)
	}
	if c.Analysis.MaxClauseLength < 50 {
		return fmt.Errorf("config: analysis.max_clause_length must be >= 50, got %d", c.Analysis.MaxClauseLength)
	}
	for name, d := range map[string]time.Duration{
		"remote.timeout":          c.Remote.Timeout,
		"remote.simplify_timeout": c.Remote.SimplifyTimeout,
	} {
		if d <= 0 || d > maxRemoteTimeout {
			return fmt.Errorf("config: %s %s is out of range (0s, 60s]", name, d)
		}
	}
	if c.Remote.Enabled {
		active := c.Remote.Active()
		if active.BaseURL == "" {
			return fmt.Errorf("config: remote.%s.base_url is required when remote is enabled", c.Remote.Backend)
		}
		if active.APIKey == "" {
			return fmt.Errorf("config: remote.%s.api_key is required when remote is enabled", c.Remote.Backend)
		}
	}
	return nil
}

//Personal.AI order the ending
