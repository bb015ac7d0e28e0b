package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultHTTPPort        = 8080
	DefaultHTTPMode        = "release"
	DefaultGRPCPort        = 9090
	DefaultMaxBodySize     = 10 << 20
	DefaultShutdownTimeout = 15 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMaxClauseLength       = 1000
	DefaultClauseLimit           = 20
	DefaultExtractionClauseLimit = 15
	DefaultSummarySentences      = 5
	DefaultBatchConcurrency      = 4

	DefaultRemoteBackend    = BackendHuggingFace
	DefaultRemoteTimeout    = 30 * time.Second
	DefaultSimplifyTimeout  = 60 * time.Second
	DefaultHuggingFaceURL   = "https://api-inference.huggingface.co/models"
	DefaultHuggingFaceModel = "ibm-granite/granite-13b-chat-v2"
	DefaultGraniteURL       = "https://api.ibm.com/granite/v1"
	DefaultGraniteModel     = "granite-13b-chat-v2"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "clausewise"
	DefaultDBUser     = "clausewise"
	DefaultDBSSLMode  = "disable"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "clausewise:"

	DefaultCacheLocalTTL = 10 * time.Minute
	DefaultCacheRedisTTL = 24 * time.Hour

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "clausewise"

	DefaultKafkaBroker         = "localhost:9092"
	DefaultKafkaGroupID        = "clausewise-worker"
	DefaultKafkaRequestTopic   = "analysis.requested"
	DefaultKafkaCompletedTopic = "analysis.completed"
	DefaultKafkaDLQTopic       = "analysis.requested.dlq"

	DefaultSearchAddress = "http://localhost:9200"
	DefaultClauseIndex   = "clausewise-clauses"

	DefaultWorkerConcurrency = 4
	DefaultHandlerTimeout    = 2 * time.Minute
	DefaultWorkerMaxRetries  = 3
	DefaultWorkerBackoff     = time.Second
	DefaultWorkerHealthPort  = 8081

	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "clausewise"
)

// Default returns a Config holding only defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	cfg.Cache.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default. Values
// already set are left unchanged so explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	setInt(&cfg.Server.HTTP.Port, DefaultHTTPPort)
	setString(&cfg.Server.HTTP.Mode, DefaultHTTPMode)
	setDuration(&cfg.Server.HTTP.ReadTimeout, 30*time.Second)
	setDuration(&cfg.Server.HTTP.WriteTimeout, 90*time.Second)
	setDuration(&cfg.Server.HTTP.ShutdownTimeout, DefaultShutdownTimeout)
	if cfg.Server.HTTP.MaxBodySize == 0 {
		cfg.Server.HTTP.MaxBodySize = DefaultMaxBodySize
	}
	setInt(&cfg.Server.GRPC.Port, DefaultGRPCPort)

	// ── Log ───────────────────────────────────────────────────────────────────
	setString(&cfg.Log.Level, DefaultLogLevel)
	setString(&cfg.Log.Format, DefaultLogFormat)

	// ── Analysis ──────────────────────────────────────────────────────────────
	setInt(&cfg.Analysis.MaxClauseLength, DefaultMaxClauseLength)
	setInt(&cfg.Analysis.ClauseLimit, DefaultClauseLimit)
	setInt(&cfg.Analysis.ExtractionClauseLimit, DefaultExtractionClauseLimit)
	setInt(&cfg.Analysis.SummarySentences, DefaultSummarySentences)
	setInt(&cfg.Analysis.BatchConcurrency, DefaultBatchConcurrency)

	// ── Remote ────────────────────────────────────────────────────────────────
	setString(&cfg.Remote.Backend, DefaultRemoteBackend)
	setDuration(&cfg.Remote.Timeout, DefaultRemoteTimeout)
	setDuration(&cfg.Remote.SimplifyTimeout, DefaultSimplifyTimeout)
	setString(&cfg.Remote.HuggingFace.BaseURL, DefaultHuggingFaceURL)
	setString(&cfg.Remote.HuggingFace.Model, DefaultHuggingFaceModel)
	setString(&cfg.Remote.Granite.BaseURL, DefaultGraniteURL)
	setString(&cfg.Remote.Granite.Model, DefaultGraniteModel)

	// ── Database ──────────────────────────────────────────────────────────────
	setString(&cfg.Database.Host, DefaultDBHost)
	setInt(&cfg.Database.Port, DefaultDBPort)
	setString(&cfg.Database.User, DefaultDBUser)
	setString(&cfg.Database.DBName, DefaultDBName)
	setString(&cfg.Database.SSLMode, DefaultDBSSLMode)
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	setDuration(&cfg.Database.ConnMaxLifetime, time.Hour)
	setDuration(&cfg.Database.ConnMaxIdleTime, 30*time.Minute)

	// ── Redis ─────────────────────────────────────────────────────────────────
	setString(&cfg.Redis.Addr, DefaultRedisAddr)
	setInt(&cfg.Redis.PoolSize, 10)
	setDuration(&cfg.Redis.DialTimeout, 5*time.Second)
	setDuration(&cfg.Redis.ReadTimeout, 3*time.Second)
	setDuration(&cfg.Redis.WriteTimeout, 3*time.Second)
	setString(&cfg.Redis.KeyPrefix, DefaultRedisKeyPrefix)

	// ── Cache ─────────────────────────────────────────────────────────────────
	setDuration(&cfg.Cache.LocalTTL, DefaultCacheLocalTTL)
	setDuration(&cfg.Cache.CleanupInterval, 2*DefaultCacheLocalTTL)
	setDuration(&cfg.Cache.RedisTTL, DefaultCacheRedisTTL)

	// ── MinIO ─────────────────────────────────────────────────────────────────
	setString(&cfg.MinIO.Endpoint, DefaultMinIOEndpoint)
	setString(&cfg.MinIO.Bucket, DefaultMinIOBucket)

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	setString(&cfg.Kafka.GroupID, DefaultKafkaGroupID)
	setString(&cfg.Kafka.RequestTopic, DefaultKafkaRequestTopic)
	setString(&cfg.Kafka.CompletedTopic, DefaultKafkaCompletedTopic)
	setString(&cfg.Kafka.DLQTopic, DefaultKafkaDLQTopic)
	setDuration(&cfg.Kafka.BatchTimeout, 50*time.Millisecond)
	setString(&cfg.Kafka.StartOffset, "earliest")

	// ── Search ────────────────────────────────────────────────────────────────
	if len(cfg.Search.Addresses) == 0 {
		cfg.Search.Addresses = []string{DefaultSearchAddress}
	}
	setString(&cfg.Search.ClauseIndex, DefaultClauseIndex)

	// ── Worker ────────────────────────────────────────────────────────────────
	setInt(&cfg.Worker.Concurrency, DefaultWorkerConcurrency)
	setDuration(&cfg.Worker.HandlerTimeout, DefaultHandlerTimeout)
	setInt(&cfg.Worker.MaxRetries, DefaultWorkerMaxRetries)
	setDuration(&cfg.Worker.RetryBackoff, DefaultWorkerBackoff)
	setInt(&cfg.Worker.HealthPort, DefaultWorkerHealthPort)

	// ── Rate limit ────────────────────────────────────────────────────────────
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	setInt(&cfg.RateLimit.Burst, DefaultRateLimitBurst)

	// ── Metrics ───────────────────────────────────────────────────────────────
	setString(&cfg.Metrics.Path, DefaultMetricsPath)
	setString(&cfg.Metrics.Namespace, DefaultMetricsNamespace)
}

func setInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 {
		*dst = v
	}
}

//Personal.AI order the ending
