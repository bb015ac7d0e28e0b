// Package integration runs the HTTP API end to end: a runtime built by
// bootstrap, the gin router behind httptest and the Go SDK as the caller.
// Stores are in-process unless the environment points at real ones.
package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseWise/internal/bootstrap"
	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/ingestion"
	httpserver "github.com/turtacn/ClauseWise/internal/interfaces/http"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/handlers"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/middleware"
	"github.com/turtacn/ClauseWise/internal/testutil"
	"github.com/turtacn/ClauseWise/pkg/client"
)

// ---------------------------------------------------------------------------
// Environment detection
// ---------------------------------------------------------------------------

const (
	// EnvIntegrationEnabled enables the tests that need external stores.
	EnvIntegrationEnabled = "CLAUSEWISE_INTEGRATION_TEST"

	// EnvPostgresHost and EnvPostgresPort locate the test database.
	EnvPostgresHost = "CLAUSEWISE_TEST_POSTGRES_HOST"
	EnvPostgresPort = "CLAUSEWISE_TEST_POSTGRES_PORT"

	DefaultPostgresHost = "localhost"
	DefaultPostgresPort = 5432

	// TestTimeout bounds a single test.
	TestTimeout = 60 * time.Second

	// Version is reported by /healthz.
	Version = "integration"
)

// SkipIfNoIntegration skips the calling test when the integration flag is unset.
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// PostgresConfig returns the database section for the external test database.
func PostgresConfig() config.DatabaseConfig {
	cfg := config.Default().Database
	cfg.Enabled = true
	cfg.Host = envOr(EnvPostgresHost, DefaultPostgresHost)
	cfg.Port = DefaultPostgresPort
	if p, err := strconv.Atoi(os.Getenv(EnvPostgresPort)); err == nil {
		cfg.Port = p
	}
	cfg.User, cfg.Password, cfg.DBName = "clausewise", "clausewise", "clausewise_test"
	cfg.SSLMode = "disable"
	cfg.AutoMigrate = true
	cfg.MigrationPath = ""
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ---------------------------------------------------------------------------
// TestEnvironment
// ---------------------------------------------------------------------------

// TestEnvironment is one API server and a client pointed at it.
type TestEnvironment struct {
	Ctx     context.Context
	Cfg     *config.Config
	Logger  *testutil.MockLogger
	Runtime *bootstrap.Runtime
	Server  *httptest.Server
	Client  *client.Client
}

// SetupTestEnvironment builds a runtime from config.Default after applying
// mutate, and serves the full router. Everything is released by t.Cleanup.
func SetupTestEnvironment(t *testing.T, mutate func(*config.Config), opts ...client.Option) *TestEnvironment {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	t.Cleanup(cancel)

	logger := testutil.NewMockLogger()
	rt, err := bootstrap.Build(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AnalysisHandler: handlers.NewAnalysisHandler(rt.Analyzer, rt.Reports, ingestion.New(cfg.Server.HTTP.MaxBodySize, logger), logger),
		ReportHandler:   handlers.NewReportHandler(rt.Reports),
		HealthHandler:   handlers.NewHealthHandler(Version, rt.Checkers...),
		CORS:            middleware.DefaultCORSConfig(),
		Logging:         middleware.DefaultLoggingConfig(),
		APIKeys:         cfg.Server.HTTP.APIKeys,
		MaxBodySize:     cfg.Server.HTTP.MaxBodySize,
		Logger:          logger,
		Metrics:         rt.Metrics,
		MetricsHandler:  rt.Collector.Handler(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	opts = append([]client.Option{client.WithRetry(0, 0, 0)}, opts...)
	c, err := client.NewClient(srv.URL, opts...)
	require.NoError(t, err)

	return &TestEnvironment{
		Ctx:     ctx,
		Cfg:     cfg,
		Logger:  logger,
		Runtime: rt,
		Server:  srv,
		Client:  c,
	}
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const SampleNDA = `MUTUAL NON-DISCLOSURE AGREEMENT

This Agreement is entered into between Acme Corporation ("Company") and John Smith ("Recipient") on January 15, 2024.

1. CONFIDENTIAL INFORMATION. "Confidential Information" means any information disclosed by Company to Recipient, whether orally or in writing, that is designated as confidential.

2. NON-DISCLOSURE. Recipient agrees not to use any Confidential Information for any purpose except to evaluate a possible business relationship with Company.

3. TERM. This Agreement shall remain in effect for a period of two (2) years from the date of this Agreement.

4. GOVERNING LAW. This Agreement shall be governed by the laws of the State of Delaware.`

const SampleLease = `RESIDENTIAL LEASE AGREEMENT

The Landlord agrees to lease the premises at 12 Elm Street to the Tenant.

1. RENT. Tenant shall pay monthly rent of $1,500.00 on the first day of each month.

2. SECURITY DEPOSIT. Tenant shall pay a security deposit of $3,000.00 prior to occupancy of the premises.

3. TERMINATION. Either party may terminate this lease upon sixty (60) days written notice.`

//Personal.AI order the ending
