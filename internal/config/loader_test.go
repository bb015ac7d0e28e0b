package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  http:
    port: 9000
log:
  level: debug
analysis:
  clause_limit: 12
remote:
  backend: granite
  timeout: 10s
kafka:
  brokers: ["k1:9092", "k2:9092"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12, cfg.Analysis.ClauseLimit)
	assert.Equal(t, BackendGranite, cfg.Remote.Backend)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)

	assert.Equal(t, DefaultMaxClauseLength, cfg.Analysis.MaxClauseLength)
	assert.Equal(t, DefaultSimplifyTimeout, cfg.Remote.SimplifyTimeout)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, "analysis:\n  max_clause_length: 10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_clause_length")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CLAUSEWISE_ANALYSIS_CLAUSE_LIMIT", "7")
	t.Setenv("CLAUSEWISE_REDIS_ADDR", "cache:6379")
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Analysis.ClauseLimit)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestLoadFromEnv_LegacyNames(t *testing.T) {
	t.Setenv("HUGGINGFACE_API_KEY", "hf-key")
	t.Setenv("IBM_API_KEY", "ibm-key")
	t.Setenv("GRANITE_URL", "https://granite.example.com/v1")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "hf-key", cfg.Remote.HuggingFace.APIKey)
	assert.Equal(t, "ibm-key", cfg.Remote.Granite.APIKey)
	assert.Equal(t, "https://granite.example.com/v1", cfg.Remote.Granite.BaseURL)
}

func TestLoad_DotEnvBesideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLAUSEWISE_METRICS_NAMESPACE=dotenv_ns\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CLAUSEWISE_METRICS_NAMESPACE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dotenv_ns", cfg.Metrics.Namespace)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "none.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	assert.Error(t, Watch(filepath.Join(t.TempDir(), "none.yaml"), func(*Config) {}))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	changed := make(chan string, 16)
	require.NoError(t, Watch(path, func(c *Config) {
		select {
		case changed <- c.Log.Level:
		default:
		}
	}))

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-changed:
			if level == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

//Personal.AI order the ending
