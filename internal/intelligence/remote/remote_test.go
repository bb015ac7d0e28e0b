package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

func TestNew_Disabled(t *testing.T) {
	c, err := New(config.RemoteConfig{Enabled: false}, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNew_Backends(t *testing.T) {
	cfg := config.RemoteConfig{
		Enabled:         true,
		Timeout:         time.Second,
		SimplifyTimeout: time.Second,
		HuggingFace:     config.BackendConfig{BaseURL: "http://hf", APIKey: "k", Model: "m"},
		Granite:         config.BackendConfig{BaseURL: "http://granite", APIKey: "k", Model: "g"},
	}

	cfg.Backend = config.BackendHuggingFace
	c, err := New(cfg, nil, nil, prometheus.NewNoopMetrics())
	require.NoError(t, err)
	assert.Equal(t, "huggingface", c.Name())

	cfg.Backend = config.BackendGranite
	c, err = New(cfg, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "granite", c.Name())

	cfg.Backend = "openai"
	_, err = New(cfg, nil, nil, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

//Personal.AI order the ending
