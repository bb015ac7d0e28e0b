// Package remote builds the configured remote collaborator.
package remote

import (
	"fmt"
	"net/http"

	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseWise/internal/intelligence/common"
	"github.com/turtacn/ClauseWise/internal/intelligence/granite"
	"github.com/turtacn/ClauseWise/internal/intelligence/huggingface"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

// New returns the collaborator selected by cfg, instrumented with metrics.
// It returns nil when remote analysis is disabled.
func New(cfg config.RemoteConfig, httpClient *http.Client, logger logging.Logger, metrics *prometheus.AnalysisMetrics) (common.Collaborator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	backend := cfg.Active()

	var c common.Collaborator
	switch cfg.Backend {
	case config.BackendHuggingFace, "":
		c = huggingface.NewClient(huggingface.Config{
			BaseURL:         backend.BaseURL,
			APIKey:          backend.APIKey,
			Model:           backend.Model,
			Timeout:         cfg.Timeout,
			GenerateTimeout: cfg.SimplifyTimeout,
		}, httpClient, logger)
	case config.BackendGranite:
		c = granite.NewClient(granite.Config{
			BaseURL:         backend.BaseURL,
			APIKey:          backend.APIKey,
			Model:           backend.Model,
			Timeout:         cfg.Timeout,
			GenerateTimeout: cfg.SimplifyTimeout,
		}, httpClient, logger)
	default:
		return nil, errors.InvalidParam(fmt.Sprintf("unknown remote backend %q", cfg.Backend))
	}

	logger.Info("remote collaborator enabled",
		logging.String(logging.FieldCollaborator, c.Name()),
		logging.String("model", backend.Model))
	return common.Instrument(c, metrics), nil
}

//Personal.AI order the ending
