package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

// maxResponseBytes caps how much of a reply body is read.
const maxResponseBytes = 4 << 20

// Transport posts JSON to a remote model service with bearer authentication.
// It never retries.
type Transport struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logging.Logger
}

// NewTransport builds a Transport for the named collaborator. A nil client
// uses a fresh http.Client; per-call deadlines come from Post's timeout.
func NewTransport(name, baseURL, apiKey string, client *http.Client, logger logging.Logger) *Transport {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Transport{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger.With(logging.String(logging.FieldCollaborator, name)),
	}
}

// Post sends payload to baseURL+path and decodes the reply into out. The
// whole exchange is bounded by timeout.
func (t *Transport) Post(ctx context.Context, path string, timeout time.Duration, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode request")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Unavailable(t.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug("remote call failed", logging.String("path", path), logging.Err(err))
		return errors.Unavailable(t.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Unavailable(t.name, err)
	}
	t.logger.Debug("remote call",
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Unavailable(t.name, fmt.Errorf("status %d", resp.StatusCode))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.Malformed(t.name, fmt.Errorf("empty body"))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Malformed(t.name, err)
	}
	return nil
}

//Personal.AI order the ending
