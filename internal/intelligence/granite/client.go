// Package granite calls the IBM Granite REST endpoints for classification,
// simplification and entity extraction. Granite has no summarization
// endpoint.
package granite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/intelligence/common"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const Name = "granite"

const (
	classifyInputLimit = 2000
	simplifyInputLimit = 3000
	extractInputLimit  = 2000

	defaultClassificationConfidence = 0.9
	defaultEntityConfidence         = 0.8

	maxTimeout = 60 * time.Second
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds classify and extract calls, GenerateTimeout bounds
	// simplify. Both are capped at 60s.
	Timeout         time.Duration
	GenerateTimeout time.Duration
}

// Client implements common.Collaborator against the Granite API.
type Client struct {
	cfg       Config
	transport *common.Transport
	logger    logging.Logger
}

var _ common.Collaborator = (*Client)(nil)

// NewClient builds a Client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger logging.Logger) *Client {
	cfg.Timeout = capTimeout(cfg.Timeout, 30*time.Second)
	cfg.GenerateTimeout = capTimeout(cfg.GenerateTimeout, maxTimeout)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		cfg:       cfg,
		transport: common.NewTransport(Name, cfg.BaseURL, cfg.APIKey, httpClient, logger),
		logger:    logger.Named(Name),
	}
}

func capTimeout(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	if d > maxTimeout {
		return maxTimeout
	}
	return d
}

func (c *Client) Name() string { return Name }

// ─────────────────────────────────────────────────────────────────────────────
// Wire types
// ─────────────────────────────────────────────────────────────────────────────

type taskRequest struct {
	Text        string          `json:"text"`
	Task        string          `json:"task"`
	Model       string          `json:"model"`
	Parameters  *simplifyParams `json:"parameters,omitempty"`
	EntityTypes []string        `json:"entity_types,omitempty"`
}

type simplifyParams struct {
	Style           string `json:"style"`
	PreserveMeaning bool   `json:"preserve_meaning"`
}

type classifyResponse struct {
	Classification string   `json:"classification"`
	Confidence     *float64 `json:"confidence"`
}

type simplifyResponse struct {
	SimplifiedText string `json:"simplified_text"`
}

type extractResponse struct {
	Entities json.RawMessage `json:"entities"`
}

type wireEntity struct {
	Text       string   `json:"text"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
}

var requestedEntityTypes = []string{"PERSON", "ORGANIZATION", "DATE", "MONEY", "LOCATION", "LEGAL_TERM"}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

// Classify posts to /classify. A reply without a confidence is reported at 0.9.
func (c *Client) Classify(ctx context.Context, text string) (legal.Classification, error) {
	req := taskRequest{
		Text:  common.Truncate(text, classifyInputLimit),
		Task:  "document_classification",
		Model: c.cfg.Model,
	}
	var out classifyResponse
	if err := c.transport.Post(ctx, "/classify", c.cfg.Timeout, req, &out); err != nil {
		return legal.Classification{}, err
	}
	if strings.TrimSpace(out.Classification) == "" {
		return legal.Classification{}, errors.Malformed(Name, fmt.Errorf("missing classification"))
	}
	confidence := defaultClassificationConfidence
	if out.Confidence != nil {
		confidence = *out.Confidence
	}
	return legal.NewClassification(legal.ParseDocumentType(out.Classification), confidence), nil
}

// Simplify posts to /simplify with the legal_to_plain style.
func (c *Client) Simplify(ctx context.Context, text string) (string, error) {
	req := taskRequest{
		Text:  common.Truncate(text, simplifyInputLimit),
		Task:  "text_simplification",
		Model: c.cfg.Model,
		Parameters: &simplifyParams{
			Style:           "legal_to_plain",
			PreserveMeaning: true,
		},
	}
	var out simplifyResponse
	if err := c.transport.Post(ctx, "/simplify", c.cfg.GenerateTimeout, req, &out); err != nil {
		return "", err
	}
	simplified := strings.TrimSpace(out.SimplifiedText)
	if simplified == "" {
		return "", errors.Malformed(Name, fmt.Errorf("missing simplified_text"))
	}
	return simplified, nil
}

// ExtractEntities posts to /extract_entities. The entities field may be a
// list of {text, type, confidence} objects or an object mapping a type to
// a list of strings.
func (c *Client) ExtractEntities(ctx context.Context, text string) ([]legal.Entity, error) {
	req := taskRequest{
		Text:        common.Truncate(text, extractInputLimit),
		Task:        "entity_extraction",
		Model:       c.cfg.Model,
		EntityTypes: requestedEntityTypes,
	}
	var out extractResponse
	if err := c.transport.Post(ctx, "/extract_entities", c.cfg.Timeout, req, &out); err != nil {
		return nil, err
	}
	entities, err := decodeEntities(out.Entities)
	if err != nil {
		return nil, errors.Malformed(Name, err)
	}
	return entities, nil
}

// Summarize is not offered by Granite.
func (c *Client) Summarize(context.Context, string) (string, error) {
	return "", common.Unsupported(Name, common.OpSummarize)
}

func decodeEntities(raw json.RawMessage) ([]legal.Entity, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("missing entities")
	}
	out := make([]legal.Entity, 0)

	var list []wireEntity
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, e := range list {
			if strings.TrimSpace(e.Text) == "" {
				continue
			}
			confidence := defaultEntityConfidence
			if e.Confidence != nil {
				confidence = clamp(*e.Confidence)
			}
			out = append(out, legal.Entity{Text: e.Text, Kind: kindOf(e.Type), Confidence: confidence})
		}
		return out, nil
	}

	var grouped map[string][]string
	if err := json.Unmarshal(raw, &grouped); err != nil {
		return nil, err
	}
	for _, t := range requestedEntityTypes {
		for _, text := range grouped[t] {
			out = append(out, legal.Entity{Text: text, Kind: kindOf(t), Confidence: defaultEntityConfidence})
		}
	}
	return out, nil
}

// kindOf maps Granite entity labels onto EntityKind.
func kindOf(label string) legal.EntityKind {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ORGANIZATION", "ORG", "PERSON", "PARTY":
		return legal.EntityOrganization
	case "DATE":
		return legal.EntityDate
	case "MONEY", "MONETARY_AMOUNT":
		return legal.EntityMonetaryAmount
	case "OBLIGATION":
		return legal.EntityObligation
	default:
		return legal.EntityLegalTerm
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

//Personal.AI order the ending
