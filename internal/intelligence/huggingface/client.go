// Package huggingface calls a text-generation model on the Hugging Face
// inference API and turns its free-text replies into ClauseWise values.
package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/intelligence/common"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Name identifies this collaborator in sources, logs and metrics.
const Name = "huggingface"

const (
	classifyInputLimit = 1000
	extractInputLimit  = 2000
	summaryInputLimit  = 2000

	// classificationConfidence is reported for remote classifications; the
	// API returns generated text without a score.
	classificationConfidence = 0.9
	entityConfidence         = 0.8

	maxTimeout = 60 * time.Second
)

// Config addresses the inference endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds classify and entity calls; GenerateTimeout bounds
	// simplify and summarize. Both are capped at 60s.
	Timeout         time.Duration
	GenerateTimeout time.Duration
}

// Client implements common.Collaborator.
type Client struct {
	cfg       Config
	transport *common.Transport
	logger    logging.Logger
}

var _ common.Collaborator = (*Client)(nil)

type parameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     bool    `json:"do_sample"`
}

type generateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// NewClient builds a Client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger logging.Logger) *Client {
	cfg.Timeout = capTimeout(cfg.Timeout)
	cfg.GenerateTimeout = capTimeout(cfg.GenerateTimeout)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		cfg:       cfg,
		transport: common.NewTransport(Name, cfg.BaseURL, cfg.APIKey, httpClient, logger),
		logger:    logger.Named(Name),
	}
}

func capTimeout(d time.Duration) time.Duration {
	if d <= 0 || d > maxTimeout {
		return maxTimeout
	}
	return d
}

func (c *Client) Name() string { return Name }

// generate posts a prompt and returns the first generated text, trimmed.
func (c *Client) generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	req := generateRequest{
		Inputs: prompt,
		Parameters: parameters{
			MaxNewTokens: 1024,
			Temperature:  0.7,
			TopP:         0.9,
			DoSample:     true,
		},
	}
	var out []generation
	if err := c.transport.Post(ctx, "/"+c.cfg.Model, timeout, req, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", errors.Malformed(Name, fmt.Errorf("no generations"))
	}
	text := strings.TrimSpace(out[0].GeneratedText)
	if text == "" {
		return "", errors.Malformed(Name, fmt.Errorf("empty generated_text"))
	}
	return text, nil
}

// Classify asks the model for a document type name and maps the reply onto
// the DocumentType enum.
func (c *Client) Classify(ctx context.Context, text string) (legal.Classification, error) {
	prompt := "Analyze this legal document and classify its type. Return only the document type name.\n\n" +
		"Document text:\n" + common.Truncate(text, classifyInputLimit) + "\n\nDocument type:"
	reply, err := c.generate(ctx, prompt, c.cfg.Timeout)
	if err != nil {
		return legal.Classification{}, err
	}
	return legal.NewClassification(legal.ParseDocumentType(reply), classificationConfidence), nil
}

func (c *Client) Simplify(ctx context.Context, text string) (string, error) {
	prompt := "Simplify this legal clause in plain English that a non-lawyer can understand. Keep it concise and clear.\n\n" +
		"Original clause:\n" + text + "\n\nSimplified version:"
	return c.generate(ctx, prompt, c.cfg.GenerateTimeout)
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	prompt := "Create a comprehensive summary of this legal document. Include the main purpose, key parties, " +
		"important terms, and critical obligations. Make it easy for a non-lawyer to understand.\n\n" +
		"Document text:\n" + common.Truncate(text, summaryInputLimit) + "\n\nSummary:"
	return c.generate(ctx, prompt, c.cfg.GenerateTimeout)
}

func (c *Client) ExtractEntities(ctx context.Context, text string) ([]legal.Entity, error) {
	prompt := "Extract all legal entities, parties, dates, amounts, and important terms from this legal document. " +
		"Return them in a structured format.\n\n" +
		"Document text:\n" + common.Truncate(text, extractInputLimit) + "\n\n" +
		"Extract and list:\n1. Company names and parties\n2. Dates and time periods\n3. Monetary amounts\n" +
		"4. Legal terms and conditions\n5. Key obligations and rights\n\nEntities found:"
	reply, err := c.generate(ctx, prompt, c.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return ParseEntities(reply), nil
}

var entityLineKeywords = []string{"company", "party", "date", "amount", "term", "obligation"}

// ParseEntities reads one entity per reply line. Only lines mentioning an
// entity keyword count; the keyword decides the kind.
func ParseEntities(reply string) []legal.Entity {
	out := make([]legal.Entity, 0)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		matched := false
		for _, kw := range entityLineKeywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		var kind legal.EntityKind
		switch {
		case strings.Contains(lower, "company"), strings.Contains(lower, "party"):
			kind = legal.EntityOrganization
		case strings.Contains(lower, "date"):
			kind = legal.EntityDate
		case strings.Contains(lower, "amount"), strings.Contains(line, "$"):
			kind = legal.EntityMonetaryAmount
		default:
			kind = legal.EntityLegalTerm
		}
		out = append(out, legal.Entity{Text: line, Kind: kind, Confidence: entityConfidence})
	}
	return out
}

//Personal.AI order the ending
