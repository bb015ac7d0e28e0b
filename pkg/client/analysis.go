package client

import (
	"context"
	"fmt"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// DocumentRequest is the body of every whole-document call.
type DocumentRequest struct {
	Filename    string `json:"filename"`
	Text        string `json:"text"`
	ClauseLimit int    `json:"clause_limit,omitempty"`
}

// Result is a value together with the tier that produced it.
type Result[T any] struct {
	Value    T            `json:"value"`
	Source   legal.Source `json:"source"`
	Warnings []string     `json:"warnings,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

func validateDocument(req *DocumentRequest) error {
	if req == nil {
		return errors.InvalidParam("request is required")
	}
	if req.ClauseLimit < 0 {
		return errors.InvalidParam("clause_limit must be >= 0")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Whole-document analysis
// ---------------------------------------------------------------------------

// Analyze runs the full pipeline and returns the report. Nothing is stored.
func (c *Client) Analyze(ctx context.Context, req *DocumentRequest) (*legal.AnalysisReport, error) {
	if err := validateDocument(req); err != nil {
		return nil, err
	}
	var out legal.AnalysisReport
	if err := c.post(ctx, "/api/v1/analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Classify returns the document type and its confidence.
func (c *Client) Classify(ctx context.Context, req *DocumentRequest) (*Result[legal.Classification], error) {
	return postResult[legal.Classification](ctx, c, "/api/v1/classify", req)
}

// Simplify rewrites the document in plain language.
func (c *Client) Simplify(ctx context.Context, req *DocumentRequest) (*Result[string], error) {
	return postResult[string](ctx, c, "/api/v1/simplify", req)
}

// ExtractEntities returns the entities found in the document.
func (c *Client) ExtractEntities(ctx context.Context, req *DocumentRequest) (*Result[[]legal.Entity], error) {
	return postResult[[]legal.Entity](ctx, c, "/api/v1/entities", req)
}

// Summarize returns the document summary.
func (c *Client) Summarize(ctx context.Context, req *DocumentRequest) (*Result[string], error) {
	return postResult[string](ctx, c, "/api/v1/summarize", req)
}

// AnalyzeClauses returns per-clause analysis for at most limit clauses; zero
// means the server default.
func (c *Client) AnalyzeClauses(ctx context.Context, req *DocumentRequest, limit int) (*Result[[]legal.ClauseAnalysis], error) {
	if limit < 0 {
		return nil, errors.InvalidParam("limit must be >= 0")
	}
	path := "/api/v1/clauses"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	return postResult[[]legal.ClauseAnalysis](ctx, c, path, req)
}

func postResult[T any](ctx context.Context, c *Client, path string, req *DocumentRequest) (*Result[T], error) {
	if err := validateDocument(req); err != nil {
		return nil, err
	}
	var out Result[T]
	if err := c.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Raw text helpers
// ---------------------------------------------------------------------------

// Segment splits text into classified clauses.
func (c *Client) Segment(ctx context.Context, text string) ([]legal.Clause, error) {
	var out struct {
		Clauses []legal.Clause `json:"clauses"`
	}
	if err := c.post(ctx, "/api/v1/segment", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.Clauses, nil
}

// ClassifyClause returns the clause type of a single clause.
func (c *Client) ClassifyClause(ctx context.Context, text string) (legal.ClauseType, error) {
	var out struct {
		ClauseType legal.ClauseType `json:"clause_type"`
	}
	if err := c.post(ctx, "/api/v1/classify/clause", textRequest{Text: text}, &out); err != nil {
		return "", err
	}
	return out.ClauseType, nil
}

// SimplifyClause rewrites a single clause with the local rules.
func (c *Client) SimplifyClause(ctx context.Context, text string) (string, error) {
	var out struct {
		Simplified string `json:"simplified"`
	}
	if err := c.post(ctx, "/api/v1/simplify/clause", textRequest{Text: text}, &out); err != nil {
		return "", err
	}
	return out.Simplified, nil
}

// Stats returns word, sentence and paragraph counts for text.
func (c *Client) Stats(ctx context.Context, text string) (*legal.DocumentStats, error) {
	var out legal.DocumentStats
	if err := c.post(ctx, "/api/v1/stats", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
