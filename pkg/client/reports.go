package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Report statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Report is a stored analysis. Report is set once Status is completed and
// Error once it is failed.
type Report struct {
	ID           string                `json:"id"`
	DocumentID   string                `json:"document_id"`
	Filename     string                `json:"filename"`
	ContentHash  string                `json:"content_hash"`
	Status       string                `json:"status"`
	DocumentType legal.DocumentType    `json:"document_type,omitempty"`
	Confidence   float64               `json:"confidence,omitempty"`
	Report       *legal.AnalysisReport `json:"report,omitempty"`
	Error        string                `json:"error,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Done reports whether the report reached a final status.
func (r *Report) Done() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Submission is the reply to SubmitReport.
type Submission struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ReportPage is one page of ListReports.
type ReportPage struct {
	Items []Report `json:"items"`
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Size  int      `json:"size"`
}

// SubmitReport queues the document for analysis and returns the report id.
func (c *Client) SubmitReport(ctx context.Context, req *DocumentRequest) (*Submission, error) {
	if err := validateDocument(req); err != nil {
		return nil, err
	}
	var out Submission
	if err := c.post(ctx, "/api/v1/reports", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReport fetches a stored report by id.
func (c *Client) GetReport(ctx context.Context, id string) (*Report, error) {
	if id == "" {
		return nil, errors.InvalidParam("report id is required")
	}
	var out Report
	if err := c.get(ctx, "/api/v1/reports/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReports returns one page of stored reports, newest first.
func (c *Client) ListReports(ctx context.Context, page, size int) (*ReportPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	path := "/api/v1/reports"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out ReportPage
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReport removes a stored report.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	if id == "" {
		return errors.InvalidParam("report id is required")
	}
	return c.delete(ctx, "/api/v1/reports/"+url.PathEscape(id))
}

// WaitForReport polls GetReport every interval until the report is done or
// ctx ends.
func (c *Client) WaitForReport(ctx context.Context, id string, interval time.Duration) (*Report, error) {
	if interval <= 0 {
		interval = time.Second
	}
	for {
		r, err := c.GetReport(ctx, id)
		if err != nil {
			return nil, err
		}
		if r.Done() {
			return r, nil
		}
		if err := sleep(ctx, interval); err != nil {
			return r, err
		}
	}
}

//Personal.AI order the ending
