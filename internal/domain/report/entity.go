// Package report defines the persisted form of an analysis report and the
// repository contract the storage adapters implement.
package report

import (
	"fmt"
	"time"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Status is the processing state of a stored report.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", errors.InvalidParam(fmt.Sprintf("unknown report status %q", s))
	}
	return st, nil
}

// StoredReport is one analysis request and, once completed, its result.
type StoredReport struct {
	ID           string                `json:"id"`
	DocumentID   string                `json:"document_id"`
	Filename     string                `json:"filename"`
	ContentHash  string                `json:"content_hash"`
	Status       Status                `json:"status"`
	DocumentType legal.DocumentType    `json:"document_type,omitempty"`
	Confidence   float64               `json:"confidence,omitempty"`
	Report       *legal.AnalysisReport `json:"report,omitempty"`
	Error        string                `json:"error,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// NewPending creates a pending report for doc under id.
func NewPending(id string, doc legal.Document) *StoredReport {
	now := time.Now().UTC()
	return &StoredReport{
		ID:          id,
		DocumentID:  doc.ID,
		Filename:    doc.Filename,
		ContentHash: doc.ContentHash(),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewCompleted creates a completed report for doc from an analysis result.
func NewCompleted(doc legal.Document, r *legal.AnalysisReport) *StoredReport {
	s := NewPending(r.ID, doc)
	s.Complete(r)
	return s
}

// Complete attaches the analysis result and marks the report completed.
func (s *StoredReport) Complete(r *legal.AnalysisReport) {
	s.Report = r
	s.DocumentType = r.DocumentType.Type
	s.Confidence = r.DocumentType.Confidence
	s.Status = StatusCompleted
	s.Error = ""
	s.UpdatedAt = time.Now().UTC()
}

// Fail marks the report failed with reason.
func (s *StoredReport) Fail(reason string) {
	s.Status = StatusFailed
	s.Error = reason
	s.UpdatedAt = time.Now().UTC()
}

// Validate checks the invariants a repository relies on.
func (s *StoredReport) Validate() error {
	if s.ID == "" {
		return errors.InvalidParam("report id cannot be empty")
	}
	if !s.Status.IsValid() {
		return errors.InvalidParam(fmt.Sprintf("unknown report status %q", s.Status))
	}
	if s.Status == StatusCompleted && s.Report == nil {
		return errors.InvalidParam("completed report carries no analysis")
	}
	return nil
}

// NotFound is the error repositories return for a missing report.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeReportNotFound, fmt.Sprintf("report %s not found", id))
}

//Personal.AI order the ending
