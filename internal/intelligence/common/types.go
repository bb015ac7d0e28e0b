// Package common defines the contract every remote language-model
// collaborator satisfies and the HTTP plumbing the concrete backends share.
package common

import (
	"context"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Operation names, used in logs, metrics and warnings.
const (
	OpClassify        = "classify"
	OpSimplify        = "simplify"
	OpExtractEntities = "extract_entities"
	OpSummarize       = "summarize"
)

// Collaborator is an optional remote model service. Every method makes at
// most one network attempt and fails with one of:
//
//   - COLLABORATOR_UNAVAILABLE: unreachable, timed out or non-2xx reply
//   - MALFORMED_COLLABORATOR_RESPONSE: 2xx reply with an empty or unparseable body
//   - UNSUPPORTED_OPERATION: the backend has no endpoint for the operation
//
// Callers recover from all three with the local rule-based path.
type Collaborator interface {
	Name() string
	Classify(ctx context.Context, text string) (legal.Classification, error)
	Simplify(ctx context.Context, text string) (string, error)
	ExtractEntities(ctx context.Context, text string) ([]legal.Entity, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// Unsupported reports that collaborator has no endpoint for op.
func Unsupported(collaborator, op string) *errors.AppError {
	return errors.New(errors.ErrCodeUnsupportedOperation, collaborator+" does not support "+op)
}

// Reason names the fallback cause carried by err, for warnings and metric
// labels. Errors outside the collaborator taxonomy yield "UNKNOWN".
func Reason(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeCollaboratorUnavailable:
		return "COLLABORATOR_UNAVAILABLE"
	case errors.ErrCodeMalformedResponse:
		return "MALFORMED_COLLABORATOR_RESPONSE"
	case errors.ErrCodeUnsupportedOperation:
		return "UNSUPPORTED_OPERATION"
	default:
		return "UNKNOWN"
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

//Personal.AI order the ending
