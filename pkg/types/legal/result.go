package legal

import (
	"strings"

	"github.com/turtacn/ClauseWise/pkg/errors"
)

// Source tells which path produced a result.
type Source string

// SourceLocal is the built-in heuristic path.
const SourceLocal Source = "local"

// RemoteSource names a remote collaborator as a result source.
func RemoteSource(collaborator string) Source {
	return Source("remote:" + collaborator)
}

// IsRemote reports whether the source is a remote collaborator.
func (s Source) IsRemote() bool {
	return strings.HasPrefix(string(s), "remote:")
}

// Failure is the payload of an unsuccessful Result.
type Failure struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Result is the tagged outcome of an analysis operation. On success Value and
// Source are set and Failure is nil; on failure only Failure is meaningful.
// Warnings carry informational notes, such as a remote fallback.
type Result[T any] struct {
	Success  bool     `json:"success"`
	Value    T        `json:"value"`
	Source   Source   `json:"source,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Failure  *Failure `json:"failure,omitempty"`
}

// Ok builds a successful result.
func Ok[T any](v T, src Source) Result[T] {
	return Result[T]{Success: true, Value: v, Source: src}
}

// OkWithWarning builds a successful result that carries one warning.
func OkWithWarning[T any](v T, src Source, warning string) Result[T] {
	r := Ok(v, src)
	if warning != "" {
		r.Warnings = []string{warning}
	}
	return r
}

// Fail builds a failed result.
func Fail[T any](code errors.ErrorCode, message string) Result[T] {
	return Result[T]{Failure: &Failure{Code: code, Message: message}}
}

// FailFrom builds a failed result from an error, keeping its AppError code.
func FailFrom[T any](err error) Result[T] {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || code == errors.CodeOK {
		code = errors.ErrCodeInternal
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Fail[T](code, msg)
}

// Unwrap returns the value, or an AppError rebuilt from the failure.
func (r Result[T]) Unwrap() (T, error) {
	if r.Success {
		return r.Value, nil
	}
	var zero T
	if r.Failure == nil {
		return zero, errors.Internal("result carries neither value nor failure")
	}
	return zero, errors.New(r.Failure.Code, r.Failure.Message)
}

//Personal.AI order the ending
