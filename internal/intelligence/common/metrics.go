package common

import (
	"context"
	"time"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// instrumented records remote_call_duration_seconds for every call made
// through the wrapped collaborator.
type instrumented struct {
	next    Collaborator
	metrics *prometheus.AnalysisMetrics
}

// Instrument wraps c so each call is timed. A nil metrics returns c unchanged.
func Instrument(c Collaborator, metrics *prometheus.AnalysisMetrics) Collaborator {
	if c == nil || metrics == nil {
		return c
	}
	return &instrumented{next: c, metrics: metrics}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) observe(op string, start time.Time, err error) {
	i.metrics.RecordRemoteCall(i.next.Name(), op, err, time.Since(start))
}

func (i *instrumented) Classify(ctx context.Context, text string) (c legal.Classification, err error) {
	defer func(start time.Time) { i.observe(OpClassify, start, err) }(time.Now())
	return i.next.Classify(ctx, text)
}

func (i *instrumented) Simplify(ctx context.Context, text string) (s string, err error) {
	defer func(start time.Time) { i.observe(OpSimplify, start, err) }(time.Now())
	return i.next.Simplify(ctx, text)
}

func (i *instrumented) ExtractEntities(ctx context.Context, text string) (e []legal.Entity, err error) {
	defer func(start time.Time) { i.observe(OpExtractEntities, start, err) }(time.Now())
	return i.next.ExtractEntities(ctx, text)
}

func (i *instrumented) Summarize(ctx context.Context, text string) (s string, err error) {
	defer func(start time.Time) { i.observe(OpSummarize, start, err) }(time.Now())
	return i.next.Summarize(ctx, text)
}

//Personal.AI order the ending
