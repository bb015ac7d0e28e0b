// Package analysis provides the application-level orchestrator that combines
// the local rule-based engine with an optional remote language-model
// collaborator. Every remote failure degrades to the local path, so document
// operations succeed whenever their input is valid.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseWise/internal/intelligence/common"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Operation names used in logs, metrics and report sources.
const (
	OpAnalyze         = "analyze"
	OpAnalyzeClauses  = "analyze_clauses"
	OpClassify        = common.OpClassify
	OpSimplify        = common.OpSimplify
	OpExtractEntities = common.OpExtractEntities
	OpSummarize       = common.OpSummarize
)

const (
	reasonUnsupported  = "UNSUPPORTED_OPERATION"
	defaultClauseLimit = 20
)

// Report source keys.
const (
	StepClassification = "classification"
	StepSummary        = "summary"
	StepClauses        = "clauses"
	StepSimplified     = "simplified"
	StepEntities       = "entities"
)

// Service defines the analysis operations exposed to the HTTP API, CLI and worker.
type Service interface {
	Summarize(ctx context.Context, doc legal.Document) legal.Result[string]
	SimplifyDocument(ctx context.Context, doc legal.Document) legal.Result[string]
	Classify(ctx context.Context, doc legal.Document) legal.Result[legal.Classification]
	ExtractEntities(ctx context.Context, doc legal.Document) legal.Result[[]legal.Entity]
	AnalyzeClauses(ctx context.Context, doc legal.Document, limit int) legal.Result[[]legal.ClauseAnalysis]
	Analyze(ctx context.Context, doc legal.Document, opts Options) (*legal.AnalysisReport, error)
	AnalyzeBatch(ctx context.Context, docs []legal.Document, opts Options) ([]BatchResult, error)

	Segment(text string) []legal.Clause
	ClassifyClause(text string) legal.ClauseType
	SimplifyClause(text string) string
	ClauseStructure(text string) legal.ClauseStructure
	Stats(text string) legal.DocumentStats

	// Collaborator returns the configured collaborator name, or "" when
	// the service runs locally only.
	Collaborator() string
}

// Config carries the analysis limits.
type Config struct {
	MaxClauseLength int
	// ClauseLimit caps the clauses annotated by Analyze.
	ClauseLimit int
	// ExtractionClauseLimit caps a standalone AnalyzeClauses call when the
	// caller passes no limit.
	ExtractionClauseLimit int
	BatchConcurrency      int
}

func (c Config) withDefaults() Config {
	if c.ClauseLimit <= 0 {
		c.ClauseLimit = defaultClauseLimit
	}
	if c.ExtractionClauseLimit <= 0 {
		c.ExtractionClauseLimit = 15
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 4
	}
	return c
}

// Options tune a single Analyze call.
type Options struct {
	// ClauseLimit overrides Config.ClauseLimit when positive.
	ClauseLimit int
}

// BatchResult is the outcome for one document of AnalyzeBatch.
type BatchResult struct {
	DocumentID string
	Report     *legal.AnalysisReport
	Err        error
}

type serviceImpl struct {
	engine  *Engine
	remote  common.Collaborator
	logger  logging.Logger
	metrics *prometheus.AnalysisMetrics
	cfg     Config
}

// NewService creates a new analysis Service. A nil collaborator runs every
// operation locally.
func NewService(engine *Engine, collaborator common.Collaborator, logger logging.Logger, metrics *prometheus.AnalysisMetrics, cfg Config) Service {
	if engine == nil {
		engine = DefaultEngine()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNoopMetrics()
	}
	return &serviceImpl{
		engine:  engine,
		remote:  collaborator,
		logger:  logger.Named("analysis"),
		metrics: metrics,
		cfg:     cfg.withDefaults(),
	}
}

func (s *serviceImpl) Collaborator() string {
	if s.remote == nil {
		return ""
	}
	return s.remote.Name()
}

// ─────────────────────────────────────────────────────────────────────────────
// Remote-first operations
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Summarize(ctx context.Context, doc legal.Document) legal.Result[string] {
	if doc.IsBlank() {
		return blankInput[string]()
	}
	return remoteOrLocal(ctx, s, OpSummarize,
		func(ctx context.Context, c common.Collaborator) (string, error) { return c.Summarize(ctx, doc.RawText) },
		func() string { return s.engine.Insight.Summarize(doc.RawText) })
}

func (s *serviceImpl) SimplifyDocument(ctx context.Context, doc legal.Document) legal.Result[string] {
	if doc.IsBlank() {
		return blankInput[string]()
	}
	return remoteOrLocal(ctx, s, OpSimplify,
		func(ctx context.Context, c common.Collaborator) (string, error) { return c.Simplify(ctx, doc.RawText) },
		func() string { return s.engine.Rewriter.SimplifyDocument(doc.RawText) })
}

func (s *serviceImpl) Classify(ctx context.Context, doc legal.Document) legal.Result[legal.Classification] {
	if doc.IsBlank() {
		return blankInput[legal.Classification]()
	}
	return remoteOrLocal(ctx, s, OpClassify,
		func(ctx context.Context, c common.Collaborator) (legal.Classification, error) {
			return c.Classify(ctx, doc.RawText)
		},
		func() legal.Classification { return s.engine.Documents.Classify(doc.RawText) })
}

func (s *serviceImpl) ExtractEntities(ctx context.Context, doc legal.Document) legal.Result[[]legal.Entity] {
	if doc.IsBlank() {
		return blankInput[[]legal.Entity]()
	}
	return remoteOrLocal(ctx, s, OpExtractEntities,
		func(ctx context.Context, c common.Collaborator) ([]legal.Entity, error) {
			return c.ExtractEntities(ctx, doc.RawText)
		},
		func() []legal.Entity { return s.engine.Extractor.Extract(doc.RawText) })
}

// AnalyzeClauses segments doc, keeps the first limit clauses and annotates
// each one. A non-positive limit uses Config.ExtractionClauseLimit. Once a
// remote simplification fails the remaining clauses go straight to the local
// rewriter, so at most one failing remote call is made per invocation.
func (s *serviceImpl) AnalyzeClauses(ctx context.Context, doc legal.Document, limit int) legal.Result[[]legal.ClauseAnalysis] {
	if doc.IsBlank() {
		return blankInput[[]legal.ClauseAnalysis]()
	}
	if limit <= 0 {
		limit = s.cfg.ExtractionClauseLimit
	}
	start := time.Now()

	clauses := s.engine.Segmenter.Segment(doc.RawText, s.cfg.MaxClauseLength)
	s.metrics.RecordClauses(len(clauses))
	if len(clauses) > limit {
		clauses = clauses[:limit]
	}

	out := make([]legal.ClauseAnalysis, 0, len(clauses))
	var warnings []string
	remoteOK := s.remote != nil
	usedLocal := s.remote == nil
	for _, cl := range clauses {
		simplified := ""
		if remoteOK {
			text, err := s.remote.Simplify(ctx, cl.Text)
			if err == nil {
				simplified = text
			} else {
				remoteOK = false
				if w := s.fallback(ctx, OpSimplify, err); w != "" {
					warnings = append(warnings, w)
				}
			}
		}
		if simplified == "" {
			simplified = s.engine.Rewriter.Simplify(cl.Text)
			usedLocal = true
		}
		out = append(out, legal.ClauseAnalysis{
			Clause:     cl,
			Simplified: simplified,
			KeyPoints:  s.engine.Insight.KeyPoints(cl.Text),
		})
	}

	src := legal.SourceLocal
	if !usedLocal && len(out) > 0 {
		src = legal.RemoteSource(s.remote.Name())
	}
	s.metrics.RecordOperation(OpAnalyzeClauses, string(src), time.Since(start))
	res := legal.Ok(out, src)
	res.Warnings = warnings
	return res
}

// ─────────────────────────────────────────────────────────────────────────────
// Full analysis
// ─────────────────────────────────────────────────────────────────────────────

// Analyze runs every step over doc and assembles an AnalysisReport. Blank
// text fails with INPUT_ERROR before any step runs.
func (s *serviceImpl) Analyze(ctx context.Context, doc legal.Document, opts Options) (*legal.AnalysisReport, error) {
	if doc.IsBlank() {
		return nil, errors.InputError("document text is empty")
	}
	start := time.Now()
	limit := s.cfg.ClauseLimit
	if opts.ClauseLimit > 0 {
		limit = opts.ClauseLimit
	}

	report := &legal.AnalysisReport{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Sources:    make(map[string]legal.Source, 5),
	}
	note := func(step string, src legal.Source, warnings []string) {
		report.Sources[step] = src
		report.Warnings = append(report.Warnings, warnings...)
	}

	classification := s.Classify(ctx, doc)
	if !classification.Success {
		return nil, failureErr(classification.Failure)
	}
	report.DocumentType = classification.Value
	note(StepClassification, classification.Source, classification.Warnings)

	summary := s.Summarize(ctx, doc)
	if !summary.Success {
		return nil, failureErr(summary.Failure)
	}
	report.Summary = summary.Value
	note(StepSummary, summary.Source, summary.Warnings)

	clauses := s.AnalyzeClauses(ctx, doc, limit)
	if !clauses.Success {
		return nil, failureErr(clauses.Failure)
	}
	report.Clauses = clauses.Value
	note(StepClauses, clauses.Source, clauses.Warnings)

	simplified := s.SimplifyDocument(ctx, doc)
	if !simplified.Success {
		return nil, failureErr(simplified.Failure)
	}
	report.Simplified = simplified.Value
	note(StepSimplified, simplified.Source, simplified.Warnings)

	entities := s.ExtractEntities(ctx, doc)
	if !entities.Success {
		return nil, failureErr(entities.Failure)
	}
	report.Entities = entities.Value
	note(StepEntities, entities.Source, entities.Warnings)

	report.Stats = s.engine.Insight.Stats(doc.RawText)
	report.Sentiment = s.engine.Insight.Sentiment(doc.RawText)
	report.KeyPhrases = s.engine.Insight.KeyPhrases(doc.RawText)
	report.CreatedAt = time.Now().UTC()

	s.metrics.RecordOperation(OpAnalyze, string(overallSource(report.Sources)), time.Since(start))
	logging.LogOperationDuration(s.logger.WithContext(ctx), OpAnalyze, start,
		logging.String(logging.FieldDocumentID, doc.ID),
		logging.String(logging.FieldReportID, report.ID),
		logging.Int("clauses", len(report.Clauses)),
		logging.Int("warnings", len(report.Warnings)))
	return report, nil
}

// AnalyzeBatch analyzes docs concurrently, bounded by Config.BatchConcurrency.
// Results keep input order; one document failing does not stop the others.
// The returned error is non-nil only when ctx ends before the batch does.
func (s *serviceImpl) AnalyzeBatch(ctx context.Context, docs []legal.Document, opts Options) ([]BatchResult, error) {
	results := make([]BatchResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i := range docs {
		i := i
		g.Go(func() error {
			results[i].DocumentID = docs[i].ID
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Report, results[i].Err = s.Analyze(gctx, docs[i], opts)
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Local accessors
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Segment(text string) []legal.Clause {
	return s.engine.Segmenter.Segment(text, s.cfg.MaxClauseLength)
}

func (s *serviceImpl) ClassifyClause(text string) legal.ClauseType {
	return s.engine.Clauses.Classify(text)
}

func (s *serviceImpl) SimplifyClause(text string) string {
	return s.engine.Rewriter.Simplify(text)
}

func (s *serviceImpl) ClauseStructure(text string) legal.ClauseStructure {
	return s.engine.Insight.ClauseStructure(text)
}

func (s *serviceImpl) Stats(text string) legal.DocumentStats {
	return s.engine.Insight.Stats(text)
}

// ─────────────────────────────────────────────────────────────────────────────
// Fallback plumbing
// ─────────────────────────────────────────────────────────────────────────────

// remoteOrLocal tries the collaborator once and falls back to local on any
// error. Methods cannot carry type parameters, hence the free function.
func remoteOrLocal[T any](
	ctx context.Context,
	s *serviceImpl,
	op string,
	remote func(context.Context, common.Collaborator) (T, error),
	local func() T,
) legal.Result[T] {
	start := time.Now()
	var warning string
	if s.remote != nil {
		v, err := remote(ctx, s.remote)
		if err == nil {
			src := legal.RemoteSource(s.remote.Name())
			s.metrics.RecordOperation(op, string(src), time.Since(start))
			return legal.Ok(v, src)
		}
		warning = s.fallback(ctx, op, err)
	}
	v := local()
	s.metrics.RecordOperation(op, string(legal.SourceLocal), time.Since(start))
	return legal.OkWithWarning(v, legal.SourceLocal, warning)
}

// fallback records a remote failure and returns the warning to attach, which
// is empty for operations the collaborator does not support.
func (s *serviceImpl) fallback(ctx context.Context, op string, err error) string {
	name := s.remote.Name()
	reason := common.Reason(err)
	s.metrics.RecordFallback(op, name, reason)

	log := s.logger.WithContext(ctx).With(
		logging.String(logging.FieldOperation, op),
		logging.String(logging.FieldCollaborator, name),
		logging.String(logging.FieldReason, reason),
	)
	if reason == reasonUnsupported {
		log.Debug("operation not supported remotely, using local analysis")
		return ""
	}
	log.WithError(err).Warn("remote collaborator failed, using local analysis")
	return fmt.Sprintf("%s: %s %s, local analysis used", op, name, reason)
}

func blankInput[T any]() legal.Result[T] {
	return legal.Fail[T](errors.ErrCodeInputError, "document text is empty")
}

func failureErr(f *legal.Failure) error {
	if f == nil {
		return errors.Internal("analysis step failed")
	}
	return errors.New(f.Code, f.Message)
}

// overallSource is remote only when every step ran remotely.
func overallSource(sources map[string]legal.Source) legal.Source {
	var remote legal.Source
	for _, src := range sources {
		if !src.IsRemote() {
			return legal.SourceLocal
		}
		remote = src
	}
	if remote == "" {
		return legal.SourceLocal
	}
	return remote
}

//Personal.AI order the ending
