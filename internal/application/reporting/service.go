// Package reporting turns analyses into stored reports: it caches them by
// content hash, persists them to the configured backends and runs the
// asynchronous analysis jobs.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/ClauseWise/internal/application/analysis"
	"github.com/turtacn/ClauseWise/internal/domain/report"
	"github.com/turtacn/ClauseWise/internal/infrastructure/database/redis"
	"github.com/turtacn/ClauseWise/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseWise/internal/infrastructure/search/opensearch"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Cache names used in metrics.
const (
	cacheLocal  = "local"
	cacheShared = "redis"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dependencies
// ─────────────────────────────────────────────────────────────────────────────

// LocalCache is the in-process L1 cache keyed by content hash.
type LocalCache interface {
	Get(hash string) (*legal.AnalysisReport, bool)
	Set(hash string, r *legal.AnalysisReport)
	Delete(hash string)
}

// SharedCache is the L2 cache shared between replicas.
type SharedCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Archive keeps source text and report JSON in object storage.
type Archive interface {
	PutDocument(ctx context.Context, doc legal.Document) (string, error)
	GetDocument(ctx context.Context, documentID string) (string, error)
	PutReport(ctx context.Context, r *legal.AnalysisReport) (string, error)
	Delete(ctx context.Context, reportID, documentID string) error
}

// ClauseIndex is the searchable clause store.
type ClauseIndex interface {
	IndexReport(ctx context.Context, r *legal.AnalysisReport) (*opensearch.BulkResult, error)
	DeleteReport(ctx context.Context, reportID string) (int64, error)
	Search(ctx context.Context, q opensearch.ClauseQuery) (*opensearch.ClauseSearchResult, error)
}

// EventSink publishes job and completion events.
type EventSink interface {
	PublishRequested(ctx context.Context, p kafka.AnalysisRequestedPayload) error
	PublishCompleted(ctx context.Context, p kafka.AnalysisCompletedPayload) error
}

// Deps wires the backends. Only Analyzer is required; a nil store falls back
// to an in-process or no-op implementation.
type Deps struct {
	Analyzer   analysis.Service
	Repository report.Repository
	Local      LocalCache
	Shared     SharedCache
	Archive    Archive
	Index      ClauseIndex
	// Events, when nil, makes Submit run the job in-process.
	Events  EventSink
	Locks   redis.LockFactory
	Logger  logging.Logger
	Metrics *prometheus.AnalysisMetrics
}

// Config tunes the report service.
type Config struct {
	SharedCacheTTL time.Duration
	// JobLockTTL bounds how long a crashed worker blocks a redelivered job.
	JobLockTTL time.Duration
	// InlineJobTimeout bounds jobs run in-process when no event sink is set.
	InlineJobTimeout time.Duration
	Options          analysis.Options
}

func (c Config) withDefaults() Config {
	if c.SharedCacheTTL <= 0 {
		c.SharedCacheTTL = 24 * time.Hour
	}
	if c.JobLockTTL <= 0 {
		c.JobLockTTL = 2 * time.Minute
	}
	if c.InlineJobTimeout <= 0 {
		c.InlineJobTimeout = 5 * time.Minute
	}
	return c
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service manages analysis reports.
type Service interface {
	// Generate returns the report for doc, from cache when the same text
	// was analyzed before. Persistence failures become report warnings.
	Generate(ctx context.Context, doc legal.Document) (*legal.AnalysisReport, error)
	// Submit records a pending report and queues its analysis.
	Submit(ctx context.Context, doc legal.Document) (string, error)
	// Process runs one queued job to completion or failure.
	Process(ctx context.Context, job kafka.AnalysisRequestedPayload) error
	Get(ctx context.Context, id string) (*report.StoredReport, error)
	List(ctx context.Context, page, size int) ([]*report.StoredReport, int64, error)
	Delete(ctx context.Context, id string) error
	SearchClauses(ctx context.Context, query string, clauseType legal.ClauseType, size int) (*opensearch.ClauseSearchResult, error)
}

type serviceImpl struct {
	analyzer analysis.Service
	repo     report.Repository
	local    LocalCache
	shared   SharedCache
	archive  Archive
	index    ClauseIndex
	events   EventSink
	locks    redis.LockFactory
	logger   logging.Logger
	metrics  *prometheus.AnalysisMetrics
	cfg      Config
	group    singleflight.Group
}

// NewService builds the report service. It panics without an analyzer.
func NewService(deps Deps, cfg Config) Service {
	if deps.Analyzer == nil {
		panic("reporting: nil analyzer")
	}
	s := &serviceImpl{
		analyzer: deps.Analyzer,
		repo:     deps.Repository,
		local:    deps.Local,
		shared:   deps.Shared,
		archive:  deps.Archive,
		index:    deps.Index,
		events:   deps.Events,
		locks:    deps.Locks,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		cfg:      cfg.withDefaults(),
	}
	if s.repo == nil {
		s.repo = report.NewMemoryRepository()
	}
	if s.local == nil {
		s.local = noopLocalCache{}
	}
	if s.shared == nil {
		s.shared = noopSharedCache{}
	}
	if s.archive == nil {
		s.archive = newMemoryArchive()
	}
	if s.index == nil {
		s.index = noopClauseIndex{}
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	s.logger = s.logger.Named("reporting")
	if s.metrics == nil {
		s.metrics = prometheus.NewNoopMetrics()
	}
	return s
}

func sharedKey(hash string) string {
	return "report:" + hash
}

// ─────────────────────────────────────────────────────────────────────────────
// Generate
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Generate(ctx context.Context, doc legal.Document) (*legal.AnalysisReport, error) {
	if doc.IsBlank() {
		return nil, errors.InputError("document text is empty")
	}
	hash := doc.ContentHash()

	v, err, _ := s.group.Do(hash, func() (interface{}, error) {
		r, cached, err := s.generate(ctx, doc, "")
		if err != nil {
			return nil, err
		}
		if !cached {
			s.persist(ctx, doc, r, false)
		}
		return generated{report: r, cached: cached}, nil
	})
	if err != nil {
		return nil, err
	}

	// A cached analysis, or one produced for another document sharing this
	// text, is stored again under this document's identity.
	g := v.(generated)
	if !g.cached && g.report.DocumentID == doc.ID {
		return g.report, nil
	}
	r := restamp(g.report, doc, uuid.NewString())
	s.persist(ctx, doc, r, false)
	return r, nil
}

type generated struct {
	report *legal.AnalysisReport
	cached bool
}

// generate resolves the report from L1, L2, the repository, and finally a
// fresh analysis. A non-empty reportID is stamped on the result.
func (s *serviceImpl) generate(ctx context.Context, doc legal.Document, reportID string) (*legal.AnalysisReport, bool, error) {
	hash := doc.ContentHash()

	if r := s.lookup(ctx, hash); r != nil {
		s.logger.Debug("Report cache hit",
			logging.String(logging.FieldDocumentID, doc.ID),
			logging.String(logging.FieldReportID, r.ID))
		if reportID != "" {
			r = restamp(r, doc, reportID)
		}
		return r, true, nil
	}

	r, err := s.analyzer.Analyze(ctx, doc, s.cfg.Options)
	if err != nil {
		return nil, false, err
	}
	if reportID != "" {
		r.ID = reportID
	}
	return r, false, nil
}

func (s *serviceImpl) lookup(ctx context.Context, hash string) *legal.AnalysisReport {
	if r, ok := s.local.Get(hash); ok {
		s.metrics.RecordCacheAccess(cacheLocal, true)
		return r
	}
	s.metrics.RecordCacheAccess(cacheLocal, false)

	var r legal.AnalysisReport
	err := s.shared.Get(ctx, sharedKey(hash), &r)
	if err == nil {
		s.metrics.RecordCacheAccess(cacheShared, true)
		s.local.Set(hash, &r)
		return &r
	}
	s.metrics.RecordCacheAccess(cacheShared, false)
	if !errors.IsNotFound(err) {
		s.logger.Warn("Shared cache read failed", logging.Err(err))
	}

	stored, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		if !errors.IsCode(err, errors.ErrCodeReportNotFound) {
			s.logger.Warn("Report lookup by hash failed", logging.Err(err))
		}
		return nil
	}
	if stored.Report == nil {
		return nil
	}
	s.fillCaches(ctx, hash, stored.Report)
	return stored.Report
}

func (s *serviceImpl) fillCaches(ctx context.Context, hash string, r *legal.AnalysisReport) {
	s.local.Set(hash, r)
	if err := s.shared.Set(ctx, sharedKey(hash), r, s.cfg.SharedCacheTTL); err != nil {
		s.logger.Warn("Shared cache write failed", logging.Err(err))
	}
}

// persistWarningPrefix marks warnings that belong to one stored copy of a
// report rather than to its analysis.
const persistWarningPrefix = "report not saved to "

func restamp(r *legal.AnalysisReport, doc legal.Document, reportID string) *legal.AnalysisReport {
	cp := *r
	cp.ID = reportID
	cp.DocumentID = doc.ID
	cp.Filename = doc.Filename
	cp.CreatedAt = time.Now().UTC()
	cp.Warnings = nil
	for _, w := range r.Warnings {
		if !strings.HasPrefix(w, persistWarningPrefix) {
			cp.Warnings = append(cp.Warnings, w)
		}
	}
	return &cp
}

// persist writes r to every backend. Failures are logged and appended to
// r.Warnings; they never fail the call. existing marks a report row created
// by Submit, whose source text is already archived.
func (s *serviceImpl) persist(ctx context.Context, doc legal.Document, r *legal.AnalysisReport, existing bool) {
	log := s.logger.WithContext(ctx).With(logging.String(logging.FieldReportID, r.ID))
	s.fillCaches(ctx, doc.ContentHash(), r)

	var warnings []string
	fail := func(store string, err error) {
		log.Warn("Report persistence failed", logging.String("store", store), logging.Err(err))
		warnings = append(warnings, fmt.Sprintf(persistWarningPrefix+"%s: %s", store, errors.GetCode(err)))
	}

	if existing {
		if err := s.repo.UpdateStatus(ctx, r.ID, report.StatusCompleted, r, ""); err != nil {
			fail("database", err)
		}
	} else {
		if err := s.repo.Save(ctx, report.NewCompleted(doc, r)); err != nil {
			fail("database", err)
		}
		if _, err := s.archive.PutDocument(ctx, doc); err != nil {
			fail("object storage", err)
		}
	}
	if _, err := s.archive.PutReport(ctx, r); err != nil {
		fail("object storage", err)
	}
	if _, err := s.index.IndexReport(ctx, r); err != nil {
		fail("search index", err)
	}
	if s.events != nil {
		if err := s.events.PublishCompleted(ctx, completedPayload(r, report.StatusCompleted, "")); err != nil {
			fail("event stream", err)
		}
	}
	r.Warnings = append(r.Warnings, warnings...)
}

func completedPayload(r *legal.AnalysisReport, status report.Status, errMsg string) kafka.AnalysisCompletedPayload {
	p := kafka.AnalysisCompletedPayload{
		ReportID:    r.ID,
		DocumentID:  r.DocumentID,
		Status:      string(status),
		Error:       errMsg,
		CompletedAt: time.Now().UTC(),
	}
	if status == report.StatusCompleted {
		p.DocumentType = string(r.DocumentType.Type)
		p.Confidence = r.DocumentType.Confidence
		p.ClauseCount = len(r.Clauses)
		p.Warnings = len(r.Warnings)
	}
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// Asynchronous jobs
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Submit(ctx context.Context, doc legal.Document) (string, error) {
	if doc.IsBlank() {
		return "", errors.InputError("document text is empty")
	}
	id := uuid.New().String()
	log := s.logger.WithContext(ctx).With(logging.String(logging.FieldReportID, id))

	if err := s.repo.Save(ctx, report.NewPending(id, doc)); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create report")
	}
	if _, err := s.archive.PutDocument(ctx, doc); err != nil {
		s.markFailed(ctx, id, "source document could not be archived")
		return "", err
	}

	job := kafka.AnalysisRequestedPayload{
		ReportID:    id,
		DocumentID:  doc.ID,
		Filename:    doc.Filename,
		ContentHash: doc.ContentHash(),
		SubmittedAt: time.Now().UTC(),
	}
	if s.events == nil {
		go s.runInline(job, logging.RequestIDFromContext(ctx))
		log.Info("Analysis job started in-process")
		return id, nil
	}
	if err := s.events.PublishRequested(ctx, job); err != nil {
		s.markFailed(ctx, id, "analysis job could not be queued")
		return "", err
	}
	log.Info("Analysis job queued", logging.String(logging.FieldDocumentID, doc.ID))
	return id, nil
}

func (s *serviceImpl) runInline(job kafka.AnalysisRequestedPayload, requestID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.InlineJobTimeout)
	defer cancel()
	if requestID != "" {
		ctx = logging.WithRequestID(ctx, requestID)
	}
	if err := s.Process(ctx, job); err != nil {
		s.logger.Error("In-process analysis job failed",
			logging.String(logging.FieldReportID, job.ReportID), logging.Err(err))
	}
}

// Process is the worker entry point. It returns an error only for
// conditions worth redelivering; analysis failures mark the report failed
// and return nil.
func (s *serviceImpl) Process(ctx context.Context, job kafka.AnalysisRequestedPayload) (err error) {
	if job.ReportID == "" || job.DocumentID == "" {
		return errors.New(errors.ErrCodeValidation, "job carries no report or document id")
	}
	log := s.logger.WithContext(ctx).With(logging.String(logging.FieldReportID, job.ReportID))

	if s.locks != nil {
		mu := s.locks.NewMutex("report:"+job.ReportID, redis.WithLockTTL(s.cfg.JobLockTTL), redis.WithWatchdog(true))
		ok, lockErr := mu.TryLock(ctx)
		if lockErr != nil {
			return lockErr
		}
		if !ok {
			log.Info("Job already running elsewhere, skipping")
			return nil
		}
		defer func() {
			if unlockErr := mu.Unlock(context.Background()); unlockErr != nil {
				log.Warn("Failed to release job lock", logging.Err(unlockErr))
			}
		}()
	}

	if stored, findErr := s.repo.FindByID(ctx, job.ReportID); findErr == nil && stored.Status != report.StatusPending {
		log.Info("Job already finished, skipping", logging.String("status", string(stored.Status)))
		return nil
	}

	start := time.Now()
	defer func() { s.metrics.RecordJob(err) }()

	text, getErr := s.archive.GetDocument(ctx, job.DocumentID)
	if getErr != nil {
		if !errors.IsNotFound(getErr) {
			return getErr
		}
		s.finishFailed(ctx, job, "source document not found")
		return nil
	}

	doc := legal.Document{ID: job.DocumentID, Filename: job.Filename, RawText: text}
	r, _, genErr := s.generate(ctx, doc, job.ReportID)
	if genErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.finishFailed(ctx, job, genErr.Error())
		return nil
	}
	s.persist(ctx, doc, r, true)

	logging.LogOperationDuration(log, "process_job", start,
		logging.Int("clauses", len(r.Clauses)),
		logging.Int("warnings", len(r.Warnings)))
	return nil
}

func (s *serviceImpl) finishFailed(ctx context.Context, job kafka.AnalysisRequestedPayload, reason string) {
	s.markFailed(ctx, job.ReportID, reason)
	if s.events == nil {
		return
	}
	r := &legal.AnalysisReport{ID: job.ReportID, DocumentID: job.DocumentID}
	if err := s.events.PublishCompleted(ctx, completedPayload(r, report.StatusFailed, reason)); err != nil {
		s.logger.Warn("Failed to publish job failure", logging.Err(err))
	}
}

func (s *serviceImpl) markFailed(ctx context.Context, id, reason string) {
	s.logger.WithContext(ctx).Warn("Report failed",
		logging.String(logging.FieldReportID, id),
		logging.String(logging.FieldReason, reason))
	if err := s.repo.UpdateStatus(ctx, id, report.StatusFailed, nil, reason); err != nil {
		s.logger.Error("Failed to mark report failed", logging.Err(err))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Get(ctx context.Context, id string) (*report.StoredReport, error) {
	if id == "" {
		return nil, errors.InvalidParam("report id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *serviceImpl) List(ctx context.Context, page, size int) ([]*report.StoredReport, int64, error) {
	return s.repo.List(ctx, page, size)
}

// Delete removes the report row, then best-effort its archive objects,
// indexed clauses and cache entries.
func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	stored, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log := s.logger.WithContext(ctx).With(logging.String(logging.FieldReportID, id))
	if err := s.archive.Delete(ctx, id, stored.DocumentID); err != nil {
		log.Warn("Failed to delete archived objects", logging.Err(err))
	}
	if _, err := s.index.DeleteReport(ctx, id); err != nil {
		log.Warn("Failed to delete indexed clauses", logging.Err(err))
	}
	s.local.Delete(stored.ContentHash)
	if err := s.shared.Delete(ctx, sharedKey(stored.ContentHash)); err != nil {
		log.Warn("Failed to evict shared cache", logging.Err(err))
	}
	log.Info("Report deleted")
	return nil
}

func (s *serviceImpl) SearchClauses(ctx context.Context, query string, clauseType legal.ClauseType, size int) (*opensearch.ClauseSearchResult, error) {
	if clauseType != "" && !clauseType.IsValid() {
		return nil, errors.InvalidParam(fmt.Sprintf("unknown clause type %q", clauseType))
	}
	return s.index.Search(ctx, opensearch.ClauseQuery{Text: query, ClauseType: clauseType, Size: size})
}

//Personal.AI order the ending
