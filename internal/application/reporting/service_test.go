package reporting

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ClauseWise/internal/application/analysis"
	"github.com/turtacn/ClauseWise/internal/domain/report"
	"github.com/turtacn/ClauseWise/internal/infrastructure/cache/local"
	"github.com/turtacn/ClauseWise/internal/infrastructure/database/redis"
	"github.com/turtacn/ClauseWise/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ClauseWise/internal/infrastructure/search/opensearch"
	pkgerrors "github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const sampleText = `This Non-Disclosure Agreement is made between Acme Corp and Beta LLC on January 5, 2024.

The recipient shall keep all information confidential and shall not disclose it to any third party.

Either party may terminate this agreement upon thirty days written notice.

This agreement shall be governed by the laws of the State of New York.`

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type countingAnalyzer struct {
	analysis.Service
	calls atomic.Int32
}

func (c *countingAnalyzer) Analyze(ctx context.Context, doc legal.Document, opts analysis.Options) (*legal.AnalysisReport, error) {
	c.calls.Add(1)
	return c.Service.Analyze(ctx, doc, opts)
}

type fakeArchive struct {
	mu      sync.Mutex
	docs    map[string]string
	reports map[string]*legal.AnalysisReport
	putErr  error
	getErr  error
	deleted []string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{docs: map[string]string{}, reports: map[string]*legal.AnalysisReport{}}
}

func (f *fakeArchive) PutDocument(_ context.Context, doc legal.Document) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.docs[doc.ID] = doc.RawText
	return "documents/" + doc.ID + ".txt", nil
}

func (f *fakeArchive) GetDocument(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	text, ok := f.docs[id]
	if !ok {
		return "", pkgerrors.NotFound("object not found")
	}
	return text, nil
}

func (f *fakeArchive) PutReport(_ context.Context, r *legal.AnalysisReport) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.reports[r.ID] = r
	return "reports/" + r.ID + ".json", nil
}

func (f *fakeArchive) Delete(_ context.Context, reportID, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, reportID, documentID)
	delete(f.docs, documentID)
	delete(f.reports, reportID)
	return nil
}

type fakeIndex struct {
	mu        sync.Mutex
	indexed   []string
	deleted   []string
	lastQuery opensearch.ClauseQuery
	err       error
}

func (f *fakeIndex) IndexReport(_ context.Context, r *legal.AnalysisReport) (*opensearch.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.indexed = append(f.indexed, r.ID)
	return &opensearch.BulkResult{Succeeded: len(r.Clauses)}, nil
}

func (f *fakeIndex) DeleteReport(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return 1, nil
}

func (f *fakeIndex) Search(_ context.Context, q opensearch.ClauseQuery) (*opensearch.ClauseSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	return &opensearch.ClauseSearchResult{Total: 1}, nil
}

type fakeEvents struct {
	mu         sync.Mutex
	requested  []kafka.AnalysisRequestedPayload
	completed  []kafka.AnalysisCompletedPayload
	requestErr error
}

func (f *fakeEvents) PublishRequested(_ context.Context, p kafka.AnalysisRequestedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestErr != nil {
		return f.requestErr
	}
	f.requested = append(f.requested, p)
	return nil
}

func (f *fakeEvents) PublishCompleted(_ context.Context, p kafka.AnalysisCompletedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, p)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Suite
// ─────────────────────────────────────────────────────────────────────────────

type ReportServiceTestSuite struct {
	suite.Suite
	mr       *miniredis.Miniredis
	client   *redis.Client
	analyzer *countingAnalyzer
	repo     *report.MemoryRepository
	localC   *local.ReportCache
	shared   redis.Cache
	archive  *fakeArchive
	index    *fakeIndex
	events   *fakeEvents
	svc      Service
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClientWithRDB(goredis.NewClient(&goredis.Options{Addr: s.mr.Addr()}), "test", nil)
	s.analyzer = &countingAnalyzer{Service: analysis.NewService(nil, nil, nil, nil, analysis.Config{})}
	s.repo = report.NewMemoryRepository()
	s.localC = local.NewReportCache(time.Minute, time.Minute)
	s.shared = redis.NewRedisCache(s.client, nil, redis.WithoutJitter())
	s.archive = newFakeArchive()
	s.index = &fakeIndex{}
	s.events = &fakeEvents{}
	s.svc = s.newService(s.localC)
}

func (s *ReportServiceTestSuite) newService(l1 LocalCache) Service {
	return NewService(Deps{
		Analyzer:   s.analyzer,
		Repository: s.repo,
		Local:      l1,
		Shared:     s.shared,
		Archive:    s.archive,
		Index:      s.index,
		Events:     s.events,
		Locks:      redis.NewLockFactory(s.client, nil),
	}, Config{})
}

func (s *ReportServiceTestSuite) TearDownTest() {
	_ = s.client.Close()
}

func (s *ReportServiceTestSuite) TestGenerate_PersistsEverywhere() {
	ctx := context.Background()
	doc := legal.NewDocument("nda.txt", sampleText)

	r, err := s.svc.Generate(ctx, doc)
	s.Require().NoError(err)
	s.Equal(legal.DocumentNDA, r.DocumentType.Type)
	s.NotEmpty(r.Clauses)
	s.Empty(r.Warnings)

	stored, err := s.repo.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(report.StatusCompleted, stored.Status)
	s.Equal(doc.ContentHash(), stored.ContentHash)

	s.Equal(sampleText, s.archive.docs[doc.ID])
	s.Contains(s.archive.reports, r.ID)
	s.Equal([]string{r.ID}, s.index.indexed)
	s.Require().Len(s.events.completed, 1)
	s.Equal("completed", s.events.completed[0].Status)
	s.Equal(len(r.Clauses), s.events.completed[0].ClauseCount)

	_, ok := s.localC.Get(doc.ContentHash())
	s.True(ok)
	s.True(s.mr.Exists("test:report:" + doc.ContentHash()))
}

func (s *ReportServiceTestSuite) TestGenerate_CacheHitSkipsAnalysis() {
	ctx := context.Background()
	first, err := s.svc.Generate(ctx, legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)

	second, err := s.svc.Generate(ctx, legal.NewDocument("b.txt", sampleText))
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)
	s.Equal(first.Summary, second.Summary)
	s.Equal(int32(1), s.analyzer.calls.Load())

	// A replica with a cold L1 reads through redis.
	cold := s.newService(local.NewReportCache(time.Minute, time.Minute))
	third, err := cold.Generate(ctx, legal.NewDocument("c.txt", sampleText))
	s.Require().NoError(err)
	s.Equal("c.txt", third.Filename)
	s.Equal(int32(1), s.analyzer.calls.Load())
}

func (s *ReportServiceTestSuite) TestGenerate_SameTextKeepsEachDocument() {
	ctx := context.Background()
	a := legal.NewDocument("a.txt", sampleText)
	b := legal.NewDocument("b.txt", sampleText)

	ra, err := s.svc.Generate(ctx, a)
	s.Require().NoError(err)
	rb, err := s.svc.Generate(ctx, b)
	s.Require().NoError(err)

	s.Equal("b.txt", rb.Filename)
	s.Equal(b.ID, rb.DocumentID)
	s.NotEqual(ra.ID, rb.ID)
	s.Equal(int32(1), s.analyzer.calls.Load())

	stored, err := s.repo.FindByID(ctx, rb.ID)
	s.Require().NoError(err)
	s.Equal(report.StatusCompleted, stored.Status)
	s.Equal("b.txt", stored.Filename)

	_, total, err := s.svc.List(ctx, 1, 10)
	s.Require().NoError(err)
	s.Equal(int64(2), total)

	s.Equal(sampleText, s.archive.docs[b.ID])
	s.Contains(s.archive.reports, rb.ID)
	s.Equal([]string{ra.ID, rb.ID}, s.index.indexed)
	s.Len(s.events.completed, 2)
}

func (s *ReportServiceTestSuite) TestGenerate_CacheHitDropsOtherCopyWarnings() {
	s.index.err = errors.New("opensearch down")
	first, err := s.svc.Generate(context.Background(), legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)
	s.Contains(first.Warnings, "report not saved to search index: UNKNOWN")

	s.index.err = nil
	second, err := s.svc.Generate(context.Background(), legal.NewDocument("b.txt", sampleText))
	s.Require().NoError(err)
	s.Empty(second.Warnings)
}

func (s *ReportServiceTestSuite) TestGenerate_RepositoryHashHit() {
	ctx := context.Background()
	r, err := s.svc.Generate(ctx, legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)

	s.mr.FlushAll()
	cold := s.newService(nil)
	again, err := cold.Generate(ctx, legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)
	s.NotEqual(r.ID, again.ID)
	s.Equal(r.DocumentType, again.DocumentType)
	s.Equal(int32(1), s.analyzer.calls.Load())
}

func (s *ReportServiceTestSuite) TestGenerate_BlankInput() {
	_, err := s.svc.Generate(context.Background(), legal.NewDocument("a.txt", "   \n\t"))
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeInputError))
	s.Zero(s.analyzer.calls.Load())
}

func (s *ReportServiceTestSuite) TestGenerate_PersistenceFailuresBecomeWarnings() {
	s.archive.putErr = pkgerrors.New(pkgerrors.ErrCodeServiceUnavailable, "minio down")
	s.index.err = errors.New("opensearch down")

	r, err := s.svc.Generate(context.Background(), legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)
	s.Contains(r.Warnings, "report not saved to object storage: COMMON_008")
	s.Contains(r.Warnings, "report not saved to search index: UNKNOWN")

	stored, err := s.repo.FindByID(context.Background(), r.ID)
	s.Require().NoError(err)
	s.Equal(report.StatusCompleted, stored.Status)
}

func (s *ReportServiceTestSuite) TestSubmitAndProcess() {
	ctx := context.Background()
	doc := legal.NewDocument("lease.txt", sampleText)

	id, err := s.svc.Submit(ctx, doc)
	s.Require().NoError(err)

	stored, err := s.svc.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(report.StatusPending, stored.Status)
	s.Require().Len(s.events.requested, 1)
	job := s.events.requested[0]
	s.Equal(id, job.ReportID)
	s.Equal(doc.ID, job.DocumentID)

	s.Require().NoError(s.svc.Process(ctx, job))

	stored, err = s.svc.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(report.StatusCompleted, stored.Status)
	s.Require().NotNil(stored.Report)
	s.Equal(id, stored.Report.ID)
	s.Contains(s.index.indexed, id)
	s.Require().Len(s.events.completed, 1)
	s.Equal(id, s.events.completed[0].ReportID)

	// Redelivery of a finished job is a no-op.
	s.Require().NoError(s.svc.Process(ctx, job))
	s.Equal(int32(1), s.analyzer.calls.Load())
	s.Len(s.events.completed, 1)
}

func (s *ReportServiceTestSuite) TestProcess_CachedTextGetsJobID() {
	ctx := context.Background()
	first, err := s.svc.Generate(ctx, legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)

	id, err := s.svc.Submit(ctx, legal.NewDocument("b.txt", sampleText))
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Process(ctx, s.events.requested[0]))

	stored, err := s.svc.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(report.StatusCompleted, stored.Status)
	s.Equal(id, stored.Report.ID)
	s.Equal("b.txt", stored.Report.Filename)
	s.NotEqual(first.ID, stored.Report.ID)
	s.Equal(int32(1), s.analyzer.calls.Load())
}

func (s *ReportServiceTestSuite) TestProcess_MissingTextMarksFailed() {
	ctx := context.Background()
	doc := legal.NewDocument("a.txt", sampleText)
	id, err := s.svc.Submit(ctx, doc)
	s.Require().NoError(err)
	delete(s.archive.docs, doc.ID)

	s.Require().NoError(s.svc.Process(ctx, s.events.requested[0]))

	stored, err := s.svc.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(report.StatusFailed, stored.Status)
	s.Equal("source document not found", stored.Error)
	s.Require().Len(s.events.completed, 1)
	s.Equal("failed", s.events.completed[0].Status)
}

func (s *ReportServiceTestSuite) TestProcess_TransientArchiveErrorIsRetried() {
	ctx := context.Background()
	_, err := s.svc.Submit(ctx, legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)
	s.archive.getErr = pkgerrors.New(pkgerrors.ErrCodeServiceUnavailable, "minio down")

	s.Error(s.svc.Process(ctx, s.events.requested[0]))
	stored, err := s.svc.Get(ctx, s.events.requested[0].ReportID)
	s.Require().NoError(err)
	s.Equal(report.StatusPending, stored.Status)
}

func (s *ReportServiceTestSuite) TestProcess_LockedJobSkipped() {
	ctx := context.Background()
	_, err := s.svc.Submit(ctx, legal.NewDocument("a.txt", sampleText))
	s.Require().NoError(err)
	job := s.events.requested[0]

	held := redis.NewLockFactory(s.client, nil).NewMutex("report:" + job.ReportID)
	ok, err := held.TryLock(ctx)
	s.Require().NoError(err)
	s.Require().True(ok)

	s.Require().NoError(s.svc.Process(ctx, job))
	s.Zero(s.analyzer.calls.Load())
	s.Require().NoError(held.Unlock(ctx))
}

func (s *ReportServiceTestSuite) TestProcess_InvalidJob() {
	err := s.svc.Process(context.Background(), kafka.AnalysisRequestedPayload{})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeValidation))
}

func (s *ReportServiceTestSuite) TestSubmit_PublishFailure() {
	s.events.requestErr = errors.New("broker down")
	_, err := s.svc.Submit(context.Background(), legal.NewDocument("a.txt", sampleText))
	s.Error(err)

	list, total, err := s.svc.List(context.Background(), 1, 10)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(report.StatusFailed, list[0].Status)
}

func (s *ReportServiceTestSuite) TestSubmit_BlankInput() {
	_, err := s.svc.Submit(context.Background(), legal.NewDocument("a.txt", ""))
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeInputError))
}

func (s *ReportServiceTestSuite) TestDelete() {
	ctx := context.Background()
	doc := legal.NewDocument("a.txt", sampleText)
	r, err := s.svc.Generate(ctx, doc)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(ctx, r.ID))

	_, err = s.svc.Get(ctx, r.ID)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeReportNotFound))
	s.Equal([]string{r.ID, doc.ID}, s.archive.deleted)
	s.Equal([]string{r.ID}, s.index.deleted)
	_, ok := s.localC.Get(doc.ContentHash())
	s.False(ok)
	s.False(s.mr.Exists("test:report:" + doc.ContentHash()))

	s.True(pkgerrors.IsNotFound(s.svc.Delete(ctx, r.ID)))
}

func (s *ReportServiceTestSuite) TestSearchClauses() {
	res, err := s.svc.SearchClauses(context.Background(), "confidential", legal.ClausePayment, 5)
	s.Require().NoError(err)
	s.Equal(int64(1), res.Total)
	s.Equal(opensearch.ClauseQuery{Text: "confidential", ClauseType: legal.ClausePayment, Size: 5}, s.index.lastQuery)

	_, err = s.svc.SearchClauses(context.Background(), "x", "Warranty", 5)
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}

// ─────────────────────────────────────────────────────────────────────────────
// Standalone mode
// ─────────────────────────────────────────────────────────────────────────────

func TestService_WithoutBackends(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Deps{Analyzer: analysis.NewService(nil, nil, nil, nil, analysis.Config{})}, Config{})

	r, err := svc.Generate(ctx, legal.NewDocument("a.txt", sampleText))
	require.NoError(t, err)
	assert.Empty(t, r.Warnings)

	id, err := svc.Submit(ctx, legal.NewDocument("b.txt", sampleText+"\n\nPayment is due monthly."))
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		stored, err := svc.Get(ctx, id)
		return err == nil && stored.Status == report.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	_, err = svc.SearchClauses(ctx, "payment", "", 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeFeatureDisabled))
}

func TestNewService_RequiresAnalyzer(t *testing.T) {
	assert.Panics(t, func() { NewService(Deps{}, Config{}) })
}

//Personal.AI order the ending
