package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ClauseWise/internal/application/analysis"
	"github.com/turtacn/ClauseWise/internal/application/reporting"
	"github.com/turtacn/ClauseWise/internal/domain/report"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/response"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const sampleNDA = `MUTUAL NON-DISCLOSURE AGREEMENT

This Agreement is entered into between Acme Corporation ("Company") and John Smith ("Recipient") on January 15, 2024.

1. CONFIDENTIAL INFORMATION. "Confidential Information" means any information disclosed by Company to Recipient, whether orally or in writing, that is designated as confidential.

2. NON-DISCLOSURE. Recipient agrees not to use any Confidential Information for any purpose except to evaluate a possible business relationship with Company.

3. TERM. This Agreement shall remain in effect for a period of two (2) years from the date of this Agreement.`

func init() {
	gin.SetMode(gin.TestMode)
}

func mount(a *AnalysisHandler, r *ReportHandler) *gin.Engine {
	e := gin.New()
	api := e.Group("/api/v1")
	if a != nil {
		api.POST("/analyze", a.Analyze)
		api.POST("/documents", a.Upload)
		api.POST("/segment", a.Segment)
		api.POST("/classify", a.Classify)
		api.POST("/classify/clause", a.ClassifyClause)
		api.POST("/simplify", a.Simplify)
		api.POST("/simplify/clause", a.SimplifyClause)
		api.POST("/clauses/structure", a.Structure)
		api.POST("/entities", a.Entities)
		api.POST("/summarize", a.Summarize)
		api.POST("/stats", a.Stats)
		api.POST("/clauses", a.Clauses)
	}
	if r != nil {
		api.POST("/reports", r.Submit)
		api.GET("/reports", r.List)
		api.GET("/reports/:id", r.Get)
		api.DELETE("/reports/:id", r.Delete)
		api.GET("/clauses/search", r.SearchClauses)
	}
	return e
}

func postJSON(e http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func get(e http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// Suite over the real services
// ─────────────────────────────────────────────────────────────────────────────

type HandlersSuite struct {
	suite.Suite
	reports reporting.Service
	engine  *gin.Engine
}

func (s *HandlersSuite) SetupTest() {
	analyzer := analysis.NewService(nil, nil, nil, nil, analysis.Config{})
	s.reports = reporting.NewService(reporting.Deps{Analyzer: analyzer}, reporting.Config{})
	s.engine = mount(NewAnalysisHandler(analyzer, s.reports, nil, nil), NewReportHandler(s.reports))
}

func (s *HandlersSuite) TestAnalyze() {
	w := postJSON(s.engine, "/api/v1/analyze", DocumentRequest{Filename: "nda.txt", Text: sampleNDA, ClauseLimit: 2})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	r := decode[legal.AnalysisReport](s.T(), w)
	s.Equal("nda.txt", r.Filename)
	s.Equal(legal.DocumentNDA, r.DocumentType.Type)
	s.Len(r.Clauses, 2)
	s.NotEmpty(r.Summary)
	s.Equal(legal.SourceLocal, r.Sources[analysis.StepClassification])
}

func (s *HandlersSuite) TestAnalyze_BlankText() {
	w := postJSON(s.engine, "/api/v1/analyze", DocumentRequest{Filename: "x.txt", Text: "   "})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(errors.ErrCodeInputError), decode[response.ErrorResponse](s.T(), w).Code)
}

func (s *HandlersSuite) TestAnalyze_BadBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	body := decode[response.ErrorResponse](s.T(), w)
	s.Equal(string(errors.ErrCodeBadRequest), body.Code)
	s.NotEmpty(body.Detail)
}

func (s *HandlersSuite) TestAnalyze_PersistStoresReport() {
	w := postJSON(s.engine, "/api/v1/analyze?persist=true", DocumentRequest{Filename: "nda.txt", Text: sampleNDA})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	r := decode[legal.AnalysisReport](s.T(), w)

	w = get(s.engine, http.MethodGet, "/api/v1/reports/"+r.ID)
	s.Require().Equal(http.StatusOK, w.Code)
	stored := decode[report.StoredReport](s.T(), w)
	s.Equal(report.StatusCompleted, stored.Status)
	s.Equal(legal.DocumentNDA, stored.DocumentType)
}

func (s *HandlersSuite) TestUpload() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "nda.txt")
	s.Require().NoError(err)
	_, _ = part.Write([]byte(sampleNDA))
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents?clause_limit=1", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	r := decode[legal.AnalysisReport](s.T(), w)
	s.Equal("nda.txt", r.Filename)
	s.Len(r.Clauses, 1)
}

func (s *HandlersSuite) TestUpload_Rejected() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "contract.pdf")
	_, _ = part.Write([]byte("%PDF-1.4"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal(string(errors.ErrCodeIngestionFailed), decode[response.ErrorResponse](s.T(), w).Code)

	w = postJSON(s.engine, "/api/v1/documents", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestClauseOperations() {
	w := postJSON(s.engine, "/api/v1/classify/clause", TextRequest{Text: "The fee is due monthly."})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(string(legal.ClausePayment), decode[map[string]string](s.T(), w)["clause_type"])

	w = postJSON(s.engine, "/api/v1/simplify/clause", TextRequest{Text: "pursuant to the plan"})
	s.Equal("according to the plan", decode[map[string]string](s.T(), w)["simplified"])

	w = postJSON(s.engine, "/api/v1/stats", TextRequest{Text: "one two three"})
	s.Equal(3, decode[legal.DocumentStats](s.T(), w).WordCount)

	w = postJSON(s.engine, "/api/v1/clauses/structure", TextRequest{Text: "Either party may terminate this agreement."})
	s.Equal(legal.ClauseTermination, decode[legal.ClauseStructure](s.T(), w).ClauseType)

	w = postJSON(s.engine, "/api/v1/segment", TextRequest{Text: ""})
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"clauses":[]}`, w.Body.String())
}

func (s *HandlersSuite) TestResultOperations() {
	doc := DocumentRequest{Filename: "nda.txt", Text: sampleNDA}

	w := postJSON(s.engine, "/api/v1/classify", doc)
	s.Require().Equal(http.StatusOK, w.Code)
	cls := decode[ResultResponse[legal.Classification]](s.T(), w)
	s.Equal(legal.DocumentNDA, cls.Value.Type)
	s.Equal(legal.SourceLocal, cls.Source)

	w = postJSON(s.engine, "/api/v1/summarize", doc)
	s.NotEmpty(decode[ResultResponse[string]](s.T(), w).Value)

	w = postJSON(s.engine, "/api/v1/simplify", doc)
	s.NotEmpty(decode[ResultResponse[string]](s.T(), w).Value)

	w = postJSON(s.engine, "/api/v1/entities", doc)
	s.NotEmpty(decode[ResultResponse[[]legal.Entity]](s.T(), w).Value)

	w = postJSON(s.engine, "/api/v1/clauses?limit=2", doc)
	s.Len(decode[ResultResponse[[]legal.ClauseAnalysis]](s.T(), w).Value, 2)

	w = postJSON(s.engine, "/api/v1/clauses?limit=-1", doc)
	s.Equal(http.StatusBadRequest, w.Code)

	w = postJSON(s.engine, "/api/v1/summarize", DocumentRequest{Text: ""})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(errors.ErrCodeInputError), decode[response.ErrorResponse](s.T(), w).Code)
}

func (s *HandlersSuite) TestReportLifecycle() {
	w := postJSON(s.engine, "/api/v1/reports", DocumentRequest{Filename: "nda.txt", Text: sampleNDA})
	s.Require().Equal(http.StatusAccepted, w.Code, w.Body.String())
	sub := decode[SubmitResponse](s.T(), w)
	s.NotEmpty(sub.ID)
	s.Equal(report.StatusPending, sub.Status)
	s.Equal("/api/v1/reports/"+sub.ID, w.Header().Get("Location"))

	s.Eventually(func() bool {
		r, err := s.reports.Get(context.Background(), sub.ID)
		return err == nil && r.Status == report.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	w = get(s.engine, http.MethodGet, "/api/v1/reports?page=1&size=500")
	s.Require().Equal(http.StatusOK, w.Code)
	page := decode[response.Page[*report.StoredReport]](s.T(), w)
	s.Equal(int64(1), page.Total)
	s.Equal(report.MaxPageSize, page.Size)
	s.Len(page.Items, 1)

	w = get(s.engine, http.MethodDelete, "/api/v1/reports/"+sub.ID)
	s.Equal(http.StatusNoContent, w.Code)

	w = get(s.engine, http.MethodGet, "/api/v1/reports/"+sub.ID)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(string(errors.ErrCodeReportNotFound), decode[response.ErrorResponse](s.T(), w).Code)
}

func (s *HandlersSuite) TestReportList_Empty() {
	w := get(s.engine, http.MethodGet, "/api/v1/reports")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"items":[],"total":0,"page":1,"size":20}`, w.Body.String())
}

func (s *HandlersSuite) TestSearchClauses() {
	w := get(s.engine, http.MethodGet, "/api/v1/clauses/search")
	s.Equal(http.StatusBadRequest, w.Code)

	w = get(s.engine, http.MethodGet, "/api/v1/clauses/search?type=bogus")
	s.Equal(http.StatusBadRequest, w.Code)

	// No search backend configured.
	w = get(s.engine, http.MethodGet, "/api/v1/clauses/search?q=confidential")
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(string(errors.ErrCodeFeatureDisabled), decode[response.ErrorResponse](s.T(), w).Code)
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

// ─────────────────────────────────────────────────────────────────────────────
// Mocked report service
// ─────────────────────────────────────────────────────────────────────────────

type mockReports struct {
	mock.Mock
	reporting.Service
}

func (m *mockReports) List(ctx context.Context, page, size int) ([]*report.StoredReport, int64, error) {
	args := m.Called(ctx, page, size)
	items, _ := args.Get(0).([]*report.StoredReport)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockReports) Submit(ctx context.Context, doc legal.Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func TestReportHandler_MasksUnknownErrors(t *testing.T) {
	m := new(mockReports)
	m.On("List", mock.Anything, 2, 5).Return(nil, int64(0), stderrors.New("pq: connection refused"))
	e := mount(nil, NewReportHandler(m))

	w := get(e, http.MethodGet, "/api/v1/reports?page=2&size=5")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[response.ErrorResponse](t, w)
	assert.Equal(t, string(errors.ErrCodeInternal), body.Code)
	assert.NotContains(t, body.Message, "pq:")
	m.AssertExpectations(t)
}

func TestReportHandler_SubmitUnavailable(t *testing.T) {
	m := new(mockReports)
	m.On("Submit", mock.Anything, mock.MatchedBy(func(d legal.Document) bool { return d.Filename == "a.txt" })).
		Return("", errors.New(errors.ErrCodeServiceUnavailable, "event stream unavailable"))
	e := mount(nil, NewReportHandler(m))

	w := postJSON(e, "/api/v1/reports", DocumentRequest{Filename: "a.txt", Text: "x"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "event stream unavailable", decode[response.ErrorResponse](t, w).Message)
}

func TestAnalysisHandler_PersistWithoutReports(t *testing.T) {
	e := mount(NewAnalysisHandler(analysis.NewService(nil, nil, nil, nil, analysis.Config{}), nil, nil, nil), nil)

	w := postJSON(e, "/api/v1/analyze?persist=true", DocumentRequest{Text: sampleNDA})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

func TestHealthHandler(t *testing.T) {
	healthy := CheckFunc{Component: "postgres", Fn: func(context.Context) error { return nil }}
	broken := CheckFunc{Component: "redis", Fn: func(context.Context) error { return stderrors.New("dial tcp: refused") }}

	e := gin.New()
	h := NewHealthHandler("v1.2.3", healthy)
	e.GET("/healthz", h.Liveness)
	e.GET("/readyz", h.Readiness)

	w := get(e, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1.2.3", decode[LivenessResponse](t, w).Version)

	w = get(e, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	ready := decode[ReadinessResponse](t, w)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "healthy", ready.Components["postgres"].Status)

	resp, ok := NewHealthHandler("v", healthy, broken).Ready(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "dial tcp: refused", resp.Components["redis"].Error)

	resp, ok = NewHealthHandler("v").Ready(context.Background())
	assert.True(t, ok)
	assert.Empty(t, resp.Components)
}

//Personal.AI order the ending
