package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/application/analysis"
	"github.com/turtacn/ClauseWise/internal/application/reporting"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/ingestion"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/response"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// AnalysisHandler exposes the analysis operations.
type AnalysisHandler struct {
	analyzer  analysis.Service
	reports   reporting.Service
	extractor *ingestion.Extractor
	logger    logging.Logger
}

// NewAnalysisHandler creates the handler. reports may be nil, in which case
// ?persist=true is rejected.
func NewAnalysisHandler(analyzer analysis.Service, reports reporting.Service, extractor *ingestion.Extractor, logger logging.Logger) *AnalysisHandler {
	if extractor == nil {
		extractor = ingestion.New(0, logger)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AnalysisHandler{
		analyzer:  analyzer,
		reports:   reports,
		extractor: extractor,
		logger:    logger.Named("http.analysis"),
	}
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	doc, req, ok := bindDocument(c)
	if !ok {
		return
	}
	h.analyze(c, doc, req.ClauseLimit)
}

// Upload handles POST /api/v1/documents with a multipart "file" field.
func (h *AnalysisHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errors.InvalidParam(`multipart field "file" is required`))
		return
	}
	limit, err := queryInt(c, "clause_limit")
	if err != nil {
		response.Error(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, errors.Wrap(err, errors.ErrCodeIngestionFailed, "cannot open upload"))
		return
	}
	defer f.Close()

	res := h.extractor.Extract(c.Request.Context(), fh.Filename, f)
	if err := ingestion.Err(res); err != nil {
		h.logger.Warn("upload rejected",
			logging.String("filename", fh.Filename),
			logging.String(logging.FieldReason, res.Error))
		response.Error(c, err)
		return
	}
	h.analyze(c, legal.NewDocument(fh.Filename, res.Text), limit)
}

func (h *AnalysisHandler) analyze(c *gin.Context, doc legal.Document, clauseLimit int) {
	ctx := c.Request.Context()
	var (
		r   *legal.AnalysisReport
		err error
	)
	if c.Query("persist") == "true" {
		if h.reports == nil {
			response.Error(c, errors.New(errors.ErrCodeFeatureDisabled, "report storage is not configured"))
			return
		}
		r, err = h.reports.Generate(ctx, doc)
	} else {
		r, err = h.analyzer.Analyze(ctx, doc, analysis.Options{ClauseLimit: clauseLimit})
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// Segment handles POST /api/v1/segment.
func (h *AnalysisHandler) Segment(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	clauses := h.analyzer.Segment(req.Text)
	if clauses == nil {
		clauses = []legal.Clause{}
	}
	response.OK(c, gin.H{"clauses": clauses})
}

// Classify handles POST /api/v1/classify.
func (h *AnalysisHandler) Classify(c *gin.Context) {
	doc, _, ok := bindDocument(c)
	if !ok {
		return
	}
	writeResult(c, h.analyzer.Classify(c.Request.Context(), doc))
}

// ClassifyClause handles POST /api/v1/classify/clause.
func (h *AnalysisHandler) ClassifyClause(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	response.OK(c, gin.H{"clause_type": h.analyzer.ClassifyClause(req.Text)})
}

// Simplify handles POST /api/v1/simplify.
func (h *AnalysisHandler) Simplify(c *gin.Context) {
	doc, _, ok := bindDocument(c)
	if !ok {
		return
	}
	writeResult(c, h.analyzer.SimplifyDocument(c.Request.Context(), doc))
}

// SimplifyClause handles POST /api/v1/simplify/clause.
func (h *AnalysisHandler) SimplifyClause(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	response.OK(c, gin.H{"simplified": h.analyzer.SimplifyClause(req.Text)})
}

// Structure handles POST /api/v1/clauses/structure.
func (h *AnalysisHandler) Structure(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	response.OK(c, h.analyzer.ClauseStructure(req.Text))
}

// Entities handles POST /api/v1/entities.
func (h *AnalysisHandler) Entities(c *gin.Context) {
	doc, _, ok := bindDocument(c)
	if !ok {
		return
	}
	writeResult(c, h.analyzer.ExtractEntities(c.Request.Context(), doc))
}

// Summarize handles POST /api/v1/summarize.
func (h *AnalysisHandler) Summarize(c *gin.Context) {
	doc, _, ok := bindDocument(c)
	if !ok {
		return
	}
	writeResult(c, h.analyzer.Summarize(c.Request.Context(), doc))
}

// Stats handles POST /api/v1/stats.
func (h *AnalysisHandler) Stats(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}
	response.OK(c, h.analyzer.Stats(req.Text))
}

// Clauses handles POST /api/v1/clauses?limit=N. The limit may also come
// from the body's clause_limit; the query wins.
func (h *AnalysisHandler) Clauses(c *gin.Context) {
	doc, req, ok := bindDocument(c)
	if !ok {
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}
	if limit == 0 {
		limit = req.ClauseLimit
	}
	writeResult(c, h.analyzer.AnalyzeClauses(c.Request.Context(), doc, limit))
}

//Personal.AI order the ending
