package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/application/reporting"
	"github.com/turtacn/ClauseWise/internal/domain/report"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/response"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// ReportHandler exposes stored reports and clause search.
type ReportHandler struct {
	reports reporting.Service
}

func NewReportHandler(reports reporting.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// SubmitResponse is returned by an accepted submission.
type SubmitResponse struct {
	ID     string        `json:"id"`
	Status report.Status `json:"status"`
}

// Submit handles POST /api/v1/reports.
func (h *ReportHandler) Submit(c *gin.Context) {
	doc, _, ok := bindDocument(c)
	if !ok {
		return
	}
	id, err := h.reports.Submit(c.Request.Context(), doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Location", "/api/v1/reports/"+id)
	response.Accepted(c, SubmitResponse{ID: id, Status: report.StatusPending})
}

// Get handles GET /api/v1/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	r, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// List handles GET /api/v1/reports?page&size.
func (h *ReportHandler) List(c *gin.Context) {
	page, size := parsePagination(c)
	items, total, err := h.reports.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*report.StoredReport{}
	}
	response.OK(c, response.Page[*report.StoredReport]{Items: items, Total: total, Page: page, Size: size})
}

// Delete handles DELETE /api/v1/reports/:id.
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.reports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchClauses handles GET /api/v1/clauses/search?q&type&size.
func (h *ReportHandler) SearchClauses(c *gin.Context) {
	size, err := queryInt(c, "size")
	if err != nil {
		response.Error(c, err)
		return
	}
	q, t := c.Query("q"), c.Query("type")
	if q == "" && t == "" {
		response.Error(c, errors.InvalidParam("q or type is required"))
		return
	}
	res, err := h.reports.SearchClauses(c.Request.Context(), q, legal.ClauseType(t), size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

//Personal.AI order the ending
