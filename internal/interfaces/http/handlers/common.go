package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/domain/report"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/response"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// DocumentRequest is the body of the whole-document endpoints.
type DocumentRequest struct {
	Filename    string `json:"filename"`
	Text        string `json:"text"`
	ClauseLimit int    `json:"clause_limit,omitempty"`
}

// TextRequest is the body of the single-clause and raw-text endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

// ResultResponse is the success body of an operation that reports its source.
type ResultResponse[T any] struct {
	Value    T            `json:"value"`
	Source   legal.Source `json:"source"`
	Warnings []string     `json:"warnings,omitempty"`
}

// bindJSON decodes the body into dst or writes a 400 and returns false.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, errors.InvalidParam("invalid request body").WithDetail(err.Error()))
		return false
	}
	return true
}

func bindDocument(c *gin.Context) (legal.Document, DocumentRequest, bool) {
	var req DocumentRequest
	if !bindJSON(c, &req) {
		return legal.Document{}, req, false
	}
	if req.ClauseLimit < 0 {
		response.Error(c, errors.InvalidParam("clause_limit must be >= 0"))
		return legal.Document{}, req, false
	}
	return legal.NewDocument(req.Filename, req.Text), req, true
}

// writeResult renders a Result: its value with source on success, the
// failure's code and message otherwise.
func writeResult[T any](c *gin.Context, r legal.Result[T]) {
	if _, err := r.Unwrap(); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ResultResponse[T]{Value: r.Value, Source: r.Source, Warnings: r.Warnings})
}

// parsePagination reads page and size, clamped by report.NormalizePage.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	page, size, _ = report.NormalizePage(page, size)
	return page, size
}

// queryInt reads a non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.InvalidParam(name + " must be a non-negative integer")
	}
	return n, nil
}

//Personal.AI order the ending
