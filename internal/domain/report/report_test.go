package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

func analysisFor(doc legal.Document) *legal.AnalysisReport {
	return &legal.AnalysisReport{
		ID:           fmt.Sprintf("rep-%s", doc.ID),
		DocumentID:   doc.ID,
		DocumentType: legal.NewClassification(legal.DocumentNDA, 0.67),
	}
}

func TestStatus(t *testing.T) {
	s, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("archived")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestStoredReport_Lifecycle(t *testing.T) {
	doc := legal.NewDocument("a.txt", "confidential text")
	r := NewPending("r1", doc)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, doc.ContentHash(), r.ContentHash)
	require.NoError(t, r.Validate())

	r.Fail("boom")
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "boom", r.Error)

	r.Complete(analysisFor(doc))
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Empty(t, r.Error)
	assert.Equal(t, legal.DocumentNDA, r.DocumentType)
	assert.InDelta(t, 0.67, r.Confidence, 1e-9)

	done := NewCompleted(doc, analysisFor(doc))
	assert.Equal(t, "rep-"+doc.ID, done.ID)
}

func TestStoredReport_Validate(t *testing.T) {
	assert.Error(t, (&StoredReport{Status: StatusPending}).Validate())
	assert.Error(t, (&StoredReport{ID: "x", Status: "odd"}).Validate())
	assert.Error(t, (&StoredReport{ID: "x", Status: StatusCompleted}).Validate())
}

func TestNormalizePage(t *testing.T) {
	page, size, offset := NormalizePage(0, 0)
	assert.Equal(t, []int{1, DefaultPageSize, 0}, []int{page, size, offset})
	page, size, offset = NormalizePage(3, 500)
	assert.Equal(t, []int{3, MaxPageSize, 200}, []int{page, size, offset})
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	doc := legal.NewDocument("a.txt", "same text")
	pending := NewPending("p1", doc)
	require.NoError(t, repo.Save(ctx, pending))

	_, err := repo.FindByHash(ctx, doc.ContentHash())
	assert.True(t, errors.IsNotFound(err), "pending reports are not cache hits")

	require.NoError(t, repo.UpdateStatus(ctx, "p1", StatusCompleted, analysisFor(doc), ""))
	got, err := repo.FindByHash(ctx, doc.ContentHash())
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, legal.DocumentNDA, got.DocumentType)

	got.Filename = "mutated"
	again, _ := repo.FindByID(ctx, "p1")
	assert.Equal(t, "a.txt", again.Filename)

	require.NoError(t, repo.UpdateStatus(ctx, "p1", StatusFailed, nil, "archive missing"))
	failed, _ := repo.FindByID(ctx, "p1")
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "archive missing", failed.Error)

	assert.True(t, errors.IsNotFound(repo.UpdateStatus(ctx, "nope", StatusFailed, nil, "")))
	_, err = repo.FindByID(ctx, "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportNotFound))

	require.NoError(t, repo.Delete(ctx, "p1"))
	assert.True(t, errors.IsNotFound(repo.Delete(ctx, "p1")))
}

func TestMemoryRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := NewPending(fmt.Sprintf("r%d", i), legal.NewDocument("f.txt", fmt.Sprintf("text %d", i)))
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Save(ctx, r))
	}

	items, total, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "r4", items[0].ID)
	assert.Equal(t, "r3", items[1].ID)

	items, _, err = repo.List(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r0", items[0].ID)

	items, _, err = repo.List(ctx, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, items)
}

//Personal.AI order the ending
