package reporting

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/ClauseWise/internal/infrastructure/search/opensearch"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Stand-ins for disabled backends.

type noopLocalCache struct{}

func (noopLocalCache) Get(string) (*legal.AnalysisReport, bool) { return nil, false }
func (noopLocalCache) Set(string, *legal.AnalysisReport)        {}
func (noopLocalCache) Delete(string)                            {}

var errCacheDisabled = errors.New(errors.ErrCodeNotFound, "shared cache disabled")

type noopSharedCache struct{}

func (noopSharedCache) Get(context.Context, string, interface{}) error { return errCacheDisabled }
func (noopSharedCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (noopSharedCache) Delete(context.Context, ...string) error { return nil }

type noopClauseIndex struct{}

func (noopClauseIndex) IndexReport(context.Context, *legal.AnalysisReport) (*opensearch.BulkResult, error) {
	return &opensearch.BulkResult{}, nil
}

func (noopClauseIndex) DeleteReport(context.Context, string) (int64, error) { return 0, nil }

func (noopClauseIndex) Search(context.Context, opensearch.ClauseQuery) (*opensearch.ClauseSearchResult, error) {
	return nil, errors.New(errors.ErrCodeFeatureDisabled, "clause search is not enabled")
}

// memoryArchive keeps source text in process so Submit and Process work
// without object storage. Report JSON is not retained.
type memoryArchive struct {
	mu   sync.RWMutex
	docs map[string]string
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{docs: make(map[string]string)}
}

func (m *memoryArchive) PutDocument(_ context.Context, doc legal.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc.RawText
	return doc.ID, nil
}

func (m *memoryArchive) GetDocument(_ context.Context, documentID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.docs[documentID]
	if !ok {
		return "", errors.NotFound("document " + documentID + " not archived")
	}
	return text, nil
}

func (m *memoryArchive) PutReport(_ context.Context, r *legal.AnalysisReport) (string, error) {
	return r.ID, nil
}

func (m *memoryArchive) Delete(_ context.Context, _, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, documentID)
	return nil
}

//Personal.AI order the ending
