package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// MemoryRepository keeps reports in process memory. It backs the report
// service when no database is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*StoredReport
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reports: make(map[string]*StoredReport)}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Save(_ context.Context, r *StoredReport) error {
	if err := r.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id string, status Status, analysis *legal.AnalysisReport, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return NotFound(id)
	}
	switch status {
	case StatusCompleted:
		if analysis != nil {
			r.Complete(analysis)
		} else {
			r.Status = status
		}
	case StatusFailed:
		r.Fail(errMsg)
	default:
		r.Status = status
		r.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id string) (*StoredReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryRepository) FindByHash(_ context.Context, hash string) (*StoredReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *StoredReport
	for _, r := range m.reports {
		if r.ContentHash != hash || r.Status != StatusCompleted {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = r
		}
	}
	if best == nil {
		return nil, NotFound("with hash " + hash)
	}
	cp := *best
	return &cp, nil
}

func (m *MemoryRepository) List(_ context.Context, page, size int) ([]*StoredReport, int64, error) {
	_, size, offset := NormalizePage(page, size)
	m.mu.RLock()
	all := make([]*StoredReport, 0, len(m.reports))
	for _, r := range m.reports {
		cp := *r
		all = append(all, &cp)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	if offset >= len(all) {
		return []*StoredReport{}, total, nil
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return NotFound(id)
	}
	delete(m.reports, id)
	return nil
}

//Personal.AI order the ending
