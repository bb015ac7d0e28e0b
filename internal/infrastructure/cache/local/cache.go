// Package local is the in-process report cache that sits in front of Redis.
package local

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const (
	DefaultTTL             = 10 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

// ReportCache holds analysis reports keyed by document content hash.
// Stored reports are copied on the way in and out, so callers can mutate
// what they get without touching the cached value.
type ReportCache struct {
	cache *cache.Cache
}

// NewReportCache creates a cache whose entries expire after ttl and are
// purged every cleanupInterval. Zero values fall back to the defaults.
func NewReportCache(ttl, cleanupInterval time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &ReportCache{cache: cache.New(ttl, cleanupInterval)}
}

func (c *ReportCache) Get(hash string) (*legal.AnalysisReport, bool) {
	if x, found := c.cache.Get(hash); found {
		r := x.(legal.AnalysisReport)
		return cloneReport(&r), true
	}
	return nil, false
}

func (c *ReportCache) Set(hash string, r *legal.AnalysisReport) {
	if r == nil {
		return
	}
	c.cache.Set(hash, *cloneReport(r), cache.DefaultExpiration)
}

func (c *ReportCache) Delete(hash string) {
	c.cache.Delete(hash)
}

// DeleteReport drops every entry holding the report with the given id.
func (c *ReportCache) DeleteReport(id string) {
	for k, item := range c.cache.Items() {
		if r, ok := item.Object.(legal.AnalysisReport); ok && r.ID == id {
			c.cache.Delete(k)
		}
	}
}

func (c *ReportCache) Len() int {
	return c.cache.ItemCount()
}

func (c *ReportCache) Flush() {
	c.cache.Flush()
}

func cloneReport(r *legal.AnalysisReport) *legal.AnalysisReport {
	out := *r
	out.Clauses = append([]legal.ClauseAnalysis(nil), r.Clauses...)
	out.Warnings = append([]string(nil), r.Warnings...)
	out.Entities = append([]legal.Entity(nil), r.Entities...)
	out.KeyPhrases = append([]string(nil), r.KeyPhrases...)
	if r.Sources != nil {
		out.Sources = make(map[string]legal.Source, len(r.Sources))
		for k, v := range r.Sources {
			out.Sources[k] = v
		}
	}
	return &out
}

//Personal.AI order the ending
