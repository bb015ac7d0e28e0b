package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// SearcherConfig holds configuration for the Searcher.
type SearcherConfig struct {
	DefaultPageSize  int
	MaxPageSize      int
	HighlightPreTag  string
	HighlightPostTag string
	SearchTimeout    time.Duration
}

// ClauseQuery is a full-text clause search. Empty filters match everything.
type ClauseQuery struct {
	Text         string
	ClauseType   legal.ClauseType
	DocumentType legal.DocumentType
	ReportID     string
	From         int
	Size         int
}

// ClauseHit is one matching clause.
type ClauseHit struct {
	ClauseDocument
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"`
}

// ClauseSearchResult holds the hits and the per-clause-type counts of the
// whole match set.
type ClauseSearchResult struct {
	Total      int64            `json:"total"`
	Hits       []ClauseHit      `json:"hits"`
	TypeCounts map[string]int64 `json:"type_counts,omitempty"`
	TookMs     int64            `json:"took_ms"`
}

// Searcher queries the clause index.
type Searcher struct {
	client *Client
	index  string
	config SearcherConfig
	logger logging.Logger
}

func NewSearcher(client *Client, index string, cfg SearcherConfig, logger logging.Logger) *Searcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.HighlightPreTag == "" {
		cfg.HighlightPreTag = "<em>"
	}
	if cfg.HighlightPostTag == "" {
		cfg.HighlightPostTag = "</em>"
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	return &Searcher{client: client, index: index, config: cfg, logger: logger}
}

// Search runs q against the clause index.
func (s *Searcher) Search(ctx context.Context, q ClauseQuery) (*ClauseSearchResult, error) {
	if q.Text == "" && q.ClauseType == "" && q.DocumentType == "" && q.ReportID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "query text or filter required")
	}
	if q.ClauseType != "" && !q.ClauseType.IsValid() {
		return nil, errors.New(errors.ErrCodeValidation, "unknown clause type").WithDetail(string(q.ClauseType))
	}
	s.normalizePage(&q)

	body, err := json.Marshal(s.buildQueryDSL(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query DSL")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
	defer cancel()

	req := opensearchapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	start := time.Now()
	resp, err := req.Do(ctx, s.client.GetClient())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "search request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return &ClauseSearchResult{Hits: []ClauseHit{}}, nil
	}
	if resp.IsError() {
		return nil, handleErrorResponse(resp, errors.New(errors.ErrCodeExternalService, "search failed"))
	}

	result, err := parseSearchResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Clause search executed",
		logging.String("index", s.index),
		logging.Int64("took_ms", time.Since(start).Milliseconds()),
		logging.Int64("hits", result.Total))
	return result, nil
}

func (s *Searcher) normalizePage(q *ClauseQuery) {
	if q.Size <= 0 {
		q.Size = s.config.DefaultPageSize
	}
	if q.Size > s.config.MaxPageSize {
		q.Size = s.config.MaxPageSize
	}
	if q.From < 0 {
		q.From = 0
	}
}

func (s *Searcher) buildQueryDSL(q ClauseQuery) map[string]interface{} {
	boolQuery := map[string]interface{}{}

	if q.Text != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q.Text,
					"fields": []string{"text^2", "simplified", "key_points"},
				},
			},
		}
	}

	var filters []interface{}
	addTerm := func(field, value string) {
		if value != "" {
			filters = append(filters, map[string]interface{}{
				"term": map[string]interface{}{field: value},
			})
		}
	}
	addTerm("clause_type", string(q.ClauseType))
	addTerm("document_type", string(q.DocumentType))
	addTerm("report_id", q.ReportID)
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	dsl := map[string]interface{}{
		"from":  q.From,
		"size":  q.Size,
		"query": map[string]interface{}{"bool": boolQuery},
		"aggs": map[string]interface{}{
			"clause_types": map[string]interface{}{
				"terms": map[string]interface{}{"field": "clause_type", "size": len(legal.AllClauseTypes())},
			},
		},
	}
	if q.Text != "" {
		dsl["highlight"] = map[string]interface{}{
			"pre_tags":  []string{s.config.HighlightPreTag},
			"post_tags": []string{s.config.HighlightPostTag},
			"fields": map[string]interface{}{
				"text": map[string]interface{}{"fragment_size": 150, "number_of_fragments": 3},
			},
		}
	} else {
		dsl["sort"] = []interface{}{
			map[string]interface{}{"indexed_at": map[string]string{"order": "desc"}},
			map[string]interface{}{"clause_index": map[string]string{"order": "asc"}},
		}
	}
	return dsl
}

func parseSearchResponse(body io.Reader) (*ClauseSearchResult, error) {
	var raw struct {
		Took int64 `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID        string              `json:"_id"`
				Score     float64             `json:"_score"`
				Source    ClauseDocument      `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations struct {
			ClauseTypes struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int64  `json:"doc_count"`
				} `json:"buckets"`
			} `json:"clause_types"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	result := &ClauseSearchResult{
		Total:  raw.Hits.Total.Value,
		TookMs: raw.Took,
		Hits:   make([]ClauseHit, 0, len(raw.Hits.Hits)),
	}
	for _, h := range raw.Hits.Hits {
		hit := ClauseHit{ClauseDocument: h.Source, Score: h.Score, Highlights: h.Highlight["text"]}
		hit.ID = h.ID
		result.Hits = append(result.Hits, hit)
	}
	if len(raw.Aggregations.ClauseTypes.Buckets) > 0 {
		result.TypeCounts = make(map[string]int64, len(raw.Aggregations.ClauseTypes.Buckets))
		for _, b := range raw.Aggregations.ClauseTypes.Buckets {
			result.TypeCounts[b.Key] = b.DocCount
		}
	}
	return result, nil
}

//Personal.AI order the ending
