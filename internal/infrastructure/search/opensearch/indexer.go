package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

var (
	ErrIndexCreationFailed = errors.New(errors.ErrCodeExternalService, "index creation failed")
	ErrBulkIndexFailed     = errors.New(errors.ErrCodeExternalService, "bulk index failed")
	ErrDeleteFailed        = errors.New(errors.ErrCodeExternalService, "delete by query failed")
)

// ClauseDocument is one analyzed clause as stored in the clause index.
type ClauseDocument struct {
	ID           string             `json:"id"`
	ReportID     string             `json:"report_id"`
	DocumentID   string             `json:"document_id"`
	Filename     string             `json:"filename"`
	DocumentType legal.DocumentType `json:"document_type"`
	ClauseIndex  int                `json:"clause_index"`
	ClauseType   legal.ClauseType   `json:"clause_type"`
	Text         string             `json:"text"`
	Simplified   string             `json:"simplified"`
	KeyPoints    []string           `json:"key_points"`
	IndexedAt    time.Time          `json:"indexed_at"`
}

// ClauseDocuments flattens a report into one document per clause. IDs are
// "<report id>-<clause index>" so re-indexing a report overwrites in place.
func ClauseDocuments(r *legal.AnalysisReport) []ClauseDocument {
	now := time.Now().UTC()
	docs := make([]ClauseDocument, 0, len(r.Clauses))
	for _, ca := range r.Clauses {
		docs = append(docs, ClauseDocument{
			ID:           fmt.Sprintf("%s-%d", r.ID, ca.Clause.Index),
			ReportID:     r.ID,
			DocumentID:   r.DocumentID,
			Filename:     r.Filename,
			DocumentType: r.DocumentType.Type,
			ClauseIndex:  ca.Clause.Index,
			ClauseType:   ca.Clause.Type,
			Text:         ca.Clause.Text,
			Simplified:   ca.Simplified,
			KeyPoints:    ca.KeyPoints,
			IndexedAt:    now,
		})
	}
	return docs
}

// BulkResult summarizes a bulk request.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []BulkItemError
}

type BulkItemError struct {
	DocID     string
	ErrorType string
	Reason    string
}

// IndexerConfig holds configuration for the Indexer.
type IndexerConfig struct {
	BulkBatchSize int
	RefreshPolicy string
	Shards        int
	Replicas      int
}

// Indexer writes analyzed clauses to the clause index.
type Indexer struct {
	client *Client
	index  string
	config IndexerConfig
	logger logging.Logger
}

func NewIndexer(client *Client, index string, cfg IndexerConfig, logger logging.Logger) *Indexer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.BulkBatchSize <= 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "false"
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 1
	}
	return &Indexer{client: client, index: index, config: cfg, logger: logger}
}

// Index returns the clause index name.
func (i *Indexer) Index() string { return i.index }

// ClauseIndexMapping is the mapping of the clause index. Clause and
// document types are keywords so they can be filtered and aggregated.
func ClauseIndexMapping(shards, replicas int) map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   shards,
			"number_of_replicas": replicas,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":            map[string]interface{}{"type": "keyword"},
				"report_id":     map[string]interface{}{"type": "keyword"},
				"document_id":   map[string]interface{}{"type": "keyword"},
				"filename":      map[string]interface{}{"type": "keyword"},
				"document_type": map[string]interface{}{"type": "keyword"},
				"clause_index":  map[string]interface{}{"type": "integer"},
				"clause_type":   map[string]interface{}{"type": "keyword"},
				"text":          map[string]interface{}{"type": "text", "analyzer": "english"},
				"simplified":    map[string]interface{}{"type": "text", "analyzer": "english"},
				"key_points":    map[string]interface{}{"type": "text"},
				"indexed_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
}

// EnsureIndex creates the clause index unless it already exists.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := i.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body, err := json.Marshal(ClauseIndexMapping(i.config.Shards, i.config.Replicas))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}

	req := opensearchapi.IndicesCreateRequest{
		Index: i.index,
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create index request")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		err := handleErrorResponse(resp, ErrIndexCreationFailed)
		// Another replica created it between the check and the create.
		if strings.Contains(err.Error(), "resource_already_exists_exception") {
			return nil
		}
		return err
	}

	i.logger.Info("Index created", logging.String("index", i.index))
	return nil
}

// IndexExists checks whether the clause index exists.
func (i *Indexer) IndexExists(ctx context.Context) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{Index: []string{i.index}}

	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to check index existence")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, handleErrorResponse(resp, errors.New(errors.ErrCodeExternalService, "check index existence failed"))
}

// IndexReport bulk-indexes every clause of the report.
func (i *Indexer) IndexReport(ctx context.Context, r *legal.AnalysisReport) (*BulkResult, error) {
	return i.BulkIndex(ctx, ClauseDocuments(r))
}

// BulkIndex indexes documents in batches of BulkBatchSize.
func (i *Indexer) BulkIndex(ctx context.Context, docs []ClauseDocument) (*BulkResult, error) {
	result := &BulkResult{}
	if len(docs) == 0 {
		return result, nil
	}

	for start := 0; start < len(docs); start += i.config.BulkBatchSize {
		end := start + i.config.BulkBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := i.bulkBatch(ctx, docs[start:end], result); err != nil {
			return result, err
		}
	}

	i.logger.Debug("Bulk index completed",
		logging.String("index", i.index),
		logging.Int("total", len(docs)),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))

	if result.Failed > 0 {
		return result, ErrBulkIndexFailed.WithDetail(fmt.Sprintf("%d of %d clauses failed", result.Failed, len(docs)))
	}
	return result, nil
}

func (i *Indexer) bulkBatch(ctx context.Context, batch []ClauseDocument, result *BulkResult) error {
	var buf bytes.Buffer
	for _, doc := range batch {
		meta, _ := json.Marshal(map[string]interface{}{
			"index": map[string]string{"_index": i.index, "_id": doc.ID},
		})
		src, err := json.Marshal(doc)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkItemError{DocID: doc.ID, ErrorType: "serialization_error", Reason: err.Error()})
			continue
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(src)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return nil
	}

	req := opensearchapi.BulkRequest{
		Body:    bytes.NewReader(buf.Bytes()),
		Refresh: i.config.RefreshPolicy,
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "bulk request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		result.Failed += len(batch)
		return handleErrorResponse(resp, ErrBulkIndexFailed)
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}

	if !bulkResp.Errors {
		result.Succeeded += len(bulkResp.Items)
		return nil
	}
	for _, item := range bulkResp.Items {
		// Each item has a single key naming the action.
		for _, v := range item {
			if v.Status >= 200 && v.Status < 300 {
				result.Succeeded++
			} else {
				result.Failed++
				result.Errors = append(result.Errors, BulkItemError{DocID: v.ID, ErrorType: v.Error.Type, Reason: v.Error.Reason})
			}
		}
	}
	return nil
}

// DeleteReport removes every clause of a report and returns how many were
// deleted. A missing index counts as nothing to delete.
func (i *Indexer) DeleteReport(ctx context.Context, reportID string) (int64, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"report_id": reportID},
		},
	})

	req := opensearchapi.DeleteByQueryRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeExternalService, "delete by query request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return 0, nil
	}
	if resp.IsError() {
		return 0, handleErrorResponse(resp, ErrDeleteFailed)
	}

	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode delete response")
	}
	return out.Deleted, nil
}

func handleErrorResponse(resp *opensearchapi.Response, defaultErr error) error {
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	bodyBytes, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Type != "" {
		return errors.Wrapf(defaultErr, errors.ErrCodeExternalService, "OpenSearch error: %s - %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return errors.Wrapf(defaultErr, errors.ErrCodeExternalService, "OpenSearch error status: %d", resp.StatusCode)
}

//Personal.AI order the ending
