package opensearch

import (
	"context"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// ClauseStore pairs the indexer and searcher of one clause index.
type ClauseStore struct {
	client   *Client
	indexer  *Indexer
	searcher *Searcher
}

func NewClauseStore(client *Client, index string, logger logging.Logger) *ClauseStore {
	return &ClauseStore{
		client:   client,
		indexer:  NewIndexer(client, index, IndexerConfig{}, logger),
		searcher: NewSearcher(client, index, SearcherConfig{}, logger),
	}
}

func (s *ClauseStore) EnsureIndex(ctx context.Context) error {
	return s.indexer.EnsureIndex(ctx)
}

func (s *ClauseStore) IndexReport(ctx context.Context, r *legal.AnalysisReport) (*BulkResult, error) {
	return s.indexer.IndexReport(ctx, r)
}

func (s *ClauseStore) DeleteReport(ctx context.Context, reportID string) (int64, error) {
	return s.indexer.DeleteReport(ctx, reportID)
}

func (s *ClauseStore) Search(ctx context.Context, q ClauseQuery) (*ClauseSearchResult, error) {
	return s.searcher.Search(ctx, q)
}

func (s *ClauseStore) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

//Personal.AI order the ending
