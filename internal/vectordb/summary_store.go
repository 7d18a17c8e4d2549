package vectordb

import "context"

// SummaryStore holds one record per ingested document.
type SummaryStore struct {
	ix *index
}

func NewSummaryStore(backend Backend, embedder Embedder, opts Options) *SummaryStore {
	return &SummaryStore{ix: newIndex(backend, embedder, SummariesCollection, opts)}
}

func (s *SummaryStore) Collection() string {
	return s.ix.collection
}

// Upload embeds the summary alone and writes a single record.
func (s *SummaryStore) Upload(ctx context.Context, summary string, tags Tags) error {
	return s.ix.upload(ctx,
		[]string{summary},
		[]map[string]string{{PayloadSummary: summary}},
		tags,
	)
}

// Search returns summaries similar to query, best match first.
func (s *SummaryStore) Search(ctx context.Context, query string, filter Filter) ([]SearchResult, error) {
	points, err := s.ix.search(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	return results(points, PayloadSummary, ResultSummary), nil
}
