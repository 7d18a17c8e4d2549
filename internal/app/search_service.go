package app

import (
	"context"
	"strings"
	"time"

	"studynotes/internal/search"
	"studynotes/internal/vectordb"
)

type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]vectordb.SearchResult, error)
}

type SearchObserver interface {
	ObserveSearch(searchType string, results int, elapsed time.Duration)
}

type SearchService struct {
	searcher Searcher
	observer SearchObserver
}

func NewSearchService(searcher Searcher, observer SearchObserver) *SearchService {
	return &SearchService{searcher: searcher, observer: observer}
}

type SearchInput struct {
	SearchType  string
	SearchInput string
	Category    string
	FileName    string
}

// Search always scopes the query to username, whatever the input says.
func (s *SearchService) Search(ctx context.Context, username string, input SearchInput) ([]vectordb.SearchResult, error) {
	query := strings.TrimSpace(input.SearchInput)
	if username == "" || query == "" {
		return nil, ErrInvalidInput
	}

	start := time.Now()
	results, err := s.searcher.Search(ctx, search.Request{
		SearchType:  input.SearchType,
		SearchInput: query,
		Username:    username,
		Category:    strings.TrimSpace(input.Category),
		FileName:    strings.TrimSpace(input.FileName),
	})
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.ObserveSearch(input.SearchType, len(results), time.Since(start))
	}
	return results, nil
}
