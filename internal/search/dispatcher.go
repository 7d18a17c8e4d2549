// Package search routes a query to the summary or FAQ index.
package search

import (
	"context"

	"studynotes/internal/vectordb"
)

const (
	TypeSummary = "summary"
	TypeFAQs    = "faqs"
)

type Index interface {
	Search(ctx context.Context, query string, filter vectordb.Filter) ([]vectordb.SearchResult, error)
}

type Request struct {
	SearchType  string `json:"search_type"`
	SearchInput string `json:"search_input"`
	Username    string `json:"username"`
	Category    string `json:"category"`
	FileName    string `json:"file_name"`
}

type Dispatcher struct {
	summaries Index
	faqs      Index
}

func NewDispatcher(summaries, faqs Index) *Dispatcher {
	return &Dispatcher{summaries: summaries, faqs: faqs}
}

// Search sends "faqs" requests to the FAQ index and everything else to the
// summary index. Results are returned as the index produced them.
func (d *Dispatcher) Search(ctx context.Context, req Request) ([]vectordb.SearchResult, error) {
	filter := vectordb.Filter{
		Username: req.Username,
		Category: req.Category,
		FileName: req.FileName,
	}
	if req.SearchType == TypeFAQs {
		return d.faqs.Search(ctx, req.SearchInput, filter)
	}
	return d.summaries.Search(ctx, req.SearchInput, filter)
}
