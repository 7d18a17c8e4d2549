package vectordb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Options tune a store. Zero values select the defaults.
type Options struct {
	Collection string
	Limit      uint64
	NewID      func() string
}

// index is the machinery shared by the summary and FAQ stores.
type index struct {
	collection string
	limit      uint64
	backend    Backend
	embedder   Embedder
	newID      func() string
}

func newIndex(backend Backend, embedder Embedder, defaultCollection string, opts Options) *index {
	ix := &index{
		collection: opts.Collection,
		limit:      opts.Limit,
		backend:    backend,
		embedder:   embedder,
		newID:      opts.NewID,
	}
	if ix.collection == "" {
		ix.collection = defaultCollection
	}
	if ix.limit == 0 {
		ix.limit = DefaultSearchLimit
	}
	if ix.newID == nil {
		ix.newID = func() string { return uuid.NewString() }
	}
	return ix
}

func (ix *index) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, &Error{Kind: KindEmbedding, Collection: ix.collection, Err: err}
	}
	if len(vectors) != len(texts) {
		return nil, &Error{
			Kind:       KindEmbedding,
			Collection: ix.collection,
			Err:        fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingCount, len(vectors), len(texts)),
		}
	}
	for i, v := range vectors {
		if len(v) != Dimension {
			return nil, &Error{
				Kind:       KindEmbedding,
				Collection: ix.collection,
				Err:        fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), Dimension),
			}
		}
	}
	return vectors, nil
}

// upload embeds texts in one call and writes one point per text in one batch.
// payloads[i] is merged over the shared tags for texts[i].
func (ix *index) upload(ctx context.Context, texts []string, payloads []map[string]string, tags Tags) error {
	if tags.Username == "" {
		return ErrMissingUsername
	}
	if len(texts) == 0 {
		return nil
	}
	vectors, err := ix.embed(ctx, texts)
	if err != nil {
		return err
	}

	points := make([]Point, len(texts))
	for i := range texts {
		payload := tags.payload()
		for k, v := range payloads[i] {
			payload[k] = v
		}
		points[i] = Point{
			ID:      ix.newID(),
			Vector:  vectors[i],
			Payload: payload,
		}
	}
	if err := ix.backend.Upsert(ctx, ix.collection, points); err != nil {
		return &Error{Kind: KindWrite, Collection: ix.collection, Err: err}
	}
	return nil
}

func (ix *index) search(ctx context.Context, query string, filter Filter) ([]ScoredPoint, error) {
	if filter.Username == "" {
		return nil, ErrMissingUsername
	}
	vectors, err := ix.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	points, err := ix.backend.Query(ctx, ix.collection, vectors[0], filter.conditions(), ScoreThreshold, ix.limit)
	if err != nil {
		return nil, &Error{Kind: KindQuery, Collection: ix.collection, Err: err}
	}
	return points, nil
}

// results maps scored points to search results, reading the display text
// from textKey. Points without a payload or without that field are skipped.
func results(points []ScoredPoint, textKey string, resultType ResultType) []SearchResult {
	out := make([]SearchResult, 0, len(points))
	for _, p := range points {
		if p.Payload == nil {
			continue
		}
		text, ok := p.Payload[textKey]
		if !ok {
			continue
		}
		out = append(out, SearchResult{
			ResultType: resultType,
			Text:       text,
			FileName:   p.Payload[PayloadFileName],
			Category:   p.Payload[PayloadCategory],
			Similarity: float64(p.Score),
		})
	}
	return out
}
