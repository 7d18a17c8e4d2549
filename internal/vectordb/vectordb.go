// Package vectordb stores study-note artifacts as embedded, tenant-tagged
// records and answers filtered similarity queries over them.
//
// Two logical collections share one contract: summaries (one record per
// document) and faqs (one record per question/answer pair). Every record
// carries the username, category and file name it was ingested under, and
// every query filters on username. Isolation between users rests entirely on
// that tag.
package vectordb

import (
	"context"
	"errors"
	"fmt"
)

const (
	// Dimension is fixed across the embedder and both collections.
	Dimension = 768
	// ScoreThreshold is applied by the backend; weaker matches are never returned.
	ScoreThreshold float32 = 0.75

	SummariesCollection = "summaries"
	FAQsCollection      = "faqs"

	DefaultSearchLimit uint64 = 10
)

const (
	PayloadUsername = "username"
	PayloadCategory = "category"
	PayloadFileName = "file_name"
	PayloadSummary  = "summary"
	PayloadQuestion = "question"
	PayloadAnswer   = "answer"
)

// Embedder turns a batch of texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]string
}

type ScoredPoint struct {
	ID      string
	Score   float32
	Payload map[string]string
}

// Condition is an exact-match requirement on a payload field.
type Condition struct {
	Key   string
	Value string
}

// Backend is the vector database engine. Query must drop candidates scoring
// below threshold and return the rest ordered by descending score.
type Backend interface {
	EnsureCollection(ctx context.Context, name string, dimension uint64) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Query(ctx context.Context, collection string, vector []float32, must []Condition, threshold float32, limit uint64) ([]ScoredPoint, error)
}

// Tags are written into every record produced by one upload.
type Tags struct {
	Username string
	Category string
	FileName string
}

func (t Tags) payload() map[string]string {
	return map[string]string{
		PayloadUsername: t.Username,
		PayloadCategory: t.Category,
		PayloadFileName: t.FileName,
	}
}

// Filter scopes a search. Username is mandatory; an empty Category or
// FileName leaves that field unconstrained.
type Filter struct {
	Username string
	Category string
	FileName string
}

func (f Filter) conditions() []Condition {
	must := []Condition{{Key: PayloadUsername, Value: f.Username}}
	if f.Category != "" {
		must = append(must, Condition{Key: PayloadCategory, Value: f.Category})
	}
	if f.FileName != "" {
		must = append(must, Condition{Key: PayloadFileName, Value: f.FileName})
	}
	return must
}

type ResultType string

const (
	ResultSummary ResultType = "summary"
	ResultAnswer  ResultType = "answer"
)

type SearchResult struct {
	ResultType ResultType `json:"result_type"`
	Text       string     `json:"text"`
	FileName   string     `json:"file_name"`
	Category   string     `json:"category"`
	Similarity float64    `json:"similarity"`
}

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmbeddingCount    = errors.New("embedding count mismatch")
	ErrMissingUsername   = errors.New("username is required")
)

type ErrorKind string

const (
	KindEmbedding ErrorKind = "embedding"
	KindWrite     ErrorKind = "write"
	KindQuery     ErrorKind = "query"
)

// Error reports a failure at the embedding or storage boundary. The wrapped
// error is the one returned by the embedder or backend.
type Error struct {
	Kind       ErrorKind
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("vectordb %s %s failed: %v", e.Collection, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries a vectordb Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var vErr *Error
	return errors.As(err, &vErr) && vErr.Kind == kind
}

// EnsureCollections provisions both collections with the fixed dimension.
func EnsureCollections(ctx context.Context, backend Backend) error {
	for _, name := range []string{SummariesCollection, FAQsCollection} {
		if err := backend.EnsureCollection(ctx, name, Dimension); err != nil {
			return fmt.Errorf("ensure collection %s failed: %w", name, err)
		}
	}
	return nil
}
