package memory

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

// HashEmbedder is a deterministic bag-of-words embedder: each lowercased word
// increments one hashed bucket. Identical texts embed identically, texts with
// no words in common are close to orthogonal. Meant for tests and offline runs.
type HashEmbedder struct {
	Dimension int

	mu    sync.Mutex
	calls [][]string
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	return &HashEmbedder{Dimension: dimension}
}

func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	e.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

// Calls returns the batches passed to Embed so far.
func (e *HashEmbedder) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.calls...)
}

func (e *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.Dimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(e.Dimension)]++
	}
	return v
}
