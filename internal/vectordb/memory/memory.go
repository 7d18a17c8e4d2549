// Package memory is an in-process vector backend using brute-force cosine
// similarity. It honours the same filter and threshold semantics as Qdrant.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"studynotes/internal/vectordb"
)

var ErrCollectionNotFound = errors.New("collection not found")

type collection struct {
	dimension uint64
	points    []vectordb.Point
	byID      map[string]int
}

type Backend struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func NewBackend() *Backend {
	return &Backend{collections: make(map[string]*collection)}
}

func (b *Backend) EnsureCollection(_ context.Context, name string, dimension uint64) error {
	if dimension == 0 {
		return errors.New("invalid dimension")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.collections[name]; ok {
		if existing.dimension != dimension {
			return fmt.Errorf("collection %s exists with dimension %d", name, existing.dimension)
		}
		return nil
	}
	b.collections[name] = &collection{dimension: dimension, byID: make(map[string]int)}
	return nil
}

func (b *Backend) Upsert(_ context.Context, name string, points []vectordb.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	for _, p := range points {
		if uint64(len(p.Vector)) != c.dimension {
			return fmt.Errorf("vector dimension %d does not match collection %s (%d)", len(p.Vector), name, c.dimension)
		}
	}
	for _, p := range points {
		stored := vectordb.Point{
			ID:      p.ID,
			Vector:  append([]float32(nil), p.Vector...),
			Payload: clonePayload(p.Payload),
		}
		if i, ok := c.byID[p.ID]; ok {
			c.points[i] = stored
			continue
		}
		c.byID[p.ID] = len(c.points)
		c.points = append(c.points, stored)
	}
	return nil
}

func (b *Backend) Query(_ context.Context, name string, vector []float32, must []vectordb.Condition, threshold float32, limit uint64) ([]vectordb.ScoredPoint, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if uint64(len(vector)) != c.dimension {
		return nil, fmt.Errorf("query dimension %d does not match collection %s (%d)", len(vector), name, c.dimension)
	}

	var scored []vectordb.ScoredPoint
	for _, p := range c.points {
		if !matches(p.Payload, must) {
			continue
		}
		score := cosine(vector, p.Vector)
		if score < threshold {
			continue
		}
		scored = append(scored, vectordb.ScoredPoint{
			ID:      p.ID,
			Score:   score,
			Payload: clonePayload(p.Payload),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if limit > 0 && uint64(len(scored)) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Count returns the number of points stored in a collection.
func (b *Backend) Count(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if c, ok := b.collections[name]; ok {
		return len(c.points)
	}
	return 0
}

func matches(payload map[string]string, must []vectordb.Condition) bool {
	for _, cond := range must {
		if v, ok := payload[cond.Key]; !ok || v != cond.Value {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func clonePayload(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
