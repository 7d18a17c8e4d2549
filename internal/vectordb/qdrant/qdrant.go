// Package qdrant adapts the Qdrant gRPC client to vectordb.Backend.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"studynotes/internal/vectordb"
)

type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

type Backend struct {
	client *qdrant.Client
}

func New(cfg Config) (*Backend, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client failed: %w", err)
	}
	return &Backend{client: client}, nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

// EnsureCollection creates a cosine collection with keyword indexes on the
// tag fields used by search filters. Existing collections are left alone.
func (b *Backend) EnsureCollection(ctx context.Context, name string, dimension uint64) error {
	exists, err := b.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check qdrant collection %s failed: %w", name, err)
	}
	if exists {
		return nil
	}
	err = b.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create qdrant collection %s failed: %w", name, err)
	}
	for _, field := range []string{vectordb.PayloadUsername, vectordb.PayloadCategory, vectordb.PayloadFileName} {
		_, err := b.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create qdrant index %s.%s failed: %w", name, field, err)
		}
	}
	return nil
}

func (b *Backend) Upsert(ctx context.Context, collection string, points []vectordb.Point) error {
	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload := make(map[string]any, len(p.Payload))
		for k, v := range p.Payload {
			payload[k] = v
		}
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}
	wait := true
	if _, err := b.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         structs,
	}); err != nil {
		return fmt.Errorf("qdrant upsert into %s failed: %w", collection, err)
	}
	return nil
}

func (b *Backend) Query(ctx context.Context, collection string, vector []float32, must []vectordb.Condition, threshold float32, limit uint64) ([]vectordb.ScoredPoint, error) {
	conditions := make([]*qdrant.Condition, 0, len(must))
	for _, c := range must {
		conditions = append(conditions, qdrant.NewMatch(c.Key, c.Value))
	}
	scored, err := b.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         &qdrant.Filter{Must: conditions},
		ScoreThreshold: &threshold,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query on %s failed: %w", collection, err)
	}

	out := make([]vectordb.ScoredPoint, 0, len(scored))
	for _, sp := range scored {
		out = append(out, vectordb.ScoredPoint{
			ID:      sp.GetId().GetUuid(),
			Score:   sp.GetScore(),
			Payload: stringPayload(sp.GetPayload()),
		})
	}
	return out, nil
}

// stringPayload keeps the string-valued fields; every field this service
// writes is a string.
func stringPayload(in map[string]*qdrant.Value) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			out[k] = s.StringValue
		}
	}
	return out
}

func (b *Backend) Ping(ctx context.Context) error {
	if _, err := b.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}
