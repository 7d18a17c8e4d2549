package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"studynotes/internal/ai"
	"studynotes/internal/config"
	"studynotes/internal/llamacloud"
	mysqlClient "studynotes/internal/platform/mysql"
	"studynotes/internal/pipeline"
	"studynotes/internal/repository"
	"studynotes/internal/search"
	"studynotes/internal/vectordb"
	"studynotes/internal/vectordb/memory"
	"studynotes/internal/vectordb/qdrant"
)

// VectorStack is the vector backend with both stores and the dispatcher
// built on top of it.
type VectorStack struct {
	Backend    vectordb.Backend
	Embedder   vectordb.Embedder
	Summaries  *vectordb.SummaryStore
	FAQs       *vectordb.FAQStore
	Dispatcher *search.Dispatcher

	close func() error
}

func NewVectorStack(cfg *config.Config) (*VectorStack, error) {
	stack := &VectorStack{close: func() error { return nil }}

	switch cfg.Qdrant.Backend {
	case "memory":
		stack.Backend = memory.NewBackend()
	case "qdrant", "":
		backend, err := qdrant.New(qdrant.Config{
			Host:   cfg.Qdrant.Host,
			Port:   cfg.Qdrant.Port,
			APIKey: cfg.Qdrant.APIKey,
			UseTLS: cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return nil, err
		}
		stack.Backend = backend
		stack.close = backend.Close
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Qdrant.Backend)
	}

	switch cfg.Embedding.Provider {
	case "hash":
		stack.Embedder = memory.NewHashEmbedder(vectordb.Dimension)
	case "openai", "":
		stack.Embedder = ai.NewEmbeddingClient(ai.EmbeddingConfig{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     cfg.Embedding.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: vectordb.Dimension,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		})
	default:
		_ = stack.close()
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	opts := vectordb.Options{Limit: cfg.Search.Limit}
	stack.Summaries = vectordb.NewSummaryStore(stack.Backend, stack.Embedder, opts)
	stack.FAQs = vectordb.NewFAQStore(stack.Backend, stack.Embedder, opts)
	stack.Dispatcher = search.NewDispatcher(stack.Summaries, stack.FAQs)
	return stack, nil
}

// Ping checks the backend when it supports health checks.
func (s *VectorStack) Ping(ctx context.Context) error {
	if p, ok := s.Backend.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *VectorStack) Close() error {
	return s.close()
}

func NewLlamaCloud(cfg *config.Config) *llamacloud.Client {
	return llamacloud.NewClient(llamacloud.Config{
		BaseURL:        cfg.LlamaCloud.BaseURL,
		APIKey:         cfg.LlamaCloud.APIKey,
		ProjectID:      cfg.LlamaCloud.ProjectID,
		PollInterval:   time.Duration(cfg.LlamaCloud.PollIntervalMs) * time.Millisecond,
		RequestTimeout: time.Duration(cfg.LlamaCloud.RequestTimeoutMs) * time.Millisecond,
	})
}

// OpenMySQL connects and migrates the relational schema.
func OpenMySQL(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), !cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	if err := mysqlClient.Migrate(db); err != nil {
		_ = mysqlClient.Close(db)
		return nil, err
	}
	return db, nil
}

func NewPipeline(db *gorm.DB, vectors *VectorStack, docs *llamacloud.Client, logger *zap.Logger) *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		Rules:      repository.NewRuleRepository(db),
		Files:      repository.NewFileRepository(db),
		Classifier: docs,
		Extractor:  docs,
		Summaries:  vectors.Summaries,
		FAQs:       vectors.FAQs,
	}, logger.Named("pipeline"))
}
