package vectordb

import (
	"context"

	"studynotes/internal/model"
)

// FAQStore holds one record per question/answer pair. The question is what
// gets embedded; the answer is what a search returns.
type FAQStore struct {
	ix *index
}

func NewFAQStore(backend Backend, embedder Embedder, opts Options) *FAQStore {
	return &FAQStore{ix: newIndex(backend, embedder, FAQsCollection, opts)}
}

func (s *FAQStore) Collection() string {
	return s.ix.collection
}

// Upload embeds all questions in one batch and writes every pair in one
// batch. An empty list writes nothing.
func (s *FAQStore) Upload(ctx context.Context, faqs []model.QAPair, tags Tags) error {
	questions := make([]string, len(faqs))
	payloads := make([]map[string]string, len(faqs))
	for i, qa := range faqs {
		questions[i] = qa.Question
		payloads[i] = map[string]string{
			PayloadQuestion: qa.Question,
			PayloadAnswer:   qa.Answer,
		}
	}
	return s.ix.upload(ctx, questions, payloads, tags)
}

// Search matches query against stored questions and returns their answers.
func (s *FAQStore) Search(ctx context.Context, query string, filter Filter) ([]SearchResult, error) {
	points, err := s.ix.search(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	return results(points, PayloadAnswer, ResultAnswer), nil
}
