package service

import (
	"context"
	"errors"
	"log"

	"teisinisai-backend/models"
)

// ArticleIndex is the vector index backend used by IndexService.
type ArticleIndex interface {
	Upsert(ctx context.Context, docs []models.IndexedArticle, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, topK int, category string) ([]models.IndexedArticle, error)
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
	DivergentLaws(ctx context.Context) ([]models.IndexDivergence, error)
}

const (
	defaultTopK = 5

	// Long texts (contract analysis) are represented by their opening
	// passage; the lead section carries the parties and subject matter.
	maxQueryRunes = 500
)

// DocumentID builds the stable index id for one article of one law.
func DocumentID(lawID, number string) string {
	return lawID + "_art_" + number
}

// IndexService owns the semantic article index: it embeds article text,
// writes the index, and answers similarity queries.
type IndexService struct {
	index    ArticleIndex
	embedder Embedder
}

// IndexServiceOption is a functional option for IndexService
type IndexServiceOption func(*IndexService)

// IndexWithIndex sets the vector index backend
func IndexWithIndex(index ArticleIndex) IndexServiceOption {
	return func(s *IndexService) {
		s.index = index
	}
}

// IndexWithEmbedder sets the embedding provider
func IndexWithEmbedder(embedder Embedder) IndexServiceOption {
	return func(s *IndexService) {
		s.embedder = embedder
	}
}

// NewIndexService creates a new index service
func NewIndexService(opts ...IndexServiceOption) *IndexService {
	s := &IndexService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexLaw embeds and upserts every article of a law under the given
// category. Re-indexing the same law overwrites rows in place, so the
// call is idempotent.
func (s *IndexService) IndexLaw(ctx context.Context, law *models.Law, articles []models.Article, category string) (int, error) {
	if s.index == nil || s.embedder == nil {
		return 0, errors.New("index service not fully configured")
	}
	if len(articles) == 0 {
		return 0, nil
	}

	docs := make([]models.IndexedArticle, 0, len(articles))
	texts := make([]string, 0, len(articles))
	for _, article := range articles {
		docs = append(docs, models.IndexedArticle{
			ID:            DocumentID(law.ID, article.Number),
			LawID:         law.ID,
			LawTitle:      law.Title,
			ArticleNumber: article.Number,
			ArticleTitle:  article.Title,
			Category:      category,
			Content:       article.Content,
			Version:       law.Version,
		})
		texts = append(texts, article.Title+"\n\n"+article.Content)
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(embeddings) != len(docs) {
		return 0, errors.New("embedding count does not match article count")
	}

	if err := s.index.Upsert(ctx, docs, embeddings); err != nil {
		return 0, err
	}

	log.Printf("Indexed %d articles from %s under %q", len(docs), law.ID, category)
	return len(docs), nil
}

// SearchRelevant embeds the query and returns the topK nearest articles,
// optionally restricted to one category. An empty category searches all.
func (s *IndexService) SearchRelevant(ctx context.Context, query string, topK int, category string) ([]models.IndexedArticle, error) {
	if s.index == nil || s.embedder == nil {
		return nil, errors.New("index service not fully configured")
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.index.Search(ctx, embedding, topK, category)
}

// FindRelevantArticles searches with a long text as the query, using
// only its opening passage as the embedding input.
func (s *IndexService) FindRelevantArticles(ctx context.Context, text string, topK int, category string) ([]models.IndexedArticle, error) {
	return s.SearchRelevant(ctx, leadRunes(text, maxQueryRunes), topK, category)
}

func leadRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Stats reports index statistics.
func (s *IndexService) Stats(ctx context.Context) (*models.IndexStats, error) {
	if s.index == nil {
		return nil, errors.New("index not set")
	}
	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &models.IndexStats{TotalArticles: count}, nil
}

// Clear drops every indexed article.
func (s *IndexService) Clear(ctx context.Context) error {
	if s.index == nil {
		return errors.New("index not set")
	}
	return s.index.Clear(ctx)
}

// Reconcile lists laws whose indexed version no longer matches the
// cached version. The caller decides whether to re-index.
func (s *IndexService) Reconcile(ctx context.Context) ([]models.IndexDivergence, error) {
	if s.index == nil {
		return nil, errors.New("index not set")
	}
	return s.index.DivergentLaws(ctx)
}
