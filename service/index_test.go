package service

import (
	"context"
	"strings"
	"testing"

	"teisinisai-backend/models"
)

type fakeEmbedder struct {
	queries []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{1, 0, 0}
	}
	return embeddings, nil
}

type fakeArticleIndex struct {
	docs         map[string]models.IndexedArticle
	lastCategory string
	lastTopK     int
}

func newFakeArticleIndex() *fakeArticleIndex {
	return &fakeArticleIndex{docs: map[string]models.IndexedArticle{}}
}

func (f *fakeArticleIndex) Upsert(ctx context.Context, docs []models.IndexedArticle, embeddings [][]float32) error {
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return nil
}

func (f *fakeArticleIndex) Search(ctx context.Context, embedding []float32, topK int, category string) ([]models.IndexedArticle, error) {
	f.lastTopK = topK
	f.lastCategory = category

	var results []models.IndexedArticle
	for _, doc := range f.docs {
		if category != "" && doc.Category != category {
			continue
		}
		results = append(results, doc)
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

func (f *fakeArticleIndex) Count(ctx context.Context) (int64, error) {
	return int64(len(f.docs)), nil
}

func (f *fakeArticleIndex) Clear(ctx context.Context) error {
	f.docs = map[string]models.IndexedArticle{}
	return nil
}

func (f *fakeArticleIndex) DivergentLaws(ctx context.Context) ([]models.IndexDivergence, error) {
	return nil, nil
}

func testLawWithArticles() (*models.Law, []models.Article) {
	law := &models.Law{
		ID:      "TAIS.245495",
		Title:   "Darbo kodeksas",
		Version: "2026-08-01T00:00:00Z",
	}
	articles := []models.Article{
		{LawID: law.ID, Number: "1", Title: "Paskirtis", Content: "Kodeksas reglamentuoja darbo santykius."},
		{LawID: law.ID, Number: "52", Title: "Nuotolinis darbas", Content: "Nuotolinio darbo tvarka."},
	}
	return law, articles
}

func newTestIndex(index *fakeArticleIndex, embedder *fakeEmbedder) *IndexService {
	return NewIndexService(
		IndexWithIndex(index),
		IndexWithEmbedder(embedder),
	)
}

func TestDocumentID(t *testing.T) {
	if got := DocumentID("TAIS.245495", "52"); got != "TAIS.245495_art_52" {
		t.Errorf("DocumentID = %q", got)
	}
}

func TestIndexLaw(t *testing.T) {
	index := newFakeArticleIndex()
	s := newTestIndex(index, &fakeEmbedder{})
	law, articles := testLawWithArticles()

	indexed, err := s.IndexLaw(context.Background(), law, articles, "darbo_teisė")
	if err != nil {
		t.Fatalf("IndexLaw failed: %v", err)
	}
	if indexed != 2 {
		t.Errorf("expected 2 indexed, got %d", indexed)
	}

	doc, ok := index.docs["TAIS.245495_art_52"]
	if !ok {
		t.Fatal("expected document TAIS.245495_art_52 in index")
	}
	if doc.Category != "darbo_teisė" {
		t.Errorf("unexpected category %q", doc.Category)
	}
	if doc.Version != law.Version {
		t.Errorf("document version %q does not match law version %q", doc.Version, law.Version)
	}
	if doc.LawTitle != law.Title {
		t.Errorf("unexpected law title %q", doc.LawTitle)
	}
}

func TestIndexLawIdempotent(t *testing.T) {
	index := newFakeArticleIndex()
	s := newTestIndex(index, &fakeEmbedder{})
	law, articles := testLawWithArticles()

	for i := 0; i < 3; i++ {
		if _, err := s.IndexLaw(context.Background(), law, articles, "darbo_teisė"); err != nil {
			t.Fatalf("IndexLaw run %d failed: %v", i, err)
		}
	}

	count, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if count.TotalArticles != 2 {
		t.Errorf("re-indexing duplicated documents: %d", count.TotalArticles)
	}
}

func TestIndexLawNoArticles(t *testing.T) {
	s := newTestIndex(newFakeArticleIndex(), &fakeEmbedder{})
	law, _ := testLawWithArticles()

	indexed, err := s.IndexLaw(context.Background(), law, nil, "darbo_teisė")
	if err != nil {
		t.Fatalf("IndexLaw failed: %v", err)
	}
	if indexed != 0 {
		t.Errorf("expected 0 indexed for empty article list, got %d", indexed)
	}
}

func TestSearchRelevantCategoryPassthrough(t *testing.T) {
	index := newFakeArticleIndex()
	s := newTestIndex(index, &fakeEmbedder{})

	if _, err := s.SearchRelevant(context.Background(), "atostogos", 3, "darbo_teisė"); err != nil {
		t.Fatalf("SearchRelevant failed: %v", err)
	}

	if index.lastCategory != "darbo_teisė" {
		t.Errorf("category not passed through, got %q", index.lastCategory)
	}
	if index.lastTopK != 3 {
		t.Errorf("topK not passed through, got %d", index.lastTopK)
	}
}

func TestSearchRelevantDefaultTopK(t *testing.T) {
	index := newFakeArticleIndex()
	s := newTestIndex(index, &fakeEmbedder{})

	if _, err := s.SearchRelevant(context.Background(), "atostogos", 0, ""); err != nil {
		t.Fatalf("SearchRelevant failed: %v", err)
	}
	if index.lastTopK != defaultTopK {
		t.Errorf("expected default topK %d, got %d", defaultTopK, index.lastTopK)
	}
}

func TestFindRelevantArticlesTruncatesQuery(t *testing.T) {
	embedder := &fakeEmbedder{}
	s := newTestIndex(newFakeArticleIndex(), embedder)

	long := strings.Repeat("ė", 800)
	if _, err := s.FindRelevantArticles(context.Background(), long, 5, ""); err != nil {
		t.Fatalf("FindRelevantArticles failed: %v", err)
	}

	if len(embedder.queries) != 1 {
		t.Fatalf("expected 1 embedded query, got %d", len(embedder.queries))
	}
	if got := len([]rune(embedder.queries[0])); got != maxQueryRunes {
		t.Errorf("expected query truncated to %d runes, got %d", maxQueryRunes, got)
	}
}

func TestFindRelevantArticlesShortQueryUntouched(t *testing.T) {
	embedder := &fakeEmbedder{}
	s := newTestIndex(newFakeArticleIndex(), embedder)

	if _, err := s.FindRelevantArticles(context.Background(), "trumpa sutartis", 5, ""); err != nil {
		t.Fatalf("FindRelevantArticles failed: %v", err)
	}
	if embedder.queries[0] != "trumpa sutartis" {
		t.Errorf("short query altered: %q", embedder.queries[0])
	}
}

func TestClear(t *testing.T) {
	index := newFakeArticleIndex()
	s := newTestIndex(index, &fakeEmbedder{})
	law, articles := testLawWithArticles()

	if _, err := s.IndexLaw(context.Background(), law, articles, ""); err != nil {
		t.Fatalf("IndexLaw failed: %v", err)
	}
	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalArticles != 0 {
		t.Errorf("expected empty index after Clear, got %d", stats.TotalArticles)
	}
}
