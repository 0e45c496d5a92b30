package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"teisinisai-backend/models"
)

// ArticleRetriever is the semantic search surface the advisory services
// depend on. IndexService implements it.
type ArticleRetriever interface {
	SearchRelevant(ctx context.Context, query string, topK int, category string) ([]models.IndexedArticle, error)
	FindRelevantArticles(ctx context.Context, text string, topK int, category string) ([]models.IndexedArticle, error)
}

// LegalAnswer is the response to one legal question.
type LegalAnswer struct {
	Answer     string                  `json:"answer"`
	Sources    []models.IndexedArticle `json:"sources"`
	Confidence string                  `json:"confidence"`
	Category   string                  `json:"category"`
}

const noSourcesAnswer = "Atsiprašau, nepavyko rasti susijusių teisės aktų nuostatų jūsų klausimui. " +
	"Pabandykite suformuluoti klausimą kitaip arba kreipkitės į teisininką."

const generationFailedAnswer = "Atsiprašau, šiuo metu nepavyko suformuluoti atsakymo. " +
	"Peržiūrėkite žemiau pateiktas susijusias teisės aktų nuostatas arba pabandykite vėliau."

// AdvisorService answers legal questions grounded in retrieved articles.
type AdvisorService struct {
	retriever ArticleRetriever
	oracle    GenerationOracle
}

// AdvisorServiceOption is a functional option for AdvisorService
type AdvisorServiceOption func(*AdvisorService)

// AdvisorWithRetriever sets the article retriever
func AdvisorWithRetriever(retriever ArticleRetriever) AdvisorServiceOption {
	return func(s *AdvisorService) {
		s.retriever = retriever
	}
}

// AdvisorWithOracle sets the text generation backend
func AdvisorWithOracle(oracle GenerationOracle) AdvisorServiceOption {
	return func(s *AdvisorService) {
		s.oracle = oracle
	}
}

// NewAdvisorService creates a new advisor service
func NewAdvisorService(opts ...AdvisorServiceOption) *AdvisorService {
	s := &AdvisorService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerQuestion retrieves the articles nearest the question and asks
// the oracle for an answer grounded in them. With no sources retrieved
// it returns an apology with low confidence and never calls the oracle.
func (s *AdvisorService) AnswerQuestion(ctx context.Context, question, category string) (*LegalAnswer, error) {
	if s.retriever == nil || s.oracle == nil {
		return nil, errors.New("advisor service not fully configured")
	}

	sources, err := s.retriever.SearchRelevant(ctx, question, defaultTopK, category)
	if err != nil {
		return nil, err
	}

	if len(sources) == 0 {
		return &LegalAnswer{
			Answer:     noSourcesAnswer,
			Confidence: ConfidenceLow,
			Category:   category,
		}, nil
	}

	resolved := category
	if resolved == "" {
		resolved = dominantCategory(sources)
	}

	// A generation failure degrades the answer but keeps the retrieved
	// sources; only store failures surface as errors.
	answer, err := s.oracle.Generate(ctx, buildQuestionPrompt(question, sources))
	if err != nil {
		log.Printf("Warning: generation failed for question: %v", err)
		return &LegalAnswer{
			Answer:     generationFailedAnswer,
			Sources:    sources,
			Confidence: ConfidenceLow,
			Category:   resolved,
		}, nil
	}

	distances := make([]float64, len(sources))
	for i, source := range sources {
		distances[i] = source.Distance
	}

	return &LegalAnswer{
		Answer:     answer,
		Sources:    sources,
		Confidence: QAConfidence(distances),
		Category:   resolved,
	}, nil
}

func buildQuestionPrompt(question string, sources []models.IndexedArticle) string {
	var b strings.Builder
	b.WriteString("Tu esi Lietuvos teisės ekspertas. Atsakyk į klausimą remdamasis TIK pateiktomis teisės aktų nuostatomis.\n\n")
	b.WriteString("TEISĖS AKTŲ NUOSTATOS:\n\n")
	for _, source := range sources {
		fmt.Fprintf(&b, "%s, %s straipsnis (%s):\n%s\n\n",
			source.LawTitle, source.ArticleNumber, source.ArticleTitle, source.Content)
	}
	fmt.Fprintf(&b, "KLAUSIMAS: %s\n\n", question)
	b.WriteString("Atsakyk lietuviškai, aiškiai ir konkrečiai. Nurodyk, kuriais straipsniais remiesi. ")
	b.WriteString("Jei pateiktos nuostatos neatsako į klausimą, pasakyk tai atvirai.")
	return b.String()
}

// dominantCategory returns the most common source category, preferring
// the earlier (closer) source on ties.
func dominantCategory(sources []models.IndexedArticle) string {
	counts := make(map[string]int)
	best := ""
	for _, source := range sources {
		if source.Category == "" {
			continue
		}
		counts[source.Category]++
		if best == "" || counts[source.Category] > counts[best] {
			best = source.Category
		}
	}
	return best
}
