package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"teisinisai-backend/models"
)

type fakeRetriever struct {
	results []models.IndexedArticle
}

func (f *fakeRetriever) SearchRelevant(ctx context.Context, query string, topK int, category string) ([]models.IndexedArticle, error) {
	return f.results, nil
}

func (f *fakeRetriever) FindRelevantArticles(ctx context.Context, text string, topK int, category string) ([]models.IndexedArticle, error) {
	return f.results, nil
}

type fakeOracle struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeOracle) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func closeSources() []models.IndexedArticle {
	return []models.IndexedArticle{
		{
			ID:            "TAIS.245495_art_52",
			LawID:         "TAIS.245495",
			LawTitle:      "Darbo kodeksas",
			ArticleNumber: "52",
			ArticleTitle:  "Nuotolinis darbas",
			Category:      "darbo_teisė",
			Content:       "Nuotolinio darbo tvarką nustato šalių susitarimas.",
			Distance:      0.2,
		},
		{
			ID:            "TAIS.245495_art_1",
			LawID:         "TAIS.245495",
			LawTitle:      "Darbo kodeksas",
			ArticleNumber: "1",
			ArticleTitle:  "Paskirtis",
			Category:      "darbo_teisė",
			Content:       "Kodeksas reglamentuoja darbo santykius.",
			Distance:      0.25,
		},
	}
}

func TestAnswerQuestion(t *testing.T) {
	oracle := &fakeOracle{response: "Pagal Darbo kodekso 52 straipsnį nuotolinis darbas galimas."}
	s := NewAdvisorService(
		AdvisorWithRetriever(&fakeRetriever{results: closeSources()}),
		AdvisorWithOracle(oracle),
	)

	answer, err := s.AnswerQuestion(context.Background(), "Ar galiu dirbti nuotoliniu būdu?", "")
	if err != nil {
		t.Fatalf("AnswerQuestion failed: %v", err)
	}

	if answer.Answer != oracle.response {
		t.Errorf("unexpected answer %q", answer.Answer)
	}
	if len(answer.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(answer.Sources))
	}
	if answer.Confidence != ConfidenceHigh {
		t.Errorf("expected high confidence for close sources, got %q", answer.Confidence)
	}
	if answer.Category != "darbo_teisė" {
		t.Errorf("expected detected category darbo_teisė, got %q", answer.Category)
	}

	prompt := oracle.prompts[0]
	if !strings.Contains(prompt, "52 straipsnis") {
		t.Errorf("prompt missing cited article: %q", prompt)
	}
	if !strings.Contains(prompt, "Ar galiu dirbti nuotoliniu būdu?") {
		t.Errorf("prompt missing question: %q", prompt)
	}
}

func TestAnswerQuestionNoSources(t *testing.T) {
	oracle := &fakeOracle{response: "neturėtų būti kviesta"}
	s := NewAdvisorService(
		AdvisorWithRetriever(&fakeRetriever{}),
		AdvisorWithOracle(oracle),
	)

	answer, err := s.AnswerQuestion(context.Background(), "Klausimas be atitikmenų", "")
	if err != nil {
		t.Fatalf("AnswerQuestion failed: %v", err)
	}

	if oracle.calls != 0 {
		t.Errorf("oracle must not be called without sources, got %d calls", oracle.calls)
	}
	if answer.Confidence != ConfidenceLow {
		t.Errorf("expected low confidence, got %q", answer.Confidence)
	}
	if !strings.Contains(answer.Answer, "Atsiprašau") {
		t.Errorf("expected apology answer, got %q", answer.Answer)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(answer.Sources))
	}
}

func TestAnswerQuestionGenerationFailureDegrades(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("deadline exceeded")}
	s := NewAdvisorService(
		AdvisorWithRetriever(&fakeRetriever{results: closeSources()}),
		AdvisorWithOracle(oracle),
	)

	answer, err := s.AnswerQuestion(context.Background(), "Ar galiu dirbti nuotoliniu būdu?", "")
	if err != nil {
		t.Fatalf("generation failure must not surface as error, got %v", err)
	}

	if len(answer.Sources) != 2 {
		t.Errorf("degraded answer must keep retrieved sources, got %d", len(answer.Sources))
	}
	if answer.Confidence != ConfidenceLow {
		t.Errorf("expected low confidence on degraded answer, got %q", answer.Confidence)
	}
	if answer.Category != "darbo_teisė" {
		t.Errorf("degraded answer lost detected category, got %q", answer.Category)
	}
	if !strings.Contains(answer.Answer, "Atsiprašau") {
		t.Errorf("expected apology answer, got %q", answer.Answer)
	}
}

func TestAnswerQuestionKeepsRequestedCategory(t *testing.T) {
	s := NewAdvisorService(
		AdvisorWithRetriever(&fakeRetriever{results: closeSources()}),
		AdvisorWithOracle(&fakeOracle{response: "atsakymas"}),
	)

	answer, err := s.AnswerQuestion(context.Background(), "klausimas", "mokesčių_teisė")
	if err != nil {
		t.Fatalf("AnswerQuestion failed: %v", err)
	}
	if answer.Category != "mokesčių_teisė" {
		t.Errorf("requested category overridden, got %q", answer.Category)
	}
}

func TestDominantCategory(t *testing.T) {
	sources := []models.IndexedArticle{
		{Category: "darbo_teisė"},
		{Category: "civilinė_teisė"},
		{Category: "civilinė_teisė"},
		{Category: ""},
	}

	if got := dominantCategory(sources); got != "civilinė_teisė" {
		t.Errorf("dominantCategory = %q", got)
	}
	if got := dominantCategory(nil); got != "" {
		t.Errorf("expected empty for no sources, got %q", got)
	}
}
