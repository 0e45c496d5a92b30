package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"teisinisai-backend/models"
)

func indexedLaws(n int) []models.IndexedArticle {
	laws := make([]models.IndexedArticle, n)
	for i := range laws {
		laws[i] = models.IndexedArticle{
			ID:            fmt.Sprintf("TAIS.245495_art_%d", i+1),
			LawID:         "TAIS.245495",
			LawTitle:      "Darbo kodeksas",
			ArticleNumber: fmt.Sprintf("%d", i+1),
			Category:      "darbo_teisė",
			Distance:      0.2,
		}
	}
	return laws
}

func TestAnalyzeContract(t *testing.T) {
	oracle := &fakeOracle{response: `{
		"summary": "Darbo sutartis tarp šalių.",
		"risks": [{"risk": "Nenustatytas bandomasis laikotarpis", "severity": "medium", "explanation": "paaiškinimas"}],
		"missing_clauses": ["konfidencialumo nuostata"],
		"recommendations": ["aptarti bandomąjį laikotarpį"]
	}`}
	s := NewAnalyzerService(
		AnalyzerWithRetriever(&fakeRetriever{results: indexedLaws(2)}),
		AnalyzerWithOracle(oracle),
	)

	analysis, err := s.AnalyzeContract(context.Background(), "Darbo sutarties tekstas", "employment")
	if err != nil {
		t.Fatalf("AnalyzeContract failed: %v", err)
	}

	if analysis.ContractType != "employment" {
		t.Errorf("unexpected contract type %q", analysis.ContractType)
	}
	if len(analysis.Risks) != 1 || len(analysis.MissingClauses) != 1 || len(analysis.Recommendations) != 1 {
		t.Errorf("analysis fields not parsed: %+v", analysis)
	}
	if len(analysis.RelevantLaws) != 2 {
		t.Errorf("expected 2 relevant laws, got %d", len(analysis.RelevantLaws))
	}
	if !strings.Contains(oracle.prompts[0], "Darbo sutarties tekstas") {
		t.Errorf("prompt missing contract text")
	}
}

// Confidence blends retrieved laws with risks plus recommendations, so
// an analysis producing only recommendations still counts as evidence.
func TestAnalyzeContractConfidenceCountsRecommendations(t *testing.T) {
	oracle := &fakeOracle{response: `{
		"summary": "Santrauka.",
		"risks": [],
		"missing_clauses": [],
		"recommendations": ["pirma", "antra", "trečia", "ketvirta", "penkta"]
	}`}
	s := NewAnalyzerService(
		AnalyzerWithRetriever(&fakeRetriever{results: indexedLaws(5)}),
		AnalyzerWithOracle(oracle),
	)

	analysis, err := s.AnalyzeContract(context.Background(), "Sutarties tekstas", "general")
	if err != nil {
		t.Fatalf("AnalyzeContract failed: %v", err)
	}

	if analysis.Confidence != ConfidenceHigh {
		t.Errorf("five laws and five recommendations must score high, got %q", analysis.Confidence)
	}
}

func TestAnalyzeContractGenerationFailureDegrades(t *testing.T) {
	s := NewAnalyzerService(
		AnalyzerWithRetriever(&fakeRetriever{results: indexedLaws(3)}),
		AnalyzerWithOracle(&fakeOracle{err: errors.New("quota exceeded")}),
	)

	analysis, err := s.AnalyzeContract(context.Background(), "Sutarties tekstas", "general")
	if err != nil {
		t.Fatalf("generation failure must not surface as error, got %v", err)
	}

	if len(analysis.RelevantLaws) != 3 {
		t.Errorf("degraded analysis must keep retrieved laws, got %d", len(analysis.RelevantLaws))
	}
	if analysis.Confidence != ConfidenceLow {
		t.Errorf("expected low confidence on degraded analysis, got %q", analysis.Confidence)
	}
	if !strings.Contains(analysis.Summary, "Atsiprašau") {
		t.Errorf("expected apology summary, got %q", analysis.Summary)
	}
}

func TestAnalyzeContractMalformedResponseDegrades(t *testing.T) {
	s := NewAnalyzerService(
		AnalyzerWithRetriever(&fakeRetriever{results: indexedLaws(1)}),
		AnalyzerWithOracle(&fakeOracle{response: "čia ne JSON"}),
	)

	analysis, err := s.AnalyzeContract(context.Background(), "Sutarties tekstas", "general")
	if err != nil {
		t.Fatalf("malformed response must not surface as error, got %v", err)
	}
	if analysis.Confidence != ConfidenceLow {
		t.Errorf("expected low confidence, got %q", analysis.Confidence)
	}
	if len(analysis.RelevantLaws) != 1 {
		t.Errorf("degraded analysis must keep retrieved laws, got %d", len(analysis.RelevantLaws))
	}
}

func TestAnalyzeContractEmptyText(t *testing.T) {
	s := NewAnalyzerService(
		AnalyzerWithRetriever(&fakeRetriever{}),
		AnalyzerWithOracle(&fakeOracle{response: "{}"}),
	)

	if _, err := s.AnalyzeContract(context.Background(), "   ", "general"); err == nil {
		t.Fatal("expected error for empty contract text")
	}
}

func TestAnalyzeContractStripsFences(t *testing.T) {
	oracle := &fakeOracle{response: "```json\n{\"summary\": \"Santrauka.\", \"risks\": [], \"missing_clauses\": [], \"recommendations\": []}\n```"}
	s := NewAnalyzerService(
		AnalyzerWithRetriever(&fakeRetriever{}),
		AnalyzerWithOracle(oracle),
	)

	analysis, err := s.AnalyzeContract(context.Background(), "Sutarties tekstas", "general")
	if err != nil {
		t.Fatalf("AnalyzeContract failed: %v", err)
	}
	if analysis.Summary != "Santrauka." {
		t.Errorf("fenced JSON not parsed, got summary %q", analysis.Summary)
	}
}
