package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"teisinisai-backend/models"
)

// Risk is a single issue found in an analyzed contract.
type Risk struct {
	Risk            string `json:"risk"`
	Severity        string `json:"severity"`
	Explanation     string `json:"explanation"`
	RelevantArticle string `json:"relevant_article,omitempty"`
}

// ContractAnalysis is the structured result of a contract review.
type ContractAnalysis struct {
	Summary         string                  `json:"summary"`
	ContractType    string                  `json:"contract_type"`
	Risks           []Risk                  `json:"risks"`
	MissingClauses  []string                `json:"missing_clauses"`
	Recommendations []string                `json:"recommendations"`
	RelevantLaws    []models.IndexedArticle `json:"relevant_laws"`
	Confidence      string                  `json:"confidence"`
}

// contractCategories maps the public contract type names to index
// categories. Unknown types analyze against the whole index.
var contractCategories = map[string]string{
	"employment":  "darbo_teisė",
	"real_estate": "nekilnojamasis_turtas",
	"family":      "šeimos_teisė",
	"tax":         "mokesčių_teisė",
	"general":     "",
}

// AnalyzerService reviews contract text against the indexed legislation.
type AnalyzerService struct {
	retriever ArticleRetriever
	oracle    GenerationOracle
}

// AnalyzerServiceOption is a functional option for AnalyzerService
type AnalyzerServiceOption func(*AnalyzerService)

// AnalyzerWithRetriever sets the article retriever
func AnalyzerWithRetriever(retriever ArticleRetriever) AnalyzerServiceOption {
	return func(s *AnalyzerService) {
		s.retriever = retriever
	}
}

// AnalyzerWithOracle sets the text generation backend
func AnalyzerWithOracle(oracle GenerationOracle) AnalyzerServiceOption {
	return func(s *AnalyzerService) {
		s.oracle = oracle
	}
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(opts ...AnalyzerServiceOption) *AnalyzerService {
	s := &AnalyzerService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeContract retrieves the legislation nearest the contract's
// opening passage, asks the oracle for a structured review, and scores
// confidence from the amount of retrieved law and found issues.
func (s *AnalyzerService) AnalyzeContract(ctx context.Context, text, contractType string) (*ContractAnalysis, error) {
	if s.retriever == nil || s.oracle == nil {
		return nil, errors.New("analyzer service not fully configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty contract text")
	}

	category, ok := contractCategories[contractType]
	if !ok {
		category = ""
	}

	relevant, err := s.retriever.FindRelevantArticles(ctx, text, defaultTopK, category)
	if err != nil {
		return nil, err
	}

	// Generation and response-shape failures degrade to a default
	// analysis that still carries the retrieved laws.
	raw, err := s.oracle.Generate(ctx, buildAnalysisPrompt(text, contractType, relevant))
	if err != nil {
		log.Printf("Warning: analysis generation failed: %v", err)
		return degradedAnalysis(contractType, relevant), nil
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		log.Printf("Warning: %v", err)
		return degradedAnalysis(contractType, relevant), nil
	}

	analysis.ContractType = contractType
	analysis.RelevantLaws = relevant
	findings := len(analysis.Risks) + len(analysis.Recommendations)
	analysis.Confidence = AnalysisConfidence(len(relevant), findings)

	return analysis, nil
}

func buildAnalysisPrompt(text, contractType string, relevant []models.IndexedArticle) string {
	var b strings.Builder
	b.WriteString("Tu esi Lietuvos teisės ekspertas. Išanalizuok pateiktą sutartį pagal Lietuvos teisės aktus.\n\n")
	if len(relevant) > 0 {
		b.WriteString("SUSIJUSIOS TEISĖS AKTŲ NUOSTATOS:\n\n")
		for _, article := range relevant {
			fmt.Fprintf(&b, "%s, %s straipsnis (%s):\n%s\n\n",
				article.LawTitle, article.ArticleNumber, article.ArticleTitle, article.Content)
		}
	}
	fmt.Fprintf(&b, "SUTARTIES TIPAS: %s\n\nSUTARTIES TEKSTAS:\n%s\n\n", contractType, text)
	b.WriteString("Atsakyk TIK JSON formatu be jokio papildomo teksto:\n")
	b.WriteString(`{
  "summary": "trumpa sutarties santrauka lietuviškai",
  "risks": [
    {"risk": "rizikos pavadinimas", "severity": "high|medium|low", "explanation": "paaiškinimas", "relevant_article": "straipsnis, jei taikoma"}
  ],
  "missing_clauses": ["trūkstama nuostata"],
  "recommendations": ["rekomendacija"]
}`)
	return b.String()
}

func degradedAnalysis(contractType string, relevant []models.IndexedArticle) *ContractAnalysis {
	return &ContractAnalysis{
		Summary: "Atsiprašau, šiuo metu nepavyko atlikti išsamios sutarties analizės. " +
			"Peržiūrėkite žemiau pateiktas susijusias teisės aktų nuostatas.",
		ContractType: contractType,
		RelevantLaws: relevant,
		Confidence:   ConfidenceLow,
	}
}

func parseAnalysis(raw string) (*ContractAnalysis, error) {
	var analysis ContractAnalysis
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &analysis, nil
}
