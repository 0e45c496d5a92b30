package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"teisinisai-backend/models"
	"teisinisai-backend/storage"
)

// ArticleProvider supplies single articles by law identifier and number.
// FetcherService implements it.
type ArticleProvider interface {
	GetArticle(ctx context.Context, identifier, number string) (*models.Article, error)
}

// ComplaintData carries the facts of a labor complaint.
type ComplaintData struct {
	EmployeeName         string `json:"employee_name"`
	EmployerName         string `json:"employer_name"`
	Workplace            string `json:"workplace"`
	ViolationDescription string `json:"violation_description"`
	ViolationDate        string `json:"violation_date"`
}

// The Labor Code article on employee complaint rights, cited in every
// generated complaint.
const laborComplaintArticle = "52"

// GeneratorService drafts legal documents grounded in cited articles.
type GeneratorService struct {
	articles ArticleProvider
	oracle   GenerationOracle
	archive  storage.SnapshotStore
}

// GeneratorServiceOption is a functional option for GeneratorService
type GeneratorServiceOption func(*GeneratorService)

// GeneratorWithArticles sets the article provider
func GeneratorWithArticles(articles ArticleProvider) GeneratorServiceOption {
	return func(s *GeneratorService) {
		s.articles = articles
	}
}

// GeneratorWithOracle sets the text generation backend
func GeneratorWithOracle(oracle GenerationOracle) GeneratorServiceOption {
	return func(s *GeneratorService) {
		s.oracle = oracle
	}
}

// GeneratorWithArchive sets the generated document archive
func GeneratorWithArchive(archive storage.SnapshotStore) GeneratorServiceOption {
	return func(s *GeneratorService) {
		s.archive = archive
	}
}

// NewGeneratorService creates a new generator service
func NewGeneratorService(opts ...GeneratorServiceOption) *GeneratorService {
	s := &GeneratorService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateLaborComplaint drafts a formal complaint to the Lithuanian
// labor dispute commission, citing the Labor Code article on complaint
// rights when it is available. The finished document is archived best
// effort.
func (s *GeneratorService) GenerateLaborComplaint(ctx context.Context, data ComplaintData) (*models.GeneratedDocument, error) {
	if s.oracle == nil {
		return nil, errors.New("generator service not fully configured")
	}
	if strings.TrimSpace(data.EmployeeName) == "" || strings.TrimSpace(data.EmployerName) == "" {
		return nil, errors.New("employee and employer names are required")
	}
	if strings.TrimSpace(data.ViolationDescription) == "" {
		return nil, errors.New("violation description is required")
	}

	var cited *models.Article
	if s.articles != nil {
		article, err := s.articles.GetArticle(ctx, "dk", laborComplaintArticle)
		if err != nil {
			log.Printf("Warning: failed to look up Labor Code article %s: %v", laborComplaintArticle, err)
		} else {
			cited = article
		}
	}

	content, err := s.oracle.Generate(ctx, buildComplaintPrompt(data, cited))
	if err != nil {
		return nil, err
	}

	doc := &models.GeneratedDocument{
		ID:      uuid.New(),
		Type:    "labor_complaint",
		Content: content,
		Metadata: map[string]interface{}{
			"employee_name": data.EmployeeName,
			"employer_name": data.EmployerName,
		},
		CreatedAt: time.Now(),
	}

	s.archiveDocument(ctx, doc)

	return doc, nil
}

func buildComplaintPrompt(data ComplaintData, cited *models.Article) string {
	var b strings.Builder
	b.WriteString("Tu esi Lietuvos darbo teisės ekspertas. Parenk oficialų skundą darbo ginčų komisijai lietuvių kalba.\n\n")
	fmt.Fprintf(&b, "PAREIŠKĖJAS: %s\n", data.EmployeeName)
	fmt.Fprintf(&b, "DARBDAVYS: %s\n", data.EmployerName)
	if data.Workplace != "" {
		fmt.Fprintf(&b, "DARBOVIETĖ: %s\n", data.Workplace)
	}
	if data.ViolationDate != "" {
		fmt.Fprintf(&b, "PAŽEIDIMO DATA: %s\n", data.ViolationDate)
	}
	fmt.Fprintf(&b, "\nPAŽEIDIMO APRAŠYMAS:\n%s\n\n", data.ViolationDescription)
	if cited != nil {
		fmt.Fprintf(&b, "TEISINIS PAGRINDAS (Darbo kodekso %s straipsnis, %s):\n%s\n\n",
			cited.Number, cited.Title, cited.Content)
	}
	b.WriteString("Skundas turi būti oficialaus stiliaus, su įžanga, faktinių aplinkybių dėstymu, ")
	b.WriteString("teisiniu pagrindimu ir aiškiai suformuluotais reikalavimais. ")
	b.WriteString("Palik vietas datai ir parašui.")
	return b.String()
}

// archiveDocument stores the document as JSON. Archival never fails the
// generation.
func (s *GeneratorService) archiveDocument(ctx context.Context, doc *models.GeneratedDocument) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		log.Printf("Warning: failed to encode document %s: %v", doc.ID, err)
		return
	}

	key := fmt.Sprintf("documents/%s/%s.json", doc.Type, doc.ID)
	if _, err := s.archive.Put(ctx, key, bytes.NewReader(payload)); err != nil {
		log.Printf("Warning: failed to archive document %s: %v", doc.ID, err)
	}
}
