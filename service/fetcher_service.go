package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"teisinisai-backend/models"
	"teisinisai-backend/parser"
	"teisinisai-backend/storage"
)

// LawCache is the TTL'd law store consumed by the orchestrator.
type LawCache interface {
	GetLaw(ctx context.Context, lawID string) (*models.Law, error)
	PutLaw(ctx context.Context, law *models.Law, ttl time.Duration) error
	Invalidate(ctx context.Context, lawID string) error
	PurgeExpired(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*models.CacheStats, error)
}

// ArticleCache is the per-article store consumed by the orchestrator.
type ArticleCache interface {
	GetArticle(ctx context.Context, lawID, number string) (*models.Article, error)
	PutArticlesBatch(ctx context.Context, articles []models.Article) error
}

// LawSource is the external text source collaborator (e-TAR scraper).
// Fetch failures surface as errors here; the orchestrator degrades them
// to an absent law instead of propagating.
type LawSource interface {
	FetchLawByID(ctx context.Context, lawID string) (*models.FetchedLaw, error)
}

// DefaultLawAliases maps common Lithuanian law names to TAIS registry ids.
// The table is installed at construction and never mutated afterwards.
var DefaultLawAliases = map[string]string{
	"dk":                 "TAIS.245495",
	"darbo kodeksas":     "TAIS.245495",
	"darbo_kodeksas":     "TAIS.245495",
	"ck":                 "TAIS.107687",
	"civilinis kodeksas": "TAIS.107687",
	"civilinis_kodeksas": "TAIS.107687",
}

const defaultCacheTTL = 24 * time.Hour

var numericID = regexp.MustCompile(`^\d+$`)

// ScoredArticle is a lexical search hit from a single law.
type ScoredArticle struct {
	models.Article
	Score float64 `json:"score"`
}

// FetcherService is the retrieval orchestrator: it resolves law
// identifiers, keeps the cache warm, and is the only writer to the law
// and article stores.
type FetcherService struct {
	lawCache     LawCache
	articleCache ArticleCache
	source       LawSource
	snapshots    storage.SnapshotStore
	parser       *parser.Parser
	aliases      map[string]string
	ttl          time.Duration
}

// FetcherServiceOption is a functional option for FetcherService
type FetcherServiceOption func(*FetcherService)

// FetcherWithLawCache sets the law cache
func FetcherWithLawCache(cache LawCache) FetcherServiceOption {
	return func(s *FetcherService) {
		s.lawCache = cache
	}
}

// FetcherWithArticleCache sets the article cache
func FetcherWithArticleCache(cache ArticleCache) FetcherServiceOption {
	return func(s *FetcherService) {
		s.articleCache = cache
	}
}

// FetcherWithSource sets the external law text source
func FetcherWithSource(source LawSource) FetcherServiceOption {
	return func(s *FetcherService) {
		s.source = source
	}
}

// FetcherWithSnapshots sets the raw-text snapshot store
func FetcherWithSnapshots(snapshots storage.SnapshotStore) FetcherServiceOption {
	return func(s *FetcherService) {
		s.snapshots = snapshots
	}
}

// FetcherWithParser sets the article parser
func FetcherWithParser(p *parser.Parser) FetcherServiceOption {
	return func(s *FetcherService) {
		s.parser = p
	}
}

// FetcherWithAliases replaces the default law alias table
func FetcherWithAliases(aliases map[string]string) FetcherServiceOption {
	return func(s *FetcherService) {
		s.aliases = aliases
	}
}

// FetcherWithTTL sets the cache TTL for fetched laws
func FetcherWithTTL(ttl time.Duration) FetcherServiceOption {
	return func(s *FetcherService) {
		s.ttl = ttl
	}
}

// NewFetcherService creates a new retrieval orchestrator
func NewFetcherService(opts ...FetcherServiceOption) *FetcherService {
	s := &FetcherService{
		parser:  parser.New(),
		aliases: DefaultLawAliases,
		ttl:     defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveIdentifier maps a law name or alias to its canonical TAIS id.
// Canonical ids pass through unchanged and bare registry numbers gain
// the TAIS prefix. Returns "" for unknown names.
func (s *FetcherService) ResolveIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.HasPrefix(identifier, "TAIS.") {
		return identifier
	}
	if numericID.MatchString(identifier) {
		return "TAIS." + identifier
	}
	return s.aliases[strings.ToLower(identifier)]
}

// GetLaw returns the law for an identifier, serving from cache while
// fresh and fetching from the source otherwise. A failed fetch yields
// (nil, nil); only store failures surface as errors.
func (s *FetcherService) GetLaw(ctx context.Context, identifier string, forceRefresh bool) (*models.Law, error) {
	if s.lawCache == nil {
		return nil, errors.New("law cache not set")
	}
	if s.articleCache == nil {
		return nil, errors.New("article cache not set")
	}
	if s.source == nil {
		return nil, errors.New("law source not set")
	}

	lawID := s.ResolveIdentifier(identifier)
	if lawID == "" {
		log.Printf("Warning: unknown law identifier %q", identifier)
		return nil, nil
	}

	if !forceRefresh {
		law, err := s.lawCache.GetLaw(ctx, lawID)
		if err != nil {
			return nil, err
		}
		if law != nil {
			return law, nil
		}
	}

	fetched, err := s.source.FetchLawByID(ctx, lawID)
	if err != nil {
		log.Printf("Warning: failed to fetch %s: %v", lawID, err)
		return nil, nil
	}
	if fetched == nil {
		return nil, nil
	}

	articles := s.parser.Parse(fetched.FullText)
	if len(articles) == 0 {
		// Parse-quality warning, not fatal; the law is cached anyway so
		// repeated fetches do not hammer the source.
		log.Printf("Warning: no articles parsed from %s (%d chars)", lawID, len(fetched.FullText))
	}

	law := &models.Law{
		ID:       lawID,
		Title:    fetched.Title,
		FullText: fetched.FullText,
		Version:  fetched.FetchedAt.Format(time.RFC3339),
		Metadata: map[string]interface{}{"url": fetched.URL},
	}

	if err := s.lawCache.PutLaw(ctx, law, s.ttl); err != nil {
		return nil, err
	}

	if len(articles) > 0 {
		for i := range articles {
			articles[i].LawID = lawID
		}
		if err := s.articleCache.PutArticlesBatch(ctx, articles); err != nil {
			return nil, err
		}
	}

	s.saveSnapshot(ctx, law)

	return law, nil
}

// saveSnapshot archives the raw fetched text. Snapshot storage is best
// effort and never fails the fetch.
func (s *FetcherService) saveSnapshot(ctx context.Context, law *models.Law) {
	if s.snapshots == nil {
		return
	}

	key := fmt.Sprintf("laws/%s/%s.txt", law.ID, law.Version)
	if _, err := s.snapshots.Put(ctx, key, strings.NewReader(law.FullText)); err != nil {
		log.Printf("Warning: failed to save snapshot for %s: %v", law.ID, err)
	}
}

// GetArticle returns one article of a law. On a cache miss it fetches
// the whole law (which seeds the article cache) and retries the lookup
// exactly once.
func (s *FetcherService) GetArticle(ctx context.Context, identifier, number string) (*models.Article, error) {
	if s.articleCache == nil {
		return nil, errors.New("article cache not set")
	}

	lawID := s.ResolveIdentifier(identifier)
	if lawID == "" {
		return nil, nil
	}

	article, err := s.articleCache.GetArticle(ctx, lawID, number)
	if err != nil {
		return nil, err
	}
	if article != nil {
		return article, nil
	}

	law, err := s.GetLaw(ctx, lawID, false)
	if err != nil {
		return nil, err
	}
	if law == nil {
		return nil, nil
	}

	return s.articleCache.GetArticle(ctx, lawID, number)
}

// SearchArticles scores the articles of one law by lexical overlap with
// the query: the fraction of query words present in the article's title
// and content. Zero-score articles are dropped, results are ranked
// descending, and ties keep parse order. This is the lightweight
// single-law fallback; global semantic search lives in IndexService.
func (s *FetcherService) SearchArticles(ctx context.Context, query, identifier string, topK int) ([]ScoredArticle, error) {
	if identifier == "" {
		return nil, nil
	}

	law, err := s.GetLaw(ctx, identifier, false)
	if err != nil {
		return nil, err
	}
	if law == nil {
		return nil, nil
	}

	articles := s.parser.Parse(law.FullText)

	var scored []ScoredArticle
	for _, article := range articles {
		article.LawID = law.ID
		score := lexicalScore(query, article)
		if score > 0 {
			scored = append(scored, ScoredArticle{Article: article, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}

	return scored, nil
}

// lexicalScore returns the fraction of query words found in the
// article's title plus content.
func lexicalScore(query string, article models.Article) float64 {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0
	}

	text := strings.ToLower(article.Title + " " + article.Content)

	matches := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			matches++
		}
	}

	return float64(matches) / float64(len(words))
}

// Invalidate forces the identified law stale so the next GetLaw refetches.
func (s *FetcherService) Invalidate(ctx context.Context, identifier string) error {
	if s.lawCache == nil {
		return errors.New("law cache not set")
	}

	lawID := s.ResolveIdentifier(identifier)
	if lawID == "" {
		return nil
	}

	return s.lawCache.Invalidate(ctx, lawID)
}

// PurgeExpired removes expired cache rows and reports how many went away.
func (s *FetcherService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.lawCache == nil {
		return 0, errors.New("law cache not set")
	}
	return s.lawCache.PurgeExpired(ctx)
}

// Stats reports cache statistics.
func (s *FetcherService) Stats(ctx context.Context) (*models.CacheStats, error) {
	if s.lawCache == nil {
		return nil, errors.New("law cache not set")
	}
	return s.lawCache.Stats(ctx)
}
