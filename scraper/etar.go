// Package scraper fetches Lithuanian legal acts from the e-TAR portal
// (www.e-tar.lt) and extracts their plain text.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"teisinisai-backend/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	defaultBaseURL = "https://www.e-tar.lt"
	fetchTimeout   = 30 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// A real act body is long; shorter extractions mean the selector hit
	// navigation chrome instead of the document.
	minContentChars = 5000
)

// contentSelectors are tried in order against the act page. e-TAR has
// shipped several markup variants over the years.
var contentSelectors = []string{
	"div.legal-act-content",
	"div.document-content",
	"div#documentContent",
	"div.act-text",
}

var collapseBlankLines = regexp.MustCompile(`\n{3,}`)

// ETARClient fetches laws from e-TAR over HTTP. It implements the
// service.LawSource collaborator.
type ETARClient struct {
	baseURL string
	client  *http.Client
}

// NewETARClient creates an e-TAR client with a bounded request timeout.
func NewETARClient() *ETARClient {
	return &ETARClient{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

// FetchLawByID downloads the consolidated version of a legal act by its
// TAIS id and returns its title and extracted plain text. Network
// failures and non-200 responses surface as errors; the orchestrator
// degrades them to an absent law.
func (c *ETARClient) FetchLawByID(ctx context.Context, taisID string) (*models.FetchedLaw, error) {
	if !strings.HasPrefix(taisID, "TAIS.") {
		taisID = "TAIS." + taisID
	}

	url := fmt.Sprintf("%s/portal/lt/legalAct/%s/asr", c.baseURL, taisID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", taisID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("e-TAR returned status %d for %s", resp.StatusCode, taisID)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse e-TAR response: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = taisID
	}

	fullText := extractText(doc)
	if fullText == "" {
		return nil, fmt.Errorf("no text content extracted for %s", taisID)
	}

	return &models.FetchedLaw{
		ID:        taisID,
		Title:     title,
		URL:       url,
		FullText:  fullText,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// extractText locates the act body via the selector cascade, falling
// back to the whole page body, and flattens it to newline-separated
// plain text with blank runs collapsed.
func extractText(doc *goquery.Document) string {
	var content *goquery.Selection
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && len(strings.TrimSpace(sel.Text())) > minContentChars {
			content = sel
			break
		}
	}
	if content == nil {
		content = doc.Find("body").First()
	}
	if content.Length() == 0 {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range content.Nodes {
		walk(node)
	}

	text := strings.TrimSpace(b.String())
	return collapseBlankLines.ReplaceAllString(text, "\n\n")
}
