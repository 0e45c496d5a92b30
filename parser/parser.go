// Package parser splits raw Lithuanian statute text into discrete
// articles using the "<number> straipsnis. <title>" heading convention.
package parser

import (
	"regexp"
	"strings"

	"teisinisai-backend/models"
)

var (
	// Codes like the Civil Code number articles "1.1 straipsnis",
	// "6.217 straipsnis". This pattern must run before the plain one:
	// the plain pattern would otherwise lock onto the minor number of a
	// dotted heading.
	dottedHeading = regexp.MustCompile(`(?mi)^[ \t]*(\d+\.\d+)\s+straipsnis[.\s]+([^\n]+)`)

	// Codes like the Labor Code use plain integers: "52 straipsnis".
	plainHeading = regexp.MustCompile(`(?mi)^[ \t]*(\d+)\s+straipsnis[.\s]+([^\n]+)`)
)

const (
	defaultMinContentLen  = 50
	defaultMaxContentLen  = 2000
	defaultMaxTailCapture = 3000
)

// Parser extracts articles from statute text. Patterns are tried in
// order; the first one that recognizes any heading wins. Bodies shorter
// than MinContentLen are dropped as heading-only noise, and the final
// article (which has no terminating heading) absorbs at most
// MaxTailCapture characters.
type Parser struct {
	Patterns       []*regexp.Regexp
	MinContentLen  int
	MaxContentLen  int
	MaxTailCapture int
}

// New returns a parser with the default heading patterns and limits.
func New() *Parser {
	return &Parser{
		Patterns:       []*regexp.Regexp{dottedHeading, plainHeading},
		MinContentLen:  defaultMinContentLen,
		MaxContentLen:  defaultMaxContentLen,
		MaxTailCapture: defaultMaxTailCapture,
	}
}

// Parse splits fullText into articles in source order. A zero-article
// result is not an error; callers should treat it as a parse-quality
// warning and may still cache the law.
func (p *Parser) Parse(fullText string) []models.Article {
	for _, pattern := range p.Patterns {
		articles := p.parseWith(pattern, fullText)
		if len(articles) > 0 {
			return articles
		}
	}
	return nil
}

func (p *Parser) parseWith(pattern *regexp.Regexp, fullText string) []models.Article {
	matches := pattern.FindAllStringSubmatchIndex(fullText, -1)
	if len(matches) == 0 {
		return nil
	}

	articles := make([]models.Article, 0, len(matches))
	for i, m := range matches {
		number := fullText[m[2]:m[3]]
		title := strings.TrimSpace(fullText[m[4]:m[5]])

		start := m[1]
		var end int
		if i < len(matches)-1 {
			end = matches[i+1][0]
		} else {
			// The last article has no terminating heading; cap what it
			// can absorb from trailing content. Keep the cut on a rune
			// boundary.
			end = start + p.MaxTailCapture
			if end > len(fullText) {
				end = len(fullText)
			}
			for end > start && end < len(fullText) && !isRuneStart(fullText[end]) {
				end--
			}
		}

		content := strings.TrimSpace(fullText[start:end])
		content = truncateRunes(content, p.MaxContentLen)

		// A heading with next to no body is usually a stray match in
		// scraped text (tables of contents, amendment lists).
		if len(content) < p.MinContentLen {
			continue
		}

		articles = append(articles, models.Article{
			Number:  number,
			Title:   title,
			Content: content,
		})
	}

	return articles
}

// truncateRunes limits s to max bytes without splitting a multibyte
// rune, marking the cut with an ellipsis.
func truncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
