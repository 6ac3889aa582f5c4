package scrape

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/httpclient"
)

// CuratedPage describes one curated quote page and how to parse it.
type CuratedPage struct {
	URL    string
	Name   string
	Parser string // "generic" or "goodreads"
}

// CuratedSource scrapes pages that carry pre-compiled lists of quotes
// already attributed to the character, so extraction is mostly pattern
// matching over page text.
type CuratedSource struct {
	client    *httpclient.Client
	character string
	pages     []CuratedPage
	logger    *slog.Logger
}

// NewCuratedSource builds a curated-page source. character is the surname
// quotes are attributed to on these pages (e.g. "Reddington").
func NewCuratedSource(client *httpclient.Client, character string, pages []CuratedPage, logger *slog.Logger) *CuratedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CuratedSource{client: client, character: character, pages: pages, logger: logger}
}

func (s *CuratedSource) Name() string { return "CuratedPages" }

// Scrape walks every configured page. Pages that fail to fetch or parse are
// logged and skipped; the source never fails outright.
func (s *CuratedSource) Scrape(ctx context.Context) ([]domain.Quote, error) {
	var all []domain.Quote

	for _, page := range s.pages {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		doc, err := fetchDocument(ctx, s.client, page.URL)
		if err != nil {
			s.logger.Warn("curated page fetch failed", "source", page.Name, "url", page.URL, "error", err)
			continue
		}

		var quotes []domain.Quote
		switch page.Parser {
		case "goodreads":
			quotes = s.parseGoodreads(doc, page)
		default:
			quotes = s.parseGenericAttributed(doc, page)
		}

		s.logger.Info("curated page scraped", "source", page.Name, "quotes", len(quotes))
		all = append(all, quotes...)
	}

	return all, nil
}

// attributionPattern matches `"Quote text" – Character` with at least 15
// characters of quote body, tolerating typographic quotes and dash variants.
func (s *CuratedSource) attributionPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)["\x{201c}]([^"\x{201d}]{15,})["\x{201d}]\s*[-\x{2013}\x{2014}]+\s*(?:\w+\s+)?` + regexp.QuoteMeta(s.character))
}

// parseGenericAttributed handles sites with numbered `"Quote" – Character`
// lists. It tries the attribution pattern over the raw page text, then over
// the readability-extracted article body, then falls back to blockquotes.
func (s *CuratedSource) parseGenericAttributed(doc *goquery.Document, page CuratedPage) []domain.Quote {
	pattern := s.attributionPattern()

	extract := func(text string) []domain.Quote {
		var quotes []domain.Quote
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if q, ok := MakeQuote(m[1], page.URL, page.Name); ok {
				quotes = append(quotes, q)
			}
		}
		return quotes
	}

	quotes := extract(doc.Text())

	if len(quotes) == 0 {
		// Boilerplate-heavy pages can bury the list; retry against the
		// readability-extracted article body.
		if html, err := doc.Html(); err == nil {
			if article, err := readability.FromReader(strings.NewReader(html), nil); err == nil {
				quotes = extract(article.TextContent)
			}
		}
	}

	if len(quotes) == 0 {
		trailer := regexp.MustCompile(`(?i)\s*[-\x{2013}\x{2014}]+\s*(\w+\s+)?` + regexp.QuoteMeta(s.character) + `.*$`)
		doc.Find("blockquote").Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if !strings.Contains(strings.ToLower(text), strings.ToLower(s.character)) {
				return
			}
			if q, ok := MakeQuote(trailer.ReplaceAllString(text, ""), page.URL, page.Name); ok {
				quotes = append(quotes, q)
			}
		})
	}

	return quotes
}

// parseGoodreads handles Goodreads tag pages, where each quote sits in a
// div.quoteText wrapped in typographic quotes with the author after a dash.
func (s *CuratedSource) parseGoodreads(doc *goquery.Document, page CuratedPage) []domain.Quote {
	quoted := regexp.MustCompile(`[\x{201c}"](.*?)[\x{201d}"]`)
	var quotes []domain.Quote

	doc.Find("div.quoteText").Each(func(_ int, sel *goquery.Selection) {
		fullText := strings.Join(strings.Fields(sel.Text()), " ")
		if !strings.Contains(fullText, s.character) {
			return
		}

		if m := quoted.FindStringSubmatch(fullText); m != nil {
			if q, ok := MakeQuote(m[1], page.URL, page.Name); ok {
				quotes = append(quotes, q)
			}
			return
		}

		// Fallback: everything before the attribution dash.
		if parts := regexp.MustCompile(`[-\x{2013}\x{2014}]`).Split(fullText, 2); len(parts) > 1 {
			if q, ok := MakeQuote(parts[0], page.URL, page.Name); ok {
				quotes = append(quotes, q)
			}
		}
	})

	return quotes
}

// DefaultCuratedPages are the curated quote pages the collector ships with.
func DefaultCuratedPages() []CuratedPage {
	return []CuratedPage{
		{URL: "https://everydaypower.com/raymond-reddington-quotes/", Name: "EverydayPower", Parser: "generic"},
		{URL: "https://thehabitstacker.com/raymond-reddington-quotes/", Name: "HabitStacker", Parser: "generic"},
		{URL: "https://www.goodreads.com/quotes/tag/raymond-reddington", Name: "Goodreads", Parser: "goodreads"},
	}
}

var _ Source = (*CuratedSource)(nil)
