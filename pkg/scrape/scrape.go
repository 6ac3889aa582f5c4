package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/httpclient"
)

// Source produces a sequence of raw candidate quotes with provenance.
// Implementations are independent modules sharing the MakeQuote factory;
// fetch and parse failures are recovered internally (logged, zero quotes),
// never fatal to the pipeline.
type Source interface {
	// Name is the human-readable source name stamped onto records.
	Name() string

	// Scrape runs the source and returns every candidate quote found.
	Scrape(ctx context.Context) ([]domain.Quote, error)
}

// minQuoteLength is the shortest cleaned text accepted as a quote.
const minQuoteLength = 10

var whitespaceRun = regexp.MustCompile(`\s+`)

// outerQuoteCutset covers ASCII and typographic quote marks stripped from
// the edges of a raw quote.
const outerQuoteCutset = "\"'“”‘’ \t\n\r"

// CleanQuote normalizes a raw quote string for storage and display:
// outer quote marks stripped, whitespace collapsed, and common typographic
// artifacts rewritten.
func CleanQuote(text string) string {
	if text == "" {
		return ""
	}
	text = strings.Trim(text, outerQuoteCutset)
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "…", "...")
	text = strings.ReplaceAll(text, "—", " — ")
	text = strings.ReplaceAll(text, "–", " – ")
	return strings.TrimSpace(text)
}

// MakeQuote builds a standardized record from raw text, or reports false
// when the cleaned text is too short to be a real quote.
func MakeQuote(text, sourceURL, sourceName string) (domain.Quote, bool) {
	cleaned := CleanQuote(text)
	if cleaned == "" || utf8.RuneCountInString(cleaned) < minQuoteLength {
		return domain.Quote{}, false
	}
	return domain.Quote{
		Text:       cleaned,
		SourceURL:  sourceURL,
		SourceName: sourceName,
	}, true
}

// CleanAll batch-cleans quotes, dropping records whose cleaned text falls
// under the minimum length.
func CleanAll(quotes []domain.Quote) []domain.Quote {
	cleaned := make([]domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		q.Text = CleanQuote(q.Text)
		if q.Text == "" || utf8.RuneCountInString(q.Text) < minQuoteLength {
			continue
		}
		cleaned = append(cleaned, q)
	}
	return cleaned
}

// fetchDocument fetches a URL through the polite client and parses it with
// goquery.
func fetchDocument(ctx context.Context, client *httpclient.Client, url string) (*goquery.Document, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// speakerPattern builds a line-anchored regex matching dialogue lines spoken
// under any of the given speaker aliases, capturing the spoken text.
func speakerPattern(aliases []string) *regexp.Regexp {
	quoted := make([]string, len(aliases))
	for i, alias := range aliases {
		quoted[i] = regexp.QuoteMeta(alias)
	}
	return regexp.MustCompile(`(?mi)^\s*(?:` + strings.Join(quoted, "|") + `)\s*:\s*(.+)$`)
}
