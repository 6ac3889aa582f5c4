package scrape

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/httpclient"
)

var seasonHeaderPattern = regexp.MustCompile(`(?i)Season\s+(\d+)`)

// WikiquoteSource scrapes a show's Wikiquote page. Wikiquote organizes TV
// shows by season headers with dialogue in definition lists and standalone
// quotes in unordered lists; the season context of each quote is tracked
// while walking the page in document order.
type WikiquoteSource struct {
	client  *httpclient.Client
	url     string
	speaker *regexp.Regexp
	surname string
	logger  *slog.Logger
}

// NewWikiquoteSource builds a Wikiquote source for the given page URL.
// aliases are the names the character speaks under in dialogue lists
// (e.g. "Red", "Reddington"); surname is used for standalone attribution.
func NewWikiquoteSource(client *httpclient.Client, url string, aliases []string, surname string, logger *slog.Logger) *WikiquoteSource {
	if logger == nil {
		logger = slog.Default()
	}
	quoted := make([]string, len(aliases))
	for i, a := range aliases {
		quoted[i] = regexp.QuoteMeta(a)
	}
	speaker := regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)\s*:`)
	return &WikiquoteSource{client: client, url: url, speaker: speaker, surname: surname, logger: logger}
}

func (s *WikiquoteSource) Name() string { return "Wikiquote" }

func (s *WikiquoteSource) Scrape(ctx context.Context) ([]domain.Quote, error) {
	doc, err := fetchDocument(ctx, s.client, s.url)
	if err != nil {
		s.logger.Warn("wikiquote fetch failed", "url", s.url, "error", err)
		return nil, nil
	}

	content := doc.Find("div#mw-content-text").First()
	if content.Length() == 0 {
		return nil, nil
	}

	var quotes []domain.Quote
	currentSeason := 0

	content.Find("h2, h3, h4, dl, ul").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "h2", "h3":
			if m := seasonHeaderPattern.FindStringSubmatch(sel.Text()); m != nil {
				currentSeason, _ = strconv.Atoi(m[1])
			}
		case "dl":
			quotes = append(quotes, s.parseDialogue(sel, currentSeason)...)
		case "ul":
			quotes = append(quotes, s.parseStandalone(sel, currentSeason)...)
		}
	})

	s.logger.Info("wikiquote scraped", "quotes", len(quotes))
	return quotes, nil
}

// parseDialogue extracts lines spoken by the character from a definition
// list: <dl><dd><b>Red:</b> quote...</dd></dl>.
func (s *WikiquoteSource) parseDialogue(dl *goquery.Selection, season int) []domain.Quote {
	var quotes []domain.Quote

	dl.Find("dd").Each(func(_ int, dd *goquery.Selection) {
		line := strings.Join(strings.Fields(dd.Text()), " ")
		m := s.speaker.FindStringIndex(line)
		if m == nil {
			return
		}
		q, ok := MakeQuote(line[m[1]:], s.url, s.Name())
		if !ok {
			return
		}
		q.Season = season
		q.Context = "Wikiquote dialogue"
		quotes = append(quotes, q)
	})

	return quotes
}

// parseStandalone extracts `Quote. — Character` list items. Wikiquote often
// puts the quote first with the attribution after a dash.
func (s *WikiquoteSource) parseStandalone(ul *goquery.Selection, season int) []domain.Quote {
	var quotes []domain.Quote
	dashSplit := regexp.MustCompile(`[-\x{2013}\x{2014}]`)

	ul.Find("li").Each(func(_ int, li *goquery.Selection) {
		line := strings.Join(strings.Fields(li.Text()), " ")
		if !strings.Contains(line, s.surname) && !s.speaker.MatchString(line) {
			return
		}

		parts := dashSplit.Split(line, -1)
		if len(parts) < 2 {
			return
		}
		attribution := strings.Join(parts[1:], " ")
		if !strings.Contains(attribution, s.surname) {
			return
		}

		q, ok := MakeQuote(parts[0], s.url, s.Name())
		if !ok {
			return
		}
		q.Season = season
		q.Context = "Wikiquote standalone"
		quotes = append(quotes, q)
	})

	return quotes
}

var _ Source = (*WikiquoteSource)(nil)
