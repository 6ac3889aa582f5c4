package scrape

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/httpclient"
)

// IMDbSource scrapes a title's IMDb quotes page. Quote blocks sit in
// div.sodatext elements with one paragraph per dialogue line, the speaker
// name before the first colon.
type IMDbSource struct {
	client  *httpclient.Client
	url     string
	surname string
	logger  *slog.Logger
}

// NewIMDbSource builds an IMDb source for the given quotes page URL, keeping
// only lines spoken by the character with the given surname.
func NewIMDbSource(client *httpclient.Client, url, surname string, logger *slog.Logger) *IMDbSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &IMDbSource{client: client, url: url, surname: surname, logger: logger}
}

func (s *IMDbSource) Name() string { return "IMDb" }

func (s *IMDbSource) Scrape(ctx context.Context) ([]domain.Quote, error) {
	doc, err := fetchDocument(ctx, s.client, s.url)
	if err != nil {
		s.logger.Warn("imdb fetch failed", "url", s.url, "error", err)
		return nil, nil
	}

	var quotes []domain.Quote

	doc.Find("div.sodatext p").Each(func(_ int, p *goquery.Selection) {
		line := strings.Join(strings.Fields(p.Text()), " ")
		if !strings.Contains(line, s.surname) {
			return
		}

		speaker, content, found := strings.Cut(line, ":")
		if !found || !strings.Contains(speaker, s.surname) {
			return
		}

		q, ok := MakeQuote(content, s.url, s.Name())
		if !ok {
			return
		}
		q.Context = "IMDb"
		quotes = append(quotes, q)
	})

	s.logger.Info("imdb scraped", "quotes", len(quotes))
	return quotes, nil
}

var _ Source = (*IMDbSource)(nil)
