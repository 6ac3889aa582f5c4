package transcripts

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"quote-archive/pkg/httpclient"
)

// episodeLinkPattern extracts season/episode numbers from episode listing
// hrefs like "view_episode_scripts.php?tv-show=x&episode=s01e03".
var episodeLinkPattern = regexp.MustCompile(`episode=s(\d+)e(\d+)`)

// titleIndexPattern strips leading "1. " style numbering from listing titles.
var titleIndexPattern = regexp.MustCompile(`^\d+\.\s*`)

// SpringfieldSource fetches episode transcripts from a Springfield
// Springfield style transcript site: static HTML, one page per episode,
// script text inside a known container div.
type SpringfieldSource struct {
	client   *httpclient.Client
	baseURL  string
	showSlug string
}

// NewSpringfieldSource builds a source for the given site and show slug,
// e.g. ("https://www.springfieldspringfield.co.uk", "the-blacklist").
func NewSpringfieldSource(client *httpclient.Client, baseURL, showSlug string) *SpringfieldSource {
	return &SpringfieldSource{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		showSlug: showSlug,
	}
}

func (s *SpringfieldSource) episodeURL(season, episode int) string {
	return fmt.Sprintf("%s/view_episode_scripts.php?tv-show=%s&episode=s%02de%02d",
		s.baseURL, s.showSlug, season, episode)
}

func (s *SpringfieldSource) listingURL() string {
	return fmt.Sprintf("%s/episode_scripts.php?tv-show=%s", s.baseURL, s.showSlug)
}

// FetchTranscript downloads one episode page and extracts its script text.
// Returns empty text (no error) when the page exists but carries no script
// container, matching the "parse failure is zero results" policy.
func (s *SpringfieldSource) FetchTranscript(ctx context.Context, season, episode int) (string, error) {
	doc, err := s.fetchDocument(ctx, s.episodeURL(season, episode))
	if err != nil {
		return "", err
	}

	container := doc.Find("div.scrolling-script-container").First()
	if container.Length() == 0 {
		container = doc.Find("div.movie_script").First()
	}
	if container.Length() == 0 {
		return "", nil
	}

	return container.Text(), nil
}

// EpisodeTitles scrapes the show's episode listing page and builds the
// (season, episode) -> title index.
func (s *SpringfieldSource) EpisodeTitles(ctx context.Context) (map[Key]string, error) {
	doc, err := s.fetchDocument(ctx, s.listingURL())
	if err != nil {
		return nil, err
	}

	titles := make(map[Key]string)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := episodeLinkPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		season, _ := strconv.Atoi(m[1])
		episode, _ := strconv.Atoi(m[2])
		title := titleIndexPattern.ReplaceAllString(strings.TrimSpace(sel.Text()), "")
		titles[Key{Season: season, Episode: episode}] = title
	})

	return titles, nil
}

func (s *SpringfieldSource) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := s.client.Get(ctx, url)
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
