package enrich

import (
	"log/slog"
	"strings"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/textmatch"
	"quote-archive/pkg/transcripts"
)

const (
	// shortQuoteWords is the word count at or below which only an exact
	// substring match is accepted. Short common phrases would otherwise
	// produce false positives across unrelated episodes.
	shortQuoteWords = 5

	// chunkWindow and chunkStride control the key-phrase tier: a window of
	// min(chunkWindow, wordcount-1) words slides across the quote in steps
	// of chunkStride words.
	chunkWindow = 5
	chunkStride = 3
)

// Enricher cross-references untagged quotes against cached episode
// transcripts to recover season/episode attribution.
type Enricher struct {
	logger *slog.Logger
}

// New returns an enricher. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{logger: logger}
}

// Enrich tags untagged quotes in place and returns the number tagged.
//
// Quotes that already carry a season are never touched. Transcripts are
// scanned in the order given (LoadAll yields season-then-episode ascending)
// and the first matching transcript wins; a quote that legitimately appears
// in several episodes keeps only the first discovered attribution. The
// episode title comes from the titles index, empty string when unknown.
func (e *Enricher) Enrich(quotes []domain.Quote, entries []transcripts.Entry, titles map[transcripts.Key]string) int {
	enriched := 0

	for i := range quotes {
		if quotes[i].Tagged() {
			continue
		}

		for _, entry := range entries {
			if !Matches(quotes[i].Text, entry.Text) {
				continue
			}
			quotes[i].Season = entry.Key.Season
			quotes[i].Episode = entry.Key.Episode
			quotes[i].EpisodeTitle = titles[entry.Key]
			enriched++
			e.logger.Info("enriched quote",
				"episode", entry.Key.String(),
				"title", quotes[i].EpisodeTitle,
				"quote", truncate(quotes[i].Text, 60))
			break
		}
	}

	return enriched
}

// Matches decides whether a quote appears in a transcript. The transcript
// text must already be normalized; the quote is normalized here.
//
// Tier 1: the normalized quote is an exact substring of the transcript.
// Quotes of shortQuoteWords or fewer words stop there. Longer quotes fall
// through to the key-phrase tier: sliding word chunks are checked as
// substrings, and the quote matches when at least 2 of 3+ chunks are found,
// or at least 1 when the quote yields fewer than 3 chunks.
func Matches(quoteText, normTranscript string) bool {
	normQuote := textmatch.Normalize(quoteText)
	if normQuote == "" {
		return false
	}

	if strings.Contains(normTranscript, normQuote) {
		return true
	}

	words := textmatch.Words(quoteText)
	if len(words) <= shortQuoteWords {
		return false
	}

	chunkSize := chunkWindow
	if len(words)-1 < chunkSize {
		chunkSize = len(words) - 1
	}

	var chunks []string
	for i := 0; i+chunkSize <= len(words); i += chunkStride {
		chunks = append(chunks, strings.Join(words[i:i+chunkSize], " "))
	}
	if len(chunks) == 0 {
		return false
	}

	matched := 0
	for _, chunk := range chunks {
		if strings.Contains(normTranscript, chunk) {
			matched++
		}
	}

	if len(chunks) >= 3 {
		return matched >= 2
	}
	return matched >= 1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
