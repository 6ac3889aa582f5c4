package dedup

import (
	"sort"
	"unicode/utf8"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/textmatch"
)

// DefaultThreshold is the similarity ratio above which two quotes are
// considered duplicates. Tuned for short attributed quotations harvested
// from multiple sites with differing punctuation and wording.
const DefaultThreshold = 0.85

// minNormalizedLength is the shortest normalized text accepted as a real
// quote; anything shorter is treated as scraping noise and dropped.
const minNormalizedLength = 10

// Deduplicate removes near-duplicate quotes using fuzzy matching over
// normalized text.
//
// Quotes are first ordered by metadata richness (stable, so ties keep their
// original encounter order) so that the copy carrying season/episode info
// survives when a duplicate cluster is collapsed. Each candidate is then
// compared against every already-accepted quote; a cheap length-ratio check
// skips the similarity computation when the normalized lengths differ by
// more than a factor of two. Candidates scoring >= threshold against any
// accepted quote are discarded.
//
// The output contains no two quotes whose normalized texts are mutually
// similar above threshold. Result ordering is richest-metadata first, not
// display order; sorting for display happens downstream.
func Deduplicate(quotes []domain.Quote, threshold float64) []domain.Quote {
	if len(quotes) == 0 {
		return nil
	}

	sorted := make([]domain.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metadataScore(sorted[i]) > metadataScore(sorted[j])
	})

	unique := make([]domain.Quote, 0, len(sorted))
	normalized := make([]string, 0, len(sorted))

	for _, quote := range sorted {
		norm := textmatch.Normalize(quote.Text)
		normLen := utf8.RuneCountInString(norm)
		if normLen < minNormalizedLength {
			continue
		}

		isDup := false
		for _, existing := range normalized {
			existingLen := utf8.RuneCountInString(existing)
			if existingLen < 1 {
				existingLen = 1
			}
			lenRatio := float64(normLen) / float64(existingLen)
			if lenRatio <= 0.5 || lenRatio >= 2.0 {
				continue
			}
			if textmatch.Ratio(norm, existing) >= threshold {
				isDup = true
				break
			}
		}

		if !isDup {
			unique = append(unique, quote)
			normalized = append(normalized, norm)
		}
	}

	return unique
}

// metadataScore rates how much structured metadata a quote carries. Season
// and episode attribution weigh double because they are what the enricher
// and sort order care about.
func metadataScore(q domain.Quote) int {
	score := 0
	if q.Season > 0 {
		score += 2
	}
	if q.Episode > 0 {
		score += 2
	}
	if q.EpisodeTitle != "" {
		score++
	}
	if q.Context != "" {
		score++
	}
	return score
}

// unknownSlot sorts quotes without season/episode attribution after all
// tagged quotes.
const unknownSlot = 999

// SortQuotes orders quotes by season, then episode, then alphabetically.
// Quotes without season/episode info go to the end.
func SortQuotes(quotes []domain.Quote) []domain.Quote {
	sorted := make([]domain.Quote, len(quotes))
	copy(sorted, quotes)

	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sortSlot(sorted[i].Season), sortSlot(sorted[j].Season)
		if si != sj {
			return si < sj
		}
		ei, ej := sortSlot(sorted[i].Episode), sortSlot(sorted[j].Episode)
		if ei != ej {
			return ei < ej
		}
		return sorted[i].Text < sorted[j].Text
	})

	return sorted
}

func sortSlot(n int) int {
	if n <= 0 {
		return unknownSlot
	}
	return n
}
