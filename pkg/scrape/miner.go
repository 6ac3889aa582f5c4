package scrape

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/transcripts"
)

// cacheFilePattern parses season/episode from cache filenames like
// "s01e03.txt".
var cacheFilePattern = regexp.MustCompile(`(?i)s(\d+)e(\d+)\.txt$`)

// Mining quality gates: skip throwaway lines and suspiciously long blocks
// that are usually parsing artifacts rather than single spoken quotes.
const (
	minMinedLength = 40
	maxMinedLength = 600
)

// MinerSource mines quotes directly from cached episode transcripts,
// surfacing lines that never made it onto curated quote sites. Since the
// season and episode are known from the cache key, mined quotes arrive
// pre-tagged.
type MinerSource struct {
	store   *transcripts.Store
	speaker *regexp.Regexp
	logger  *slog.Logger
}

// NewMinerSource builds a miner over the transcript cache. aliases are the
// speaker labels the character's lines appear under in transcripts.
func NewMinerSource(store *transcripts.Store, aliases []string, logger *slog.Logger) *MinerSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MinerSource{store: store, speaker: speakerPattern(aliases), logger: logger}
}

func (s *MinerSource) Name() string { return "TranscriptMining" }

func (s *MinerSource) Scrape(ctx context.Context) ([]domain.Quote, error) {
	files, err := filepath.Glob(filepath.Join(s.store.Dir(), "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Warn("transcript cache is empty, nothing to mine", "dir", s.store.Dir())
		return nil, nil
	}

	var all []domain.Quote
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		m := cacheFilePattern.FindStringSubmatch(filepath.Base(file))
		if m == nil {
			continue
		}
		season, _ := strconv.Atoi(m[1])
		episode, _ := strconv.Atoi(m[2])

		key := transcripts.Key{Season: season, Episode: episode}
		text, found := s.store.Get(key)
		if !found {
			continue
		}

		all = append(all, s.mine(text, key)...)
	}

	s.logger.Info("mined transcripts", "files", len(files), "quotes", len(all))
	return all, nil
}

// mine extracts the character's dialogue lines from one transcript.
func (s *MinerSource) mine(text string, key transcripts.Key) []domain.Quote {
	var quotes []domain.Quote

	for _, m := range s.speaker.FindAllStringSubmatch(text, -1) {
		line := strings.Join(strings.Fields(m[1]), " ")

		length := utf8.RuneCountInString(line)
		if length < minMinedLength || length > maxMinedLength {
			continue
		}
		// Stage directions, not dialogue.
		if strings.HasPrefix(line, "(") || strings.HasPrefix(line, "[") {
			continue
		}

		q, ok := MakeQuote(line, "Transcript "+strings.ToUpper(key.String()), s.Name())
		if !ok {
			continue
		}
		q.Season = key.Season
		q.Episode = key.Episode
		q.Context = "Mined from transcript"
		quotes = append(quotes, q)
	}

	return quotes
}

var _ Source = (*MinerSource)(nil)
