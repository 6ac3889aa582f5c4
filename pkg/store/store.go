package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"quote-archive/pkg/domain"
)

// csvHeader is the fixed column order of the CSV projection.
var csvHeader = []string{"quote", "season", "episode", "episode_title", "context", "source_url", "source_name"}

// Metadata describes the collection an archive file holds.
type Metadata struct {
	Project     string `json:"project"`
	Description string `json:"description"`
	TotalQuotes int    `json:"total_quotes"`
	LastUpdated string `json:"last_updated"`
}

// Envelope is the on-disk JSON layout: collection metadata followed by the
// quote records themselves.
type Envelope struct {
	Metadata Metadata       `json:"metadata"`
	Quotes   []domain.Quote `json:"quotes"`
}

// Store reads and writes the persisted quote collection. The collection
// lives in a single pretty-printed JSON file so it stays reviewable in a
// diff; a CSV projection is written alongside for spreadsheet users.
type Store struct {
	project     string
	description string
	logger      *slog.Logger
}

// New builds a store that stamps the given project name and description
// into the JSON metadata. A nil logger falls back to slog.Default().
func New(project, description string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{project: project, description: description, logger: logger}
}

// Load reads a previously exported collection. A missing or malformed file
// is not an error: collection runs merge into whatever exists, so a fresh
// or corrupted archive simply means starting from zero. Corruption is
// logged.
func (s *Store) Load(path string) []domain.Quote {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read archive, starting fresh", "path", path, "error", err)
		}
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("archive is malformed, starting fresh", "path", path, "error", err)
		return nil
	}

	s.logger.Info("loaded existing archive", "path", path, "quotes", len(env.Quotes))
	return env.Quotes
}

// SaveJSON writes the collection as a pretty-printed JSON envelope. The
// write is atomic: a temp file in the same directory is renamed over the
// target, so a crash mid-write never corrupts the archive.
func (s *Store) SaveJSON(path string, quotes []domain.Quote) error {
	env := Envelope{
		Metadata: Metadata{
			Project:     s.project,
			Description: s.description,
			TotalQuotes: len(quotes),
			LastUpdated: time.Now().Format(time.RFC3339),
		},
		Quotes: quotes,
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write archive %s: %w", path, err)
	}

	s.logger.Info("archive saved", "path", path, "quotes", len(quotes))
	return nil
}

// SaveCSV writes the flat CSV projection of the collection. Season and
// episode columns are left empty for untagged quotes.
func (s *Store) SaveCSV(path string, quotes []domain.Quote) error {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, q := range quotes {
		row := []string{
			q.Text,
			numberOrBlank(q.Season),
			numberOrBlank(q.Episode),
			q.EpisodeTitle,
			q.Context,
			q.SourceURL,
			q.SourceName,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if err := writeAtomic(path, []byte(buf.String())); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}

	s.logger.Info("csv projection saved", "path", path, "quotes", len(quotes))
	return nil
}

func numberOrBlank(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// writeAtomic creates the parent directory if needed and replaces path via
// a temp file rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// GenerateStats summarizes the collection: tagging coverage, per-source and
// per-season counts, and the length distribution of quote texts.
func GenerateStats(quotes []domain.Quote) domain.Stats {
	stats := domain.Stats{
		TotalQuotes: len(quotes),
		Sources:     make(map[string]int),
		Seasons:     make(map[int]int),
	}

	var total int
	for i, q := range quotes {
		if q.Season > 0 {
			stats.QuotesWithSeason++
			stats.Seasons[q.Season]++
		}
		if q.Episode > 0 {
			stats.QuotesWithEpisode++
		}
		if q.Context != "" {
			stats.QuotesWithContext++
		}

		name := q.SourceName
		if name == "" {
			name = "Unknown"
		}
		stats.Sources[name]++

		length := utf8.RuneCountInString(q.Text)
		total += length
		if i == 0 {
			stats.ShortestQuote = length
			stats.LongestQuote = length
			continue
		}
		if length < stats.ShortestQuote {
			stats.ShortestQuote = length
		}
		if length > stats.LongestQuote {
			stats.LongestQuote = length
		}
	}

	if len(quotes) > 0 {
		stats.AvgQuoteLength = (total + len(quotes)/2) / len(quotes)
	}

	return stats
}

// RenderStats formats stats as a readable text block for CLI output.
// Sources are listed by descending count, seasons in season order.
func RenderStats(stats domain.Stats) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "  QUOTE ARCHIVE STATS\n")
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "  Total quotes collected:  %d\n", stats.TotalQuotes)
	fmt.Fprintf(&b, "  With season info:        %d\n", stats.QuotesWithSeason)
	fmt.Fprintf(&b, "  With episode info:       %d\n", stats.QuotesWithEpisode)
	fmt.Fprintf(&b, "  With context:            %d\n", stats.QuotesWithContext)

	if stats.AvgQuoteLength > 0 {
		fmt.Fprintf(&b, "  Avg quote length:        %d chars\n", stats.AvgQuoteLength)
		fmt.Fprintf(&b, "  Shortest:                %d chars\n", stats.ShortestQuote)
		fmt.Fprintf(&b, "  Longest:                 %d chars\n", stats.LongestQuote)
	}

	if len(stats.Sources) > 0 {
		fmt.Fprintf(&b, "\n  Quotes per source:\n")
		type srcCount struct {
			name  string
			count int
		}
		sources := make([]srcCount, 0, len(stats.Sources))
		for name, count := range stats.Sources {
			sources = append(sources, srcCount{name, count})
		}
		sort.Slice(sources, func(i, j int) bool {
			if sources[i].count != sources[j].count {
				return sources[i].count > sources[j].count
			}
			return sources[i].name < sources[j].name
		})
		for _, sc := range sources {
			fmt.Fprintf(&b, "    %-30s %d\n", sc.name, sc.count)
		}
	}

	if len(stats.Seasons) > 0 {
		fmt.Fprintf(&b, "\n  Quotes per season:\n")
		seasons := make([]int, 0, len(stats.Seasons))
		for season := range stats.Seasons {
			seasons = append(seasons, season)
		}
		sort.Ints(seasons)
		for _, season := range seasons {
			fmt.Fprintf(&b, "    Season %-23d %d\n", season, stats.Seasons[season])
		}
	}

	fmt.Fprintf(&b, "%s\n", rule)
	return b.String()
}
