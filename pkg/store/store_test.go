package store

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quote-archive/pkg/domain"
)

func sampleQuotes() []domain.Quote {
	return []domain.Quote{
		{
			Text:         "Power isn't something you're given. It's something you take.",
			Season:       1,
			Episode:      3,
			EpisodeTitle: "Wujing",
			Context:      "To Liz",
			SourceURL:    "https://example.com/quotes",
			SourceName:   "Wikiquote",
		},
		{
			Text:       "Value loyalty above all else in this life.",
			SourceURL:  "https://example.com/other",
			SourceName: "CuratedPages",
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := New("quote-archive", "test collection", nil)
	path := filepath.Join(t.TempDir(), "out", "quotes.json")

	if err := s.SaveJSON(path, sampleQuotes()); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	loaded := s.Load(path)
	if len(loaded) != 2 {
		t.Fatalf("loaded %d quotes, want 2", len(loaded))
	}
	if loaded[0].Season != 1 || loaded[0].Episode != 3 {
		t.Errorf("tagged quote lost metadata: %+v", loaded[0])
	}
	if loaded[1].Season != 0 {
		t.Errorf("untagged quote gained a season: %+v", loaded[1])
	}
}

func TestSaveJSONEnvelope(t *testing.T) {
	s := New("quote-archive", "test collection", nil)
	path := filepath.Join(t.TempDir(), "quotes.json")

	if err := s.SaveJSON(path, sampleQuotes()); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("archive is not valid JSON: %v", err)
	}
	if env.Metadata.Project != "quote-archive" {
		t.Errorf("project = %q", env.Metadata.Project)
	}
	if env.Metadata.TotalQuotes != 2 {
		t.Errorf("total_quotes = %d, want 2", env.Metadata.TotalQuotes)
	}
	if env.Metadata.LastUpdated == "" {
		t.Error("last_updated not stamped")
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("archive is not pretty-printed")
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := New("quote-archive", "test collection", nil)
	if quotes := s.Load(filepath.Join(t.TempDir(), "nope.json")); quotes != nil {
		t.Errorf("missing file yielded %d quotes", len(quotes))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New("quote-archive", "test collection", nil)
	if quotes := s.Load(path); quotes != nil {
		t.Errorf("malformed file yielded %d quotes", len(quotes))
	}
}

func TestSaveCSV(t *testing.T) {
	s := New("quote-archive", "test collection", nil)
	path := filepath.Join(t.TempDir(), "quotes.csv")

	if err := s.SaveCSV(path, sampleQuotes()); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv is unreadable: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	wantHeader := []string{"quote", "season", "episode", "episode_title", "context", "source_url", "source_name"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][1] != "1" || rows[1][2] != "3" {
		t.Errorf("tagged row season/episode = %q/%q", rows[1][1], rows[1][2])
	}
	if rows[2][1] != "" || rows[2][2] != "" {
		t.Errorf("untagged row season/episode should be blank, got %q/%q", rows[2][1], rows[2][2])
	}
}

func TestGenerateStats(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "aaaa", Season: 1, Episode: 2, Context: "x", SourceName: "Wikiquote"},
		{Text: "bbbbbbbb", Season: 1, SourceName: "Wikiquote"},
		{Text: "cccccc", SourceName: "IMDb"},
	}

	stats := GenerateStats(quotes)

	if stats.TotalQuotes != 3 {
		t.Errorf("TotalQuotes = %d", stats.TotalQuotes)
	}
	if stats.QuotesWithSeason != 2 {
		t.Errorf("QuotesWithSeason = %d", stats.QuotesWithSeason)
	}
	if stats.QuotesWithEpisode != 1 {
		t.Errorf("QuotesWithEpisode = %d", stats.QuotesWithEpisode)
	}
	if stats.QuotesWithContext != 1 {
		t.Errorf("QuotesWithContext = %d", stats.QuotesWithContext)
	}
	if stats.Sources["Wikiquote"] != 2 || stats.Sources["IMDb"] != 1 {
		t.Errorf("Sources = %v", stats.Sources)
	}
	if stats.Seasons[1] != 2 {
		t.Errorf("Seasons = %v", stats.Seasons)
	}
	if stats.ShortestQuote != 4 || stats.LongestQuote != 8 {
		t.Errorf("length bounds = %d/%d", stats.ShortestQuote, stats.LongestQuote)
	}
	if stats.AvgQuoteLength != 6 {
		t.Errorf("AvgQuoteLength = %d, want 6", stats.AvgQuoteLength)
	}
}

func TestGenerateStatsEmpty(t *testing.T) {
	stats := GenerateStats(nil)
	if stats.TotalQuotes != 0 || stats.AvgQuoteLength != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}

func TestRenderStats(t *testing.T) {
	stats := GenerateStats([]domain.Quote{
		{Text: "aaaa", Season: 2, SourceName: "Wikiquote"},
		{Text: "bbbb", SourceName: "IMDb"},
	})

	out := RenderStats(stats)
	for _, want := range []string{"Total quotes collected:  2", "Wikiquote", "Season 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered stats missing %q:\n%s", want, out)
		}
	}
}
