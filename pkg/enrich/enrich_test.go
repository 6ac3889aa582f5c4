package enrich

import (
	"strings"
	"testing"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/textmatch"
	"quote-archive/pkg/transcripts"
)

func entry(season, episode int, raw string) transcripts.Entry {
	return transcripts.Entry{
		Key:  transcripts.Key{Season: season, Episode: episode},
		Text: textmatch.Normalize(raw),
	}
}

func TestEnrichExactSubstring(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "You look familiar. Have I threatened you before?"},
	}
	entries := []transcripts.Entry{
		entry(1, 1, "Unrelated chatter about the task force."),
		entry(1, 3, "Scene opens. You look familiar... have I threatened you before? He smiles."),
	}
	titles := map[transcripts.Key]string{
		{Season: 1, Episode: 3}: "Wujing",
	}

	enriched := New(nil).Enrich(quotes, entries, titles)
	if enriched != 1 {
		t.Fatalf("enriched = %d, want 1", enriched)
	}
	q := quotes[0]
	if q.Season != 1 || q.Episode != 3 {
		t.Errorf("tagged as s%02de%02d, want s01e03", q.Season, q.Episode)
	}
	if q.EpisodeTitle != "Wujing" {
		t.Errorf("episode title = %q, want Wujing", q.EpisodeTitle)
	}
}

func TestEnrichShortQuoteNeverFuzzy(t *testing.T) {
	// Four words, never verbatim in the transcript. Heavy word overlap must
	// not produce a match.
	quotes := []domain.Quote{
		{Text: "Trust no one ever."},
	}
	entries := []transcripts.Entry{
		entry(2, 5, "trust is rare no one can be trusted ever again he said"),
	}

	if enriched := New(nil).Enrich(quotes, entries, nil); enriched != 0 {
		t.Fatalf("short quote was fuzzily tagged, enriched = %d", enriched)
	}
	if quotes[0].Tagged() {
		t.Error("short quote received season attribution")
	}
}

func TestEnrichNeverOverwrites(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "You look familiar. Have I threatened you before?", Season: 7, Episode: 2, EpisodeTitle: "Existing"},
	}
	entries := []transcripts.Entry{
		entry(1, 3, "you look familiar have i threatened you before"),
	}

	enriched := New(nil).Enrich(quotes, entries, nil)
	if enriched != 0 {
		t.Fatalf("already-tagged quote was counted as enriched")
	}
	if quotes[0].Season != 7 || quotes[0].Episode != 2 || quotes[0].EpisodeTitle != "Existing" {
		t.Errorf("tagged quote was mutated: %+v", quotes[0])
	}
}

func TestEnrichFirstMatchWins(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "We are all puppets Harold some of us just have more strings."},
	}
	line := "we are all puppets harold some of us just have more strings"
	entries := []transcripts.Entry{
		entry(1, 5, line),
		entry(3, 9, line),
	}

	New(nil).Enrich(quotes, entries, nil)
	if quotes[0].Season != 1 || quotes[0].Episode != 5 {
		t.Errorf("got s%02de%02d, want first match s01e05", quotes[0].Season, quotes[0].Episode)
	}
}

func TestEnrichUnknownTitleIsEmpty(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "Hope is the worst of all evils because it prolongs torment."},
	}
	entries := []transcripts.Entry{
		entry(4, 2, "hope is the worst of all evils because it prolongs torment"),
	}

	New(nil).Enrich(quotes, entries, map[transcripts.Key]string{})
	if quotes[0].EpisodeTitle != "" {
		t.Errorf("episode title = %q, want empty for unknown", quotes[0].EpisodeTitle)
	}
	if quotes[0].Season != 4 {
		t.Errorf("season = %d, want 4", quotes[0].Season)
	}
}

func TestMatchesTiers(t *testing.T) {
	// 12 normalized words -> chunk size 5, stride 3 -> chunks at 0, 3, 6:
	// three chunks.
	quote := "one two three four five six seven eight nine ten eleven twelve"
	words := strings.Fields(quote)
	if len(words) != 12 {
		t.Fatalf("test fixture has %d words, want 12", len(words))
	}

	tests := []struct {
		name       string
		transcript string
		want       bool
	}{
		{
			name:       "exact substring",
			transcript: "prefix one two three four five six seven eight nine ten eleven twelve suffix",
			want:       true,
		},
		{
			name:       "two of three chunks match",
			transcript: "one two three four five ... four five six seven eight",
			want:       true,
		},
		{
			name:       "single chunk match is not enough with three chunks",
			transcript: "one two three four five and nothing else matching",
			want:       false,
		},
		{
			name:       "no chunks match",
			transcript: "completely different dialogue altogether",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Matches(quote, textmatch.Normalize(tt.transcript))
			if got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesFewChunksNeedOne(t *testing.T) {
	// 7 normalized words -> chunk size 5, stride 3 -> one chunk at 0 only
	// (7-5=2 < 3): fewer than three chunks, one match suffices.
	quote := "alpha bravo charlie delta echo foxtrot golf"
	transcript := textmatch.Normalize("noise alpha bravo charlie delta echo noise")

	if !Matches(quote, transcript) {
		t.Error("single matching chunk should match when fewer than 3 chunks exist")
	}
}

func TestMatchesEmptyQuote(t *testing.T) {
	if Matches("?!", "anything at all") {
		t.Error("punctuation-only quote matched")
	}
}
