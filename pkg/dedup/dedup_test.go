package dedup

import (
	"testing"

	"quote-archive/pkg/domain"
)

func TestDeduplicateEmpty(t *testing.T) {
	if got := Deduplicate(nil, DefaultThreshold); len(got) != 0 {
		t.Errorf("Deduplicate(nil) returned %d quotes, want 0", len(got))
	}
	if got := Deduplicate([]domain.Quote{}, DefaultThreshold); len(got) != 0 {
		t.Errorf("Deduplicate(empty) returned %d quotes, want 0", len(got))
	}
}

func TestDeduplicatePrefersRicherMetadata(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "Power isn't something you're given. It's something you take."},
		{Text: "power isnt something youre given its something you take", Season: 1},
	}

	got := Deduplicate(quotes, 0.85)
	if len(got) != 1 {
		t.Fatalf("got %d quotes, want exactly 1", len(got))
	}
	if got[0].Season != 1 {
		t.Errorf("survivor has season %d, want 1 (the richer record)", got[0].Season)
	}
}

func TestDeduplicateIdenticalNormalizedForms(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "You talk too much, Donald!"},
		{Text: "you talk too much donald"},
		{Text: "You talk too much... Donald."},
	}

	got := Deduplicate(quotes, DefaultThreshold)
	if len(got) != 1 {
		t.Fatalf("identical normalized forms should collapse to 1, got %d", len(got))
	}
}

func TestDeduplicateKeepsDistinctQuotes(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "Value loyalty above all else in this life."},
		{Text: "Revenge isn't a passion. It's a disease."},
		{Text: "The past is a ghost that never truly leaves us."},
	}

	got := Deduplicate(quotes, DefaultThreshold)
	if len(got) != 3 {
		t.Fatalf("distinct quotes should all survive, got %d of 3", len(got))
	}
}

func TestDeduplicateOutputNeverGrows(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "Betrayal is just loyalty reprioritized, Harold."},
		{Text: "Betrayal is just loyalty reprioritized Harold"},
		{Text: "Trust no one. Not even yourself, Lizzy."},
		{Text: "short"},
	}

	got := Deduplicate(quotes, DefaultThreshold)
	if len(got) > len(quotes) {
		t.Errorf("output (%d) larger than input (%d)", len(got), len(quotes))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "Lies by omission are still lies, Harold."},
		{Text: "Lies by omission are still lies Harold!"},
		{Text: "I always found fear to be my most valuable sense."},
		{Text: "Hope is the worst of all evils because it prolongs the torment of man."},
	}

	once := Deduplicate(quotes, DefaultThreshold)
	twice := Deduplicate(once, DefaultThreshold)

	if len(once) != len(twice) {
		t.Fatalf("second pass changed size: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Text != twice[i].Text {
			t.Errorf("quote %d changed between passes: %q -> %q", i, once[i].Text, twice[i].Text)
		}
	}
}

func TestDeduplicateDropsNoise(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "Yes."},
		{Text: "!!!"},
		{Text: "A quote long enough to count as real."},
	}

	got := Deduplicate(quotes, DefaultThreshold)
	if len(got) != 1 {
		t.Fatalf("got %d quotes, want 1 (noise dropped)", len(got))
	}
	if got[0].Text != "A quote long enough to count as real." {
		t.Errorf("wrong survivor: %q", got[0].Text)
	}
}

func TestDeduplicateThresholdBoundaries(t *testing.T) {
	near := []domain.Quote{
		{Text: "The world is full of wolves and sheep. Be the wolf."},
		{Text: "The world is full of wolves and sheep — be the wolf!"},
	}

	// At threshold 1.0 only byte-identical normalized forms collapse; these
	// two normalize identically, so they still merge.
	if got := Deduplicate(near, 1.0); len(got) != 1 {
		t.Errorf("threshold 1.0 with identical normalized forms: got %d, want 1", len(got))
	}

	worded := []domain.Quote{
		{Text: "The world is full of wolves and sheep. Be the wolf."},
		{Text: "This world is full of wolves and of sheep, so be a wolf."},
	}

	// A permissive threshold merges the reworded pair; a strict one keeps both.
	if got := Deduplicate(worded, 0.5); len(got) != 1 {
		t.Errorf("threshold 0.5: got %d, want 1", len(got))
	}
	if got := Deduplicate(worded, 0.99); len(got) != 2 {
		t.Errorf("threshold 0.99: got %d, want 2", len(got))
	}
}

func TestDeduplicateLengthPreFilter(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "Never underestimate the power of glitter."},
		{Text: "Never underestimate the power of glitter, Lizzy. Glitter is the herpes of craft supplies and it will follow you everywhere you go for the rest of your days."},
	}

	// The long variant is more than twice the short one after normalization,
	// so the similarity check is skipped and both survive.
	got := Deduplicate(quotes, 0.1)
	if len(got) != 2 {
		t.Fatalf("length pre-filter should keep both, got %d", len(got))
	}
}

func TestMetadataScore(t *testing.T) {
	tests := []struct {
		name  string
		quote domain.Quote
		want  int
	}{
		{"bare", domain.Quote{Text: "x"}, 0},
		{"season only", domain.Quote{Text: "x", Season: 2}, 2},
		{"season and episode", domain.Quote{Text: "x", Season: 2, Episode: 4}, 4},
		{"fully tagged", domain.Quote{Text: "x", Season: 2, Episode: 4, EpisodeTitle: "Madeline Pratt", Context: "to Liz"}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metadataScore(tt.quote); got != tt.want {
				t.Errorf("metadataScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSortQuotes(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "untagged zulu"},
		{Text: "bravo", Season: 2, Episode: 1},
		{Text: "alpha", Season: 1, Episode: 3},
		{Text: "charlie", Season: 1, Episode: 3},
		{Text: "untagged alpha"},
	}

	got := SortQuotes(quotes)

	wantOrder := []string{"alpha", "charlie", "bravo", "untagged alpha", "untagged zulu"}
	for i, want := range wantOrder {
		if got[i].Text != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].Text, want)
		}
	}
}
