package main

import (
	"context"
	"path/filepath"
	"testing"

	"quote-archive/pkg/config"
	"quote-archive/pkg/domain"
)

func TestArchiveQuotesFromArchive(t *testing.T) {
	cfg := config.Default()
	cfg.Output.JSONPath = filepath.Join(t.TempDir(), "quotes.json")

	want := []domain.Quote{
		{Text: "A quote long enough to survive the archive round trip.", SourceName: "Wikiquote", SourceURL: "a"},
	}
	if err := newStore(cfg).SaveJSON(cfg.Output.JSONPath, want); err != nil {
		t.Fatal(err)
	}

	got, err := archiveQuotes(context.Background(), cfg, "archive")
	if err != nil {
		t.Fatalf("archiveQuotes failed: %v", err)
	}
	if len(got) != 1 || got[0].Text != want[0].Text {
		t.Errorf("archiveQuotes = %+v", got)
	}
}

func TestArchiveQuotesEmptyArchive(t *testing.T) {
	cfg := config.Default()
	cfg.Output.JSONPath = filepath.Join(t.TempDir(), "missing.json")

	if _, err := archiveQuotes(context.Background(), cfg, "archive"); err == nil {
		t.Fatal("expected error for empty archive")
	}
}

func TestArchiveQuotesMongoRequiresURI(t *testing.T) {
	cfg := config.Default()
	cfg.Mongo.URI = ""

	if _, err := archiveQuotes(context.Background(), cfg, "mongo"); err == nil {
		t.Fatal("expected error when mongo.uri is unset")
	}
}

func TestArchiveQuotesUnknownSource(t *testing.T) {
	if _, err := archiveQuotes(context.Background(), config.Default(), "carrier-pigeon"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}
