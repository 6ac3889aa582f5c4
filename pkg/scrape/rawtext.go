package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"quote-archive/pkg/domain"
)

// quotedStringPattern captures text between ASCII or typographic double
// quotes, spanning newlines.
var quotedStringPattern = regexp.MustCompile(`(?s)["\x{201c}\x{201d}](.*?)["\x{201c}\x{201d}]`)

// RawTextSource parses a local text file of manually pasted quotes,
// handling the common copy-paste formats: quoted strings first, with a
// line-by-line fallback when the file barely uses quote marks.
type RawTextSource struct {
	path   string
	logger *slog.Logger
}

// NewRawTextSource builds an ingester for the given file path.
func NewRawTextSource(path string, logger *slog.Logger) *RawTextSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RawTextSource{path: path, logger: logger}
}

func (s *RawTextSource) Name() string { return "ManualIngest" }

func (s *RawTextSource) Scrape(ctx context.Context) ([]domain.Quote, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read ingest file: %w", err)
	}
	content := string(data)

	var quotes []domain.Quote
	for _, m := range quotedStringPattern.FindAllStringSubmatch(content, -1) {
		candidate := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(candidate) <= 15 {
			continue
		}
		q, ok := MakeQuote(candidate, "Manual Input", s.Name())
		if !ok {
			continue
		}
		q.Context = "Bulk Ingest"
		quotes = append(quotes, q)
	}

	// Sparse results usually mean the file is one quote per line without
	// quote marks.
	if len(quotes) < 3 {
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if utf8.RuneCountInString(line) <= 20 || strings.HasPrefix(line, "http") {
				continue
			}
			if q, ok := MakeQuote(line, "Manual Input", s.Name()); ok {
				quotes = append(quotes, q)
			}
		}
	}

	s.logger.Info("ingested raw text file", "path", s.path, "quotes", len(quotes))
	return quotes, nil
}

var _ Source = (*RawTextSource)(nil)
