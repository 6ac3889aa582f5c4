package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"quote-archive/pkg/dedup"
	"quote-archive/pkg/domain"
	"quote-archive/pkg/enrich"
	"quote-archive/pkg/store"
	"quote-archive/pkg/transcripts"
)

// EnrichmentOptions configures one enrichment run over an existing archive.
type EnrichmentOptions struct {
	// Seasons restricts which seasons' transcripts are searched.
	Seasons []int

	// EpisodeCounts maps season number to episode count; missing seasons
	// default inside the transcript store.
	EpisodeCounts map[int]int

	// Download fetches missing transcripts before enriching. Without it
	// only already-cached transcripts are used.
	Download bool

	JSONPath string
	CSVPath  string
}

// Enrichment tags untagged archived quotes with season/episode metadata by
// searching episode transcripts, then writes the archive back.
type Enrichment struct {
	store       *store.Store
	transcripts *transcripts.Store
	source      transcripts.Source
	enricher    *enrich.Enricher
	logger      *slog.Logger
}

// NewEnrichment wires an enrichment run. A nil logger falls back to
// slog.Default().
func NewEnrichment(st *store.Store, ts *transcripts.Store, src transcripts.Source, logger *slog.Logger) *Enrichment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enrichment{
		store:       st,
		transcripts: ts,
		source:      src,
		enricher:    enrich.New(logger),
		logger:      logger,
	}
}

// Run loads the archive, enriches it against the transcript cache, and
// persists the result. Cancellation before the save discards all tagging
// work; the archive on disk is never half-written.
func (e *Enrichment) Run(ctx context.Context, opts EnrichmentOptions) (domain.Stats, error) {
	quotes := e.store.Load(opts.JSONPath)
	if len(quotes) == 0 {
		return domain.Stats{}, fmt.Errorf("no quotes to enrich in %s", opts.JSONPath)
	}

	if opts.Download {
		downloaded, cached, err := e.transcripts.DownloadAll(ctx, e.source, opts.Seasons, opts.EpisodeCounts)
		if err != nil {
			return domain.Stats{}, fmt.Errorf("download transcripts: %w", err)
		}
		e.logger.Info("transcripts ready", "downloaded", downloaded, "cached", cached)
	}

	titles, err := e.source.EpisodeTitles(ctx)
	if err != nil {
		e.logger.Warn("episode title lookup failed, tagging without titles", "error", err)
		titles = map[transcripts.Key]string{}
	}

	entries := e.transcripts.LoadAll(opts.Seasons, opts.EpisodeCounts)
	if len(entries) == 0 {
		return domain.Stats{}, fmt.Errorf("no cached transcripts for seasons %v", opts.Seasons)
	}

	tagged := e.enricher.Enrich(quotes, entries, titles)
	e.logger.Info("enrichment finished", "tagged", tagged, "total", len(quotes))

	quotes = dedup.SortQuotes(quotes)

	if err := ctx.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("enrichment interrupted: %w", err)
	}

	if err := e.store.SaveJSON(opts.JSONPath, quotes); err != nil {
		return domain.Stats{}, err
	}
	if opts.CSVPath != "" {
		if err := e.store.SaveCSV(opts.CSVPath, quotes); err != nil {
			return domain.Stats{}, err
		}
	}

	return store.GenerateStats(quotes), nil
}
