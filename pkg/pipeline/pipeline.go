package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"quote-archive/pkg/dedup"
	"quote-archive/pkg/domain"
	"quote-archive/pkg/scrape"
	"quote-archive/pkg/store"
)

// Mirror saves the final collection to a secondary store (e.g. MongoDB).
type Mirror interface {
	SaveAll(ctx context.Context, quotes []domain.Quote) error
}

// Options configures one collection run.
type Options struct {
	// Sources are scraped in order, one at a time. Each source already
	// rate-limits its own HTTP traffic.
	Sources []scrape.Source

	// Threshold is the near-duplicate similarity cutoff.
	Threshold float64

	JSONPath string
	CSVPath  string

	// Mirror is optional; failures there are logged, not fatal, since the
	// JSON archive is the source of truth.
	Mirror Mirror
}

// Collector runs the collection pipeline: load the existing archive, scrape
// every enabled source, merge, clean, deduplicate, sort, export.
type Collector struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCollector builds a collector. A nil logger falls back to slog.Default().
func NewCollector(st *store.Store, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{store: st, logger: logger}
}

// Run executes one collection run and returns the final stats. Nothing is
// persisted until every source has finished: an interrupt mid-run discards
// all new quotes and leaves the archive exactly as it was.
func (c *Collector) Run(ctx context.Context, opts Options) (domain.Stats, error) {
	if opts.Threshold <= 0 {
		opts.Threshold = dedup.DefaultThreshold
	}

	existing := c.store.Load(opts.JSONPath)

	var collected []domain.Quote
	for _, src := range opts.Sources {
		if err := ctx.Err(); err != nil {
			return domain.Stats{}, fmt.Errorf("collection interrupted: %w", err)
		}

		c.logger.Info("scraping source", "source", src.Name())
		quotes, err := src.Scrape(ctx)
		if err != nil {
			// Sources recover from fetch failures internally; an error
			// here means the run itself cannot continue.
			return domain.Stats{}, fmt.Errorf("source %s: %w", src.Name(), err)
		}
		c.logger.Info("source finished", "source", src.Name(), "quotes", len(quotes))
		collected = append(collected, quotes...)
	}

	merged := append(existing, collected...)
	c.logger.Info("merging collections", "existing", len(existing), "new", len(collected))

	cleaned := scrape.CleanAll(merged)
	deduped := dedup.Deduplicate(cleaned, opts.Threshold)
	deduped = dedup.SortQuotes(deduped)
	c.logger.Info("deduplicated", "before", len(cleaned), "after", len(deduped))

	// Last gate before anything touches disk.
	if err := ctx.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("collection interrupted: %w", err)
	}

	if err := c.export(ctx, deduped, opts); err != nil {
		return domain.Stats{}, err
	}

	return store.GenerateStats(deduped), nil
}

func (c *Collector) export(ctx context.Context, quotes []domain.Quote, opts Options) error {
	if err := c.store.SaveJSON(opts.JSONPath, quotes); err != nil {
		return err
	}
	if opts.CSVPath != "" {
		if err := c.store.SaveCSV(opts.CSVPath, quotes); err != nil {
			return err
		}
	}
	if opts.Mirror != nil {
		if err := opts.Mirror.SaveAll(ctx, quotes); err != nil {
			c.logger.Warn("mirror save failed", "error", err)
		}
	}
	return nil
}
