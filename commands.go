package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"quote-archive/pkg/config"
	"quote-archive/pkg/db"
	"quote-archive/pkg/domain"
	"quote-archive/pkg/httpclient"
	"quote-archive/pkg/pipeline"
	"quote-archive/pkg/replication"
	"quote-archive/pkg/scrape"
	"quote-archive/pkg/store"
	"quote-archive/pkg/transcripts"
)

type collectFlags struct {
	ingestFile    string
	threshold     float64
	skipSeeds     bool
	skipCurated   bool
	skipWikiquote bool
	skipIMDb      bool
	skipMining    bool
	skipFeed      bool
}

func collectCmd() *cobra.Command {
	var flags collectFlags

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Scrape all sources and rebuild the archive",
		Long: `Collect scrapes every enabled quote source, merges the results with the
existing archive, removes near-duplicates, and writes the archive back.
Interrupting a run discards everything collected so far.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sources, err := buildSources(cfg, flags)
			if err != nil {
				return err
			}

			threshold := flags.threshold
			if threshold == 0 {
				threshold = cfg.Dedup.Threshold
			}

			collector := pipeline.NewCollector(newStore(cfg), slog.Default())
			stats, err := collector.Run(cmd.Context(), pipeline.Options{
				Sources:   sources,
				Threshold: threshold,
				JSONPath:  cfg.Output.JSONPath,
				CSVPath:   cfg.Output.CSVPath,
				Mirror:    mongoMirror(cmd.Context(), cfg),
			})
			if err != nil {
				return err
			}

			fmt.Print(store.RenderStats(stats))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.ingestFile, "ingest", "", "also ingest quotes from a local text file")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "duplicate similarity threshold (default from config)")
	cmd.Flags().BoolVar(&flags.skipSeeds, "skip-seeds", false, "skip the built-in seed quotes")
	cmd.Flags().BoolVar(&flags.skipCurated, "skip-curated", false, "skip curated quote pages")
	cmd.Flags().BoolVar(&flags.skipWikiquote, "skip-wikiquote", false, "skip Wikiquote")
	cmd.Flags().BoolVar(&flags.skipIMDb, "skip-imdb", false, "skip IMDb")
	cmd.Flags().BoolVar(&flags.skipMining, "skip-mining", false, "skip mining cached transcripts")
	cmd.Flags().BoolVar(&flags.skipFeed, "skip-feed", false, "skip the fan feed")
	return cmd
}

// buildSources assembles the scrape source list in collection order. Manual
// ingestion runs first so scraped duplicates of pasted quotes lose to the
// richer scraped metadata during dedup, matching how curated metadata wins.
func buildSources(cfg config.Config, flags collectFlags) ([]scrape.Source, error) {
	client := httpclient.New()
	logger := slog.Default()

	var sources []scrape.Source

	if flags.ingestFile != "" {
		sources = append(sources, scrape.NewRawTextSource(flags.ingestFile, logger))
	}
	if !flags.skipSeeds {
		sources = append(sources, scrape.NewSeedSource())
	}
	if !flags.skipCurated {
		pages := curatedPages(cfg)
		sources = append(sources, scrape.NewCuratedSource(client, cfg.Show.Character, pages, logger))
	}
	if !flags.skipWikiquote && cfg.Sources.WikiquoteURL != "" {
		sources = append(sources, scrape.NewWikiquoteSource(client, cfg.Sources.WikiquoteURL, cfg.Show.SpeakerAliases, cfg.Show.Character, logger))
	}
	if !flags.skipIMDb && cfg.Sources.IMDbURL != "" {
		sources = append(sources, scrape.NewIMDbSource(client, cfg.Sources.IMDbURL, cfg.Show.Character, logger))
	}
	if !flags.skipMining {
		ts, err := transcripts.NewStore(cfg.Transcripts.CacheDir, logger)
		if err != nil {
			return nil, fmt.Errorf("open transcript cache: %w", err)
		}
		sources = append(sources, scrape.NewMinerSource(ts, cfg.Show.SpeakerAliases, logger))
	}
	if !flags.skipFeed && cfg.Sources.FeedURL != "" {
		sources = append(sources, scrape.NewFeedSource(client, cfg.Sources.FeedURL, cfg.Show.Character, cfg.Sources.FeedMaxItems, logger))
	}

	return sources, nil
}

func curatedPages(cfg config.Config) []scrape.CuratedPage {
	if len(cfg.Sources.CuratedPages) == 0 {
		return scrape.DefaultCuratedPages()
	}
	pages := make([]scrape.CuratedPage, len(cfg.Sources.CuratedPages))
	for i, p := range cfg.Sources.CuratedPages {
		pages[i] = scrape.CuratedPage{URL: p.URL, Name: p.Name, Parser: p.Parser}
	}
	return pages
}

func enrichCmd() *cobra.Command {
	var (
		seasons  []int
		download bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Tag archived quotes with season and episode metadata",
		Long: `Enrich searches episode transcripts for each untagged quote and, on a
match, tags it with the season, episode, and episode title. Transcripts
are cached locally; pass --download to fetch missing ones first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ts, err := transcripts.NewStore(cfg.Transcripts.CacheDir, slog.Default())
			if err != nil {
				return fmt.Errorf("open transcript cache: %w", err)
			}

			src := transcripts.NewSpringfieldSource(httpclient.New(), cfg.Transcripts.BaseURL, cfg.Transcripts.ShowSlug)

			if len(seasons) == 0 {
				seasons = cfg.Transcripts.Seasons()
			}

			enrichment := pipeline.NewEnrichment(newStore(cfg), ts, src, slog.Default())
			stats, err := enrichment.Run(cmd.Context(), pipeline.EnrichmentOptions{
				Seasons:       seasons,
				EpisodeCounts: cfg.Transcripts.EpisodeCounts(),
				Download:      download,
				JSONPath:      cfg.Output.JSONPath,
				CSVPath:       cfg.Output.CSVPath,
			})
			if err != nil {
				return err
			}

			fmt.Print(store.RenderStats(stats))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&seasons, "seasons", nil, "seasons to enrich against (default all configured)")
	cmd.Flags().BoolVar(&download, "download", false, "download missing transcripts before enriching")
	return cmd
}

func replicateCmd() *cobra.Command {
	var (
		target string
		from   string
	)

	cmd := &cobra.Command{
		Use:   "replicate",
		Short: "Copy the archive into Postgres or Supabase",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			quotes, err := archiveQuotes(cmd.Context(), cfg, from)
			if err != nil {
				return err
			}

			return replicate(cmd.Context(), cfg, target, quotes)
		},
	}

	cmd.Flags().StringVar(&target, "target", "postgres", "replication target: postgres or supabase")
	cmd.Flags().StringVar(&from, "from", "archive", "replication source: archive or mongo")
	return cmd
}

// archiveQuotes loads the quotes to replicate, from the JSON archive or,
// for installs that only kept the mirror, straight out of MongoDB.
func archiveQuotes(ctx context.Context, cfg config.Config, from string) ([]domain.Quote, error) {
	switch from {
	case "archive":
		quotes := newStore(cfg).Load(cfg.Output.JSONPath)
		if len(quotes) == 0 {
			return nil, fmt.Errorf("archive %s is empty, nothing to replicate", cfg.Output.JSONPath)
		}
		return quotes, nil

	case "mongo":
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("replicating from mongo requires mongo.uri to be configured")
		}
		client := db.NewMongoClient(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		defer client.Close(ctx)

		quotes, err := client.AllQuotes(ctx)
		if err != nil {
			return nil, err
		}
		if len(quotes) == 0 {
			return nil, fmt.Errorf("mongo collection %s.%s is empty, nothing to replicate", cfg.Mongo.Database, cfg.Mongo.Collection)
		}
		return quotes, nil

	default:
		return nil, fmt.Errorf("unknown replication source %q", from)
	}
}

func replicate(ctx context.Context, cfg config.Config, target string, quotes []domain.Quote) error {
	logger := slog.Default()

	switch target {
	case "postgres":
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.Postgres.DSN})
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close()

		rep, err := replication.NewReplicator(replication.Config{Target: client, Logger: logger})
		if err != nil {
			return err
		}
		return rep.Replicate(ctx, quotes)

	case "supabase":
		client := db.NewSupabaseClient(db.SupabaseConfig{
			SupabaseURL: cfg.Supabase.URL,
			SupabaseKey: cfg.Supabase.Key,
		})
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close()

		rep, err := replication.NewSupabaseReplicator(client, cfg.Supabase.Table, logger)
		if err != nil {
			return err
		}
		return rep.Replicate(ctx, quotes)

	default:
		return fmt.Errorf("unknown replication target %q", target)
	}
}

// mongoMirror returns the optional MongoDB mirror, nil when unconfigured or
// unreachable. The mirror is best-effort; the JSON archive stays the source
// of truth.
func mongoMirror(ctx context.Context, cfg config.Config) pipeline.Mirror {
	if cfg.Mongo.URI == "" {
		return nil
	}
	client := db.NewMongoClient(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err := client.Connect(ctx); err != nil {
		slog.Warn("mongo mirror unavailable", "error", err)
		return nil
	}
	return client
}
