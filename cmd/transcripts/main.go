package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quote-archive/pkg/config"
	"quote-archive/pkg/httpclient"
	"quote-archive/pkg/transcripts"
)

// Standalone transcript downloader: fills the local cache without running a
// full collection or enrichment.
func main() {
	var (
		configPath = flag.String("config", "config.toml", "config file path")
		seasonsArg = flag.String("seasons", "", "comma-separated season numbers (default all configured)")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	seasons := cfg.Transcripts.Seasons()
	if *seasonsArg != "" {
		seasons, err = parseSeasons(*seasonsArg)
		if err != nil {
			slog.Error("parse seasons", "error", err)
			os.Exit(1)
		}
	}

	store, err := transcripts.NewStore(cfg.Transcripts.CacheDir, slog.Default())
	if err != nil {
		slog.Error("open transcript cache", "error", err)
		os.Exit(1)
	}

	src := transcripts.NewSpringfieldSource(httpclient.New(), cfg.Transcripts.BaseURL, cfg.Transcripts.ShowSlug)

	start := time.Now()
	downloaded, cached, err := store.DownloadAll(ctx, src, seasons, cfg.Transcripts.EpisodeCounts())
	if err != nil {
		slog.Error("transcript download failed", "error", err)
		os.Exit(1)
	}
	slog.Info("done", "downloaded", downloaded, "cached", cached, "duration", time.Since(start))
}

func parseSeasons(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	seasons := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, n)
	}
	return seasons, nil
}
