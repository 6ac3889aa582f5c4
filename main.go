package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quote-archive/pkg/api"
	"quote-archive/pkg/archive"
	"quote-archive/pkg/config"
	"quote-archive/pkg/store"
)

var configPath string

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "quote-archive",
		Short:         "Collect, enrich, and serve attributed TV quotes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "config file path")

	rootCmd.AddCommand(collectCmd())
	rootCmd.AddCommand(enrichCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(replicateCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted, no changes saved")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func newStore(cfg config.Config) *store.Store {
	return store.New("quote-archive", fmt.Sprintf("%s quote compendium", cfg.Show.Name), slog.Default())
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only quote API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			quotes := newStore(cfg).Load(cfg.Output.JSONPath)
			if len(quotes) == 0 {
				slog.Warn("archive is empty, serving anyway", "path", cfg.Output.JSONPath)
			}

			server := api.NewServer(archive.New(quotes), slog.Default())
			return server.Run(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print archive statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			quotes := newStore(cfg).Load(cfg.Output.JSONPath)
			if len(quotes) == 0 {
				return fmt.Errorf("archive %s is empty", cfg.Output.JSONPath)
			}

			fmt.Print(store.RenderStats(store.GenerateStats(quotes)))
			return nil
		},
	}
}
