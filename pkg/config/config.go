package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Show identifies who is being collected and how their lines are labeled.
type Show struct {
	Name string `toml:"name"`
	// Character is the surname quotes are attributed to on quote sites.
	Character string `toml:"character"`
	// SpeakerAliases are the names the character's dialogue appears under
	// in transcripts and dialogue lists.
	SpeakerAliases []string `toml:"speaker_aliases"`
}

// Transcripts configures the transcript site and local cache.
type Transcripts struct {
	BaseURL  string `toml:"base_url"`
	ShowSlug string `toml:"show_slug"`
	CacheDir string `toml:"cache_dir"`
	// SeasonEpisodes lists episodes per season; index 0 is season 1.
	// Seasons past the end of the list default to 22 episodes.
	SeasonEpisodes []int `toml:"season_episodes"`
}

// CuratedPage is one pre-compiled quote page to scrape.
type CuratedPage struct {
	URL    string `toml:"url"`
	Name   string `toml:"name"`
	Parser string `toml:"parser"`
}

// Sources configures where quotes are collected from.
type Sources struct {
	WikiquoteURL string        `toml:"wikiquote_url"`
	IMDbURL      string        `toml:"imdb_url"`
	FeedURL      string        `toml:"feed_url"`
	FeedMaxItems int           `toml:"feed_max_items"`
	CuratedPages []CuratedPage `toml:"curated_pages"`
}

// Output names the exported archive files.
type Output struct {
	JSONPath string `toml:"json_path"`
	CSVPath  string `toml:"csv_path"`
}

// Dedup tunes the near-duplicate detector.
type Dedup struct {
	Threshold float64 `toml:"threshold"`
}

// Server configures the read API.
type Server struct {
	Addr string `toml:"addr"`
}

// Mongo configures the optional MongoDB mirror of the archive.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Postgres configures the optional Postgres replication target.
type Postgres struct {
	DSN string `toml:"dsn"`
}

// Supabase configures the optional Supabase replication target.
type Supabase struct {
	URL   string `toml:"url"`
	Key   string `toml:"key"`
	Table string `toml:"table"`
}

// Config is the full application configuration.
type Config struct {
	Show        Show        `toml:"show"`
	Transcripts Transcripts `toml:"transcripts"`
	Sources     Sources     `toml:"sources"`
	Output      Output      `toml:"output"`
	Dedup       Dedup       `toml:"dedup"`
	Server      Server      `toml:"server"`
	Mongo       Mongo       `toml:"mongo"`
	Postgres    Postgres    `toml:"postgres"`
	Supabase    Supabase    `toml:"supabase"`
}

// Default returns the configuration the tool ships with, tuned for
// collecting Raymond Reddington quotes from The Blacklist.
func Default() Config {
	return Config{
		Show: Show{
			Name:           "The Blacklist",
			Character:      "Reddington",
			SpeakerAliases: []string{"Red", "Reddington", "Raymond"},
		},
		Transcripts: Transcripts{
			BaseURL:  "https://www.springfieldspringfield.co.uk",
			ShowSlug: "the-blacklist",
			CacheDir: "cache/transcripts",
			// Aired episode counts for seasons 1-10.
			SeasonEpisodes: []int{22, 22, 23, 22, 22, 22, 19, 22, 22, 22},
		},
		Sources: Sources{
			WikiquoteURL: "https://en.wikiquote.org/wiki/The_Blacklist_(TV_series)",
			IMDbURL:      "https://www.imdb.com/title/tt2741602/quotes/",
			FeedMaxItems: 20,
		},
		Output: Output{
			JSONPath: "output/reddington_quotes.json",
			CSVPath:  "output/reddington_quotes.csv",
		},
		Dedup: Dedup{
			Threshold: 0.85,
		},
		Server: Server{
			Addr: ":8000",
		},
		Mongo: Mongo{
			Database:   "quotearchive",
			Collection: "quotes",
		},
		Supabase: Supabase{
			Table: "quote",
		},
	}
}

// Load reads the TOML config at path, layered over defaults, then applies
// environment overrides. A missing file is not an error: defaults plus the
// environment are a complete configuration. Secrets normally arrive via the
// environment (or a .env file), not the TOML.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to defaults.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env is optional; absence is the normal case outside development.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		c.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		c.Supabase.Key = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
}

func (c *Config) validate() error {
	if c.Show.Character == "" {
		return fmt.Errorf("show.character must be set")
	}
	if len(c.Show.SpeakerAliases) == 0 {
		return fmt.Errorf("show.speaker_aliases must not be empty")
	}
	if c.Dedup.Threshold <= 0 || c.Dedup.Threshold > 1 {
		return fmt.Errorf("dedup.threshold must be in (0, 1], got %v", c.Dedup.Threshold)
	}
	if c.Output.JSONPath == "" {
		return fmt.Errorf("output.json_path must be set")
	}
	return nil
}

// EpisodeCounts converts the per-season episode list into the map keyed by
// season number the transcript store expects.
func (t Transcripts) EpisodeCounts() map[int]int {
	counts := make(map[int]int, len(t.SeasonEpisodes))
	for i, n := range t.SeasonEpisodes {
		counts[i+1] = n
	}
	return counts
}

// Seasons returns all season numbers the episode list covers, in order.
func (t Transcripts) Seasons() []int {
	seasons := make([]int, len(t.SeasonEpisodes))
	for i := range t.SeasonEpisodes {
		seasons[i] = i + 1
	}
	return seasons
}
