package transcripts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quote-archive/pkg/textmatch"
)

// Key identifies one episode by season and episode number.
type Key struct {
	Season  int
	Episode int
}

// String renders the stable cache key, e.g. "s01e03".
func (k Key) String() string {
	return fmt.Sprintf("s%02de%02d", k.Season, k.Episode)
}

// Entry is one episode's transcript text held in memory for an enrichment
// run. Text is already normalized for comparison.
type Entry struct {
	Key  Key
	Text string
}

// Store caches one raw transcript text file per episode under dir, keyed by
// season/episode. Entries are immutable once written; there is no
// invalidation policy because episode transcripts never change.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the cache directory if needed and returns a store over it.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript cache dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(k Key) string {
	return filepath.Join(s.dir, k.String()+".txt")
}

// Has reports whether a transcript is cached for the episode.
func (s *Store) Has(k Key) bool {
	info, err := os.Stat(s.path(k))
	return err == nil && !info.IsDir()
}

// Get returns the cached raw transcript text for the episode, or false if
// the episode has never been fetched successfully.
func (s *Store) Get(k Key) (string, bool) {
	data, err := os.ReadFile(s.path(k))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put writes a transcript to the cache. The write goes to a temporary file
// first and is renamed into place, so a crash mid-write never leaves a
// corrupt entry that Has reports as present.
func (s *Store) Put(k Key, text string) error {
	path := s.path(k)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename transcript file: %w", err)
	}
	return nil
}

// LoadAll reads every cached transcript for the given seasons into memory,
// normalizing each once up front so the cost is amortized across all quote
// comparisons in an enrichment run. Entries come back in deterministic
// season-then-episode ascending order. episodeCounts maps season number to
// episode count; seasons missing from the map default to 22 episodes.
func (s *Store) LoadAll(seasons []int, episodeCounts map[int]int) []Entry {
	sorted := make([]int, len(seasons))
	copy(sorted, seasons)
	sort.Ints(sorted)

	var entries []Entry
	for _, season := range sorted {
		count, ok := episodeCounts[season]
		if !ok {
			count = 22
		}
		for episode := 1; episode <= count; episode++ {
			k := Key{Season: season, Episode: episode}
			raw, found := s.Get(k)
			if !found {
				continue
			}
			entries = append(entries, Entry{Key: k, Text: textmatch.Normalize(raw)})
		}
	}

	s.logger.Info("loaded transcripts into memory", "count", len(entries))
	return entries
}

// Source fetches raw transcript text and episode titles from an external
// transcript site.
type Source interface {
	// FetchTranscript downloads the raw transcript for one episode. An
	// empty result with nil error means the page had no transcript.
	FetchTranscript(ctx context.Context, season, episode int) (string, error)

	// EpisodeTitles returns the (season, episode) -> title index from the
	// site's episode listing.
	EpisodeTitles(ctx context.Context) (map[Key]string, error)
}

// DownloadAll fetches and caches every missing transcript for the given
// seasons. Failed fetches are logged and skipped without writing, so a later
// run can retry them; cached episodes are never re-fetched. Returns the
// number downloaded and the number already cached.
func (s *Store) DownloadAll(ctx context.Context, src Source, seasons []int, episodeCounts map[int]int) (downloaded, cached int, err error) {
	sorted := make([]int, len(seasons))
	copy(sorted, seasons)
	sort.Ints(sorted)

	for _, season := range sorted {
		count, ok := episodeCounts[season]
		if !ok {
			count = 22
		}
		for episode := 1; episode <= count; episode++ {
			if err := ctx.Err(); err != nil {
				return downloaded, cached, err
			}

			k := Key{Season: season, Episode: episode}
			if s.Has(k) {
				cached++
				continue
			}

			text, ferr := src.FetchTranscript(ctx, season, episode)
			if ferr != nil {
				if ctx.Err() != nil {
					return downloaded, cached, ctx.Err()
				}
				s.logger.Warn("transcript fetch failed", "episode", k.String(), "error", ferr)
				continue
			}
			if strings.TrimSpace(text) == "" {
				s.logger.Warn("transcript page had no script text", "episode", k.String())
				continue
			}

			if werr := s.Put(k, text); werr != nil {
				return downloaded, cached, fmt.Errorf("cache %s: %w", k.String(), werr)
			}
			downloaded++
			s.logger.Info("cached transcript", "episode", k.String(), "chars", len(text))
		}
	}

	return downloaded, cached, nil
}
