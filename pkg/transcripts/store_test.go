package transcripts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quote-archive/pkg/httpclient"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestStorePutGet(t *testing.T) {
	store := newTestStore(t)
	key := Key{Season: 1, Episode: 3}
	text := "Red: You look familiar. Have I threatened you before?\n"

	if store.Has(key) {
		t.Fatal("Has reported true before Put")
	}
	if err := store.Put(key, text); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !store.Has(key) {
		t.Error("Has reported false after Put")
	}

	got, found := store.Get(key)
	if !found {
		t.Fatal("Get did not find entry after Put")
	}
	if got != text {
		t.Errorf("Get returned %q, want %q", got, text)
	}
}

func TestStoreKeyFormat(t *testing.T) {
	key := Key{Season: 1, Episode: 3}
	if key.String() != "s01e03" {
		t.Errorf("Key.String() = %q, want s01e03", key.String())
	}

	store := newTestStore(t)
	if err := store.Put(key, "text"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "s01e03.txt")); err != nil {
		t.Errorf("expected cache file s01e03.txt: %v", err)
	}
}

func TestStoreGetAbsent(t *testing.T) {
	store := newTestStore(t)
	if _, found := store.Get(Key{Season: 9, Episode: 9}); found {
		t.Error("Get found an entry in an empty store")
	}
}

func TestLoadAllNormalizesAndOrders(t *testing.T) {
	store := newTestStore(t)
	put := func(s, e int, text string) {
		t.Helper()
		if err := store.Put(Key{Season: s, Episode: e}, text); err != nil {
			t.Fatalf("Put s%02de%02d: %v", s, e, err)
		}
	}
	put(2, 1, "Second Season, First!")
	put(1, 3, "You talk TOO much.")
	put(1, 1, "Pilot episode text...")

	entries := store.LoadAll([]int{2, 1}, map[int]int{1: 22, 2: 22})

	if len(entries) != 3 {
		t.Fatalf("LoadAll returned %d entries, want 3", len(entries))
	}

	wantOrder := []Key{{1, 1}, {1, 3}, {2, 1}}
	for i, want := range wantOrder {
		if entries[i].Key != want {
			t.Errorf("entry %d has key %v, want %v", i, entries[i].Key, want)
		}
	}

	if entries[1].Text != "you talk too much" {
		t.Errorf("entry text not normalized: %q", entries[1].Text)
	}
}

type fakeSource struct {
	texts  map[Key]string
	errs   map[Key]error
	calls  []Key
	titles map[Key]string
}

func (f *fakeSource) FetchTranscript(_ context.Context, season, episode int) (string, error) {
	k := Key{Season: season, Episode: episode}
	f.calls = append(f.calls, k)
	if err, ok := f.errs[k]; ok {
		return "", err
	}
	return f.texts[k], nil
}

func (f *fakeSource) EpisodeTitles(context.Context) (map[Key]string, error) {
	return f.titles, nil
}

func TestDownloadAllSkipsCachedAndFailed(t *testing.T) {
	store := newTestStore(t)
	if err := store.Put(Key{1, 1}, "already cached"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	src := &fakeSource{
		texts: map[Key]string{
			{1, 2}: "episode two script",
		},
		errs: map[Key]error{
			{1, 3}: errors.New("http 503"),
		},
	}

	downloaded, cached, err := store.DownloadAll(context.Background(), src, []int{1}, map[int]int{1: 3})
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}
	if downloaded != 1 || cached != 1 {
		t.Errorf("downloaded=%d cached=%d, want 1 and 1", downloaded, cached)
	}

	// Cached episode must not be re-fetched.
	for _, k := range src.calls {
		if (k == Key{1, 1}) {
			t.Error("DownloadAll re-fetched an already cached episode")
		}
	}

	// Failed fetch must never create a retrievable cache entry.
	if store.Has(Key{1, 3}) {
		t.Error("failed fetch produced a cache entry")
	}
	if got, _ := store.Get(Key{1, 2}); got != "episode two script" {
		t.Errorf("downloaded transcript not cached correctly: %q", got)
	}
}

func TestDownloadAllEmptyTextNotCached(t *testing.T) {
	store := newTestStore(t)
	src := &fakeSource{texts: map[Key]string{{1, 1}: "   \n"}}

	downloaded, _, err := store.DownloadAll(context.Background(), src, []int{1}, map[int]int{1: 1})
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}
	if downloaded != 0 {
		t.Errorf("downloaded = %d, want 0", downloaded)
	}
	if store.Has(Key{1, 1}) {
		t.Error("blank transcript was cached")
	}
}

func TestDownloadAllHonorsCancellation(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{texts: map[Key]string{{1, 1}: "text"}}
	_, _, err := store.DownloadAll(ctx, src, []int{1}, map[int]int{1: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("DownloadAll error = %v, want context.Canceled", err)
	}
	if store.Has(Key{1, 1}) {
		t.Error("cancelled run wrote cache entries")
	}
}

func TestSpringfieldSourceFetchTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/view_episode_scripts.php":
			fmt.Fprint(w, `<html><body>
				<h1>The Blacklist s01e03 Episode Script</h1>
				<div class="scrolling-script-container"> You look familiar. Have I threatened you before? </div>
			</body></html>`)
		case r.URL.Path == "/episode_scripts.php":
			fmt.Fprint(w, `<html><body>
				<a href="view_episode_scripts.php?tv-show=the-blacklist&episode=s01e01">1. Pilot</a>
				<a href="view_episode_scripts.php?tv-show=the-blacklist&episode=s01e03">3. Wujing</a>
				<a href="/somewhere-else">About</a>
			</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewSpringfieldSource(httpclient.NewWithDelay(0, 0), server.URL, "the-blacklist")

	text, err := src.FetchTranscript(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("FetchTranscript failed: %v", err)
	}
	if want := "You look familiar"; !strings.Contains(text, want) {
		t.Errorf("transcript %q does not contain %q", text, want)
	}

	titles, err := src.EpisodeTitles(context.Background())
	if err != nil {
		t.Fatalf("EpisodeTitles failed: %v", err)
	}
	if titles[Key{1, 1}] != "Pilot" {
		t.Errorf("title for s01e01 = %q, want Pilot", titles[Key{1, 1}])
	}
	if titles[Key{1, 3}] != "Wujing" {
		t.Errorf("title for s01e03 = %q, want Wujing", titles[Key{1, 3}])
	}
	if len(titles) != 2 {
		t.Errorf("title index has %d entries, want 2", len(titles))
	}
}

func TestSpringfieldSourceNoScriptContainer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><p>nothing here</p></body></html>")
	}))
	defer server.Close()

	src := NewSpringfieldSource(httpclient.NewWithDelay(0, 0), server.URL, "some-show")
	text, err := src.FetchTranscript(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("FetchTranscript returned error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty transcript, got %q", text)
	}
}
