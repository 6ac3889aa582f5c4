package archive

import (
	"crypto/md5"
	"errors"
	"math/big"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"quote-archive/pkg/domain"
	"quote-archive/pkg/store"
)

// MinQueryLength is the shortest search query Search accepts.
const MinQueryLength = 3

var (
	// ErrNoQuotes is returned when an operation needs at least one quote
	// and the archive is empty.
	ErrNoQuotes = errors.New("no quotes available")

	// ErrQueryTooShort is returned by Search for queries under
	// MinQueryLength runes.
	ErrQueryTooShort = errors.New("search query too short")
)

// Archive is the read model over a loaded quote collection. It is built
// once from the exported archive and never mutated, so all methods are safe
// for concurrent use.
type Archive struct {
	quotes []domain.Quote
	now    func() time.Time
}

// New builds an archive over the given quotes. The slice is not copied;
// callers must not mutate it afterwards.
func New(quotes []domain.Quote) *Archive {
	return &Archive{quotes: quotes, now: time.Now}
}

// Len reports the number of quotes in the archive.
func (a *Archive) Len() int { return len(a.quotes) }

// List returns quotes, optionally filtered by season and episode. Zero
// means no filter, matching the convention that 0 is "unknown".
func (a *Archive) List(season, episode int) []domain.Quote {
	if season == 0 && episode == 0 {
		return a.quotes
	}

	var out []domain.Quote
	for _, q := range a.quotes {
		if season != 0 && q.Season != season {
			continue
		}
		if episode != 0 && q.Episode != episode {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Random returns one uniformly random quote.
func (a *Archive) Random() (domain.Quote, error) {
	if len(a.quotes) == 0 {
		return domain.Quote{}, ErrNoQuotes
	}
	return a.quotes[rand.Intn(len(a.quotes))], nil
}

// Featured returns the quote of the day. The pick hashes the current
// calendar date, so every caller sees the same quote until midnight and the
// pick changes daily.
func (a *Archive) Featured() (domain.Quote, error) {
	if len(a.quotes) == 0 {
		return domain.Quote{}, ErrNoQuotes
	}

	today := a.now().Format("2006-01-02")
	sum := md5.Sum([]byte(today))

	var n big.Int
	n.SetBytes(sum[:])
	idx := n.Mod(&n, big.NewInt(int64(len(a.quotes)))).Int64()

	return a.quotes[idx], nil
}

// Search returns quotes whose text or context contains the query,
// case-insensitively. Queries under MinQueryLength runes are rejected.
func (a *Archive) Search(query string) ([]domain.Quote, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	needle := strings.ToLower(query)
	var out []domain.Quote
	for _, q := range a.quotes {
		if strings.Contains(strings.ToLower(q.Text), needle) ||
			strings.Contains(strings.ToLower(q.Context), needle) {
			out = append(out, q)
		}
	}
	return out, nil
}

// Stats summarizes the archive.
func (a *Archive) Stats() domain.Stats {
	return store.GenerateStats(a.quotes)
}
