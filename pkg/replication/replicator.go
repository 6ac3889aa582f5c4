package replication

import (
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"quote-archive/pkg/db"
	"quote-archive/pkg/domain"
)

// quoteRow is the wire shape of one quote in the replication target. The id
// is the md5 of the quote text, so re-running replication never duplicates
// rows even across differently ordered archives.
type quoteRow struct {
	ID           string `json:"id"`
	Quote        string `json:"quote"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	EpisodeTitle string `json:"episode_title"`
	Context      string `json:"context"`
	SourceURL    string `json:"source_url"`
	SourceName   string `json:"source_name"`
}

func rowFor(q domain.Quote) quoteRow {
	return quoteRow{
		ID:           fmt.Sprintf("%x", md5.Sum([]byte(q.Text))),
		Quote:        q.Text,
		Season:       q.Season,
		Episode:      q.Episode,
		EpisodeTitle: q.EpisodeTitle,
		Context:      q.Context,
		SourceURL:    q.SourceURL,
		SourceName:   q.SourceName,
	}
}

// Config wires the replication dependencies. Target is any client exposing
// a sql.DB handle (direct Postgres or Supabase in direct mode).
type Config struct {
	Target db.DBProvider
	Logger *slog.Logger
}

// Replicator copies the exported quote archive into a Postgres `quote`
// table. This is a one-shot, "copy everything new" flow: rows already
// present (by id) are skipped.
type Replicator struct {
	pg     db.DBProvider
	logger *slog.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Target == nil {
		return nil, fmt.Errorf("replication target is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Replicator{pg: cfg.Target, logger: logger}, nil
}

// Replicate inserts all quotes not yet present in the target. Quotes are
// processed in parallel batches since each batch is independent.
func (r *Replicator) Replicate(ctx context.Context, quotes []domain.Quote) error {
	if err := r.ensureQuoteSchema(ctx); err != nil {
		return err
	}

	rows := make([]quoteRow, 0, len(quotes))
	for _, q := range quotes {
		if q.Text == "" {
			continue
		}
		rows = append(rows, rowFor(q))
	}

	r.logger.Info("replicating archive", "quotes", len(rows))

	inserted, err := r.processBatches(ctx, rows)
	if err != nil {
		return err
	}

	r.logger.Info("replication complete", "processed", len(rows), "inserted", inserted)
	return nil
}

func (r *Replicator) processBatches(ctx context.Context, rows []quoteRow) (int, error) {
	const batchSize = 100
	const numWorkers = 5

	type batchResult struct {
		inserted int
		err      error
	}

	numBatches := (len(rows) + batchSize - 1) / batchSize
	jobs := make(chan []quoteRow, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		jobs <- rows[start:end]
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				inserted, err := r.processBatch(ctx, batch)
				results <- batchResult{inserted: inserted, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	totalInserted := 0
	for result := range results {
		if result.err != nil {
			return totalInserted, result.err
		}
		totalInserted += result.inserted
	}
	return totalInserted, nil
}

// processBatch skips rows whose id already exists and inserts the rest in
// one transaction.
func (r *Replicator) processBatch(ctx context.Context, batch []quoteRow) (int, error) {
	existing, err := r.existingIDs(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("check existing ids: %w", err)
	}

	toInsert := batch[:0:0]
	for _, row := range batch {
		if !existing[row.ID] {
			toInsert = append(toInsert, row)
		}
	}
	if len(toInsert) == 0 {
		return 0, nil
	}

	if err := r.insertTx(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	return len(toInsert), nil
}

func (r *Replicator) ensureQuoteSchema(ctx context.Context) error {
	if r.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS quote (
  id TEXT PRIMARY KEY,
  quote TEXT NOT NULL,
  season INT NOT NULL DEFAULT 0,
  episode INT NOT NULL DEFAULT 0,
  episode_title TEXT NOT NULL DEFAULT '',
  context TEXT NOT NULL DEFAULT '',
  source_url TEXT NOT NULL DEFAULT '',
  source_name TEXT NOT NULL DEFAULT ''
);`

	if _, err := r.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create quote table: %w", err)
	}
	return nil
}

// existingIDs reports which ids from the batch are already in the target.
// The query comment makes each statement unique, avoiding prepared
// statement cache conflicts when batches run in parallel through a pooler.
func (r *Replicator) existingIDs(ctx context.Context, batch []quoteRow) (map[string]bool, error) {
	if r.pg.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	if len(batch) == 0 {
		return map[string]bool{}, nil
	}

	query := fmt.Sprintf(`/* q_%d_%s */ SELECT id FROM quote WHERE id IN (`, len(batch), batch[0].ID[:8])
	args := make([]interface{}, len(batch))
	for i, row := range batch {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", i+1)
		args[i] = row.ID
	}
	query += ")"

	rows, err := r.pg.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return set, nil
}

func (r *Replicator) insertTx(ctx context.Context, batch []quoteRow) error {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertQuery = `
INSERT INTO quote (id, quote, season, episode, episode_title, context, source_url, source_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range batch {
		if _, err := stmt.ExecContext(ctx,
			row.ID, row.Quote, row.Season, row.Episode,
			row.EpisodeTitle, row.Context, row.SourceURL, row.SourceName,
		); err != nil {
			return fmt.Errorf("insert quote id=%s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
