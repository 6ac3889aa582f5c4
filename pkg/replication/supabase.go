package replication

import (
	"context"
	"fmt"
	"log/slog"

	"quote-archive/pkg/db"
	"quote-archive/pkg/domain"
)

// SupabaseReplicator copies the archive into a Supabase project. When the
// client has a direct Postgres connection it reuses the SQL replicator;
// otherwise it upserts through the REST SDK.
type SupabaseReplicator struct {
	client *db.SupabaseClient
	table  string
	logger *slog.Logger
}

// NewSupabaseReplicator builds a replicator targeting the given table.
func NewSupabaseReplicator(client *db.SupabaseClient, table string, logger *slog.Logger) (*SupabaseReplicator, error) {
	if client == nil {
		return nil, fmt.Errorf("supabase client is required")
	}
	if table == "" {
		return nil, fmt.Errorf("supabase table is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SupabaseReplicator{client: client, table: table, logger: logger}, nil
}

// Replicate pushes all quotes to Supabase.
func (r *SupabaseReplicator) Replicate(ctx context.Context, quotes []domain.Quote) error {
	if r.client.HasDirectDB() {
		rep, err := NewReplicator(Config{Target: r.client, Logger: r.logger})
		if err != nil {
			return err
		}
		return rep.Replicate(ctx, quotes)
	}

	sdk := r.client.SDK()
	if sdk == nil {
		return fmt.Errorf("supabase client has neither direct DB nor SDK")
	}

	const batchSize = 100
	rows := make([]quoteRow, 0, len(quotes))
	for _, q := range quotes {
		if q.Text == "" {
			continue
		}
		rows = append(rows, rowFor(q))
	}

	r.logger.Info("replicating archive via supabase REST", "quotes", len(rows), "table", r.table)

	for start := 0; start < len(rows); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		// Upsert on id makes re-runs idempotent.
		if _, _, err := sdk.From(r.table).Upsert(rows[start:end], "id", "", "").Execute(); err != nil {
			return fmt.Errorf("upsert batch [%d:%d]: %w", start, end, err)
		}
	}

	r.logger.Info("supabase replication complete", "quotes", len(rows))
	return nil
}
