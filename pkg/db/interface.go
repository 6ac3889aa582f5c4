package db

import "database/sql"

// DBProvider is implemented by clients that expose a sql.DB handle, letting
// the replicator treat PostgresClient and SupabaseClient interchangeably.
type DBProvider interface {
	DB() *sql.DB
}
