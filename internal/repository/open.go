package repository

import (
	"context"

	"ai_todo/internal/db"
)

// OpenStore picks the backend from dsn: sqlite://<path> for the embedded
// store, anything else is a Postgres URL. The returned func releases it.
func OpenStore(ctx context.Context, dsn string) (TaskStore, func(), error) {
	if db.IsSQLite(dsn) {
		conn, err := db.OpenSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		store, err := NewSQLiteTaskRepository(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store, func() { conn.Close() }, nil
	}

	pool := db.Connect(dsn)
	return NewTaskRepository(pool), pool.Close, nil
}
