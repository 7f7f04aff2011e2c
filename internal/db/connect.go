package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"ai_todo/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

const sqlitePrefix = "sqlite://"

// IsSQLite reports whether dsn points at the embedded SQLite store.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, sqlitePrefix)
}

// Connect opens the Postgres pool and exits if it is unreachable.
func Connect(dsn string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected", "driver", "postgres")
	return pool
}

// OpenSQLite opens a sqlite://<path> DSN. ":memory:" gives a private in-memory
// database; it is pinned to one connection so every query sees the same data.
func OpenSQLite(dsn string) (*sql.DB, error) {
	path := strings.TrimPrefix(dsn, sqlitePrefix)
	if path == "" {
		path = ":memory:"
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("database connected", "driver", "sqlite", "path", path)
	return conn, nil
}
