package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ai_todo/internal/domain"

	"github.com/google/uuid"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	user_identifier TEXT    NOT NULL,
	title           TEXT    NOT NULL,
	description     TEXT,
	completed       INTEGER NOT NULL DEFAULT 0,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks (user_identifier, created_at DESC);
`

const sqliteTaskColumns = `id, user_identifier, title, description, completed, created_at, updated_at`

// SQLiteTaskRepository is the embedded store used for local runs and tests.
// Timestamps are unix nanoseconds; rowid breaks ties in creation order.
type SQLiteTaskRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTaskRepository creates the schema if needed.
func NewSQLiteTaskRepository(ctx context.Context, db *sql.DB) (*SQLiteTaskRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteTaskRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

type sqlRow interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row sqlRow) (*domain.Task, error) {
	var (
		t         domain.Task
		desc      sql.NullString
		created   int64
		updated   int64
		completed bool
	)
	if err := row.Scan(&t.ID, &t.Owner, &t.Title, &desc, &completed, &created, &updated); err != nil {
		return nil, err
	}
	if desc.Valid {
		s := desc.String
		t.Description = &s
	}
	t.Completed = completed
	t.CreatedAt = time.Unix(0, created).UTC()
	t.UpdatedAt = time.Unix(0, updated).UTC()
	return &t, nil
}

func (r *SQLiteTaskRepository) List(ctx context.Context, owner string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteTaskColumns+`
		 FROM tasks
		 WHERE user_identifier = ?
		 ORDER BY created_at DESC, rowid DESC`,
		owner,
	)
	if err != nil {
		return nil, unavailable("list tasks", err)
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, unavailable("scan task", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list tasks", err)
	}
	return res, nil
}

func (r *SQLiteTaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanSQLiteTask(r.db.QueryRowContext(ctx, `SELECT `+sqliteTaskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get task", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, owner, title string, description *string) (*domain.Task, error) {
	now := r.now().UnixNano()
	t, err := scanSQLiteTask(r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (id, user_identifier, title, description, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)
		 RETURNING `+sqliteTaskColumns,
		uuid.NewString(), owner, title, optString(description), now, now,
	))
	if err != nil {
		return nil, unavailable("create task", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return r.Get(ctx, id)
	}

	set := &setClause{}
	applyPatch(set, patch)
	set.add("updated_at", r.now().UnixNano())
	set.args = append(set.args, id)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = %s RETURNING %s`, set, set.placeholder(), sqliteTaskColumns)
	t, err := scanSQLiteTask(r.db.QueryRowContext(ctx, query, set.args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("update task", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanSQLiteTask(r.db.QueryRowContext(ctx, `DELETE FROM tasks WHERE id = ? RETURNING `+sqliteTaskColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("delete task", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
