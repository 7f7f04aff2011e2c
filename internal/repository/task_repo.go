package repository

import (
	"context"
	"errors"
	"fmt"

	"ai_todo/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id::text, user_identifier, title, description, completed, created_at, updated_at`

// TaskRepository stores tasks in Postgres.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.Owner, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) List(ctx context.Context, owner string) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_identifier = $1
		 ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, unavailable("list tasks", err)
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
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

func (r *TaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get task", err)
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, owner, title string, description *string) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_identifier, title, description, completed)
		 VALUES ($1, $2, $3, false)
		 RETURNING `+taskColumns,
		owner, title, optString(description),
	))
	if err != nil {
		return nil, unavailable("create task", err)
	}
	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return r.Get(ctx, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	set := &setClause{pg: true}
	applyPatch(set, patch)
	set.parts = append(set.parts, "updated_at = now()")
	set.args = append(set.args, id)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = %s RETURNING %s`, set, set.placeholder(), taskColumns)
	t, err := scanTask(r.db.QueryRow(ctx, query, set.args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("update task", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	t, err := scanTask(r.db.QueryRow(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING `+taskColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("delete task", err)
	}
	return t, nil
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
