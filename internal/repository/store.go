package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai_todo/internal/domain"
)

// TaskStore is the persistence boundary for tasks. Every call is one
// independent round-trip; there are no cross-call transactions.
type TaskStore interface {
	List(ctx context.Context, owner string) ([]*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, owner, title string, description *string) (*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	// Delete removes the task and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.Task, error)
	Ping(ctx context.Context) error
}

// unavailable wraps a backend error so callers can match ErrStoreUnavailable.
// Context cancellation is kept visible through the chain.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

// setClause builds "col = $n" (or "col = ?") fragments for a patch.
type setClause struct {
	parts []string
	args  []any
	pg    bool
}

func (s *setClause) add(col string, v any) {
	s.args = append(s.args, v)
	if s.pg {
		s.parts = append(s.parts, fmt.Sprintf("%s = $%d", col, len(s.args)))
	} else {
		s.parts = append(s.parts, col+" = ?")
	}
}

func (s *setClause) placeholder() string {
	if s.pg {
		return fmt.Sprintf("$%d", len(s.args))
	}
	return "?"
}

func (s *setClause) String() string {
	return strings.Join(s.parts, ", ")
}

func applyPatch(s *setClause, patch domain.TaskPatch) {
	if patch.Title != nil {
		s.add("title", *patch.Title)
	}
	if patch.SetDescription {
		s.add("description", optString(patch.Description))
	}
	if patch.Completed != nil {
		s.add("completed", *patch.Completed)
	}
}

// optString turns a nullable string into a driver value (nil -> NULL).
func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
