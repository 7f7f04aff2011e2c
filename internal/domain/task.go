package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task is a single to-do entry. Owner is the free-text identifier the client
// chose; it is a filter key only.
type Task struct {
	ID          string    `db:"id" json:"id"`
	Owner       string    `db:"user_identifier" json:"owner"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TaskPatch carries the fields of a partial update. Description has three
// states: untouched (SetDescription=false), set, or cleared (nil).
type TaskPatch struct {
	Title          *string
	Description    *string
	SetDescription bool
	Completed      *bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.SetDescription && p.Completed == nil
}

func (p *TaskPatch) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err != nil {
			return fmt.Errorf("title: %w", err)
		}
		p.Title = &title
	}
	if v, ok := raw["description"]; ok {
		var desc *string
		if err := json.Unmarshal(v, &desc); err != nil {
			return fmt.Errorf("description: %w", err)
		}
		p.Description = desc
		p.SetDescription = true
	}
	if v, ok := raw["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(v, &completed); err != nil {
			return fmt.Errorf("completed: %w", err)
		}
		p.Completed = &completed
	}
	return nil
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.SetDescription {
		out["description"] = p.Description
	}
	if p.Completed != nil {
		out["completed"] = *p.Completed
	}
	return json.Marshal(out)
}
