package tui

import (
	"ai_todo/internal/chat"
	"ai_todo/internal/domain"
)

// Board is the list the user sees: the owner's tasks in display order
// (incomplete first). It is never patched in place; each refresh builds a
// new Board and the last response to arrive wins.
type Board struct {
	tasks    []*domain.Task
	selected int
}

// NewBoard orders tasks for display. tasks is expected newest-first, as
// the server returns them.
func NewBoard(tasks []*domain.Task) Board {
	return Board{tasks: chat.DisplayOrder(tasks)}
}

// Replace builds the next board, keeping the cursor on the same task when
// it still exists.
func (b Board) Replace(tasks []*domain.Task) Board {
	next := NewBoard(tasks)
	if cur := b.Selected(); cur != nil {
		for i, t := range next.tasks {
			if t.ID == cur.ID {
				next.selected = i
				return next
			}
		}
	}
	next.selected = min(b.selected, max(len(next.tasks)-1, 0))
	return next
}

// Tasks returns the display-ordered tasks; index+1 is the number users
// type in chat ("#2").
func (b Board) Tasks() []*domain.Task { return b.tasks }

func (b Board) Len() int { return len(b.tasks) }

func (b Board) Selected() *domain.Task {
	if b.selected < 0 || b.selected >= len(b.tasks) {
		return nil
	}
	return b.tasks[b.selected]
}

func (b Board) Cursor() int { return b.selected }

func (b Board) MoveUp() Board {
	if b.selected > 0 {
		b.selected--
	}
	return b
}

func (b Board) MoveDown() Board {
	if b.selected < len(b.tasks)-1 {
		b.selected++
	}
	return b
}

// Counts returns completed and pending totals.
func (b Board) Counts() (done, pending int) {
	for _, t := range b.tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return done, pending
}

// Number is the 1-based display number of the task with id, or 0.
func (b Board) Number(id string) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i + 1
		}
	}
	return 0
}
