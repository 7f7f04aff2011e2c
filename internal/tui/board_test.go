package tui

import (
	"testing"

	"ai_todo/internal/domain"
)

func tasks(specs ...string) []*domain.Task {
	out := make([]*domain.Task, 0, len(specs))
	for _, s := range specs {
		done := s[0] == '+'
		id := s
		if done {
			id = s[1:]
		}
		out = append(out, &domain.Task{ID: id, Title: "task " + id, Completed: done})
	}
	return out
}

func boardIDs(b Board) []string {
	var ids []string
	for _, t := range b.Tasks() {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestBoardPutsIncompleteFirst(t *testing.T) {
	b := NewBoard(tasks("+a", "b", "+c", "d"))
	got := boardIDs(b)
	want := []string{"b", "d", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("display order = %v, want %v", got, want)
		}
	}
	if n := b.Number("a"); n != 3 {
		t.Fatalf("Number(a) = %d, want 3", n)
	}
	if n := b.Number("zzz"); n != 0 {
		t.Fatalf("Number(zzz) = %d, want 0", n)
	}
	done, pending := b.Counts()
	if done != 2 || pending != 2 {
		t.Fatalf("counts = %d/%d", done, pending)
	}
}

func TestBoardCursorBounds(t *testing.T) {
	b := NewBoard(tasks("a", "b"))
	b = b.MoveUp()
	if b.Cursor() != 0 {
		t.Fatalf("cursor moved above top: %d", b.Cursor())
	}
	b = b.MoveDown().MoveDown().MoveDown()
	if b.Selected().ID != "b" {
		t.Fatalf("expected b selected, got %s", b.Selected().ID)
	}

	empty := NewBoard(nil)
	if empty.Selected() != nil {
		t.Fatalf("empty board has a selection")
	}
}

func TestBoardReplaceFollowsSelectedTask(t *testing.T) {
	b := NewBoard(tasks("a", "b", "c")).MoveDown() // b
	// b got completed, so it moves to the end
	b = b.Replace(tasks("a", "+b", "c"))
	if b.Selected().ID != "b" {
		t.Fatalf("cursor should follow b, got %s", b.Selected().ID)
	}

	// b deleted: cursor stays in range
	b = b.Replace(tasks("a"))
	if b.Selected() == nil || b.Selected().ID != "a" {
		t.Fatalf("cursor should clamp to a, got %+v", b.Selected())
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(1, 2, 4); got != "[██░░] 1/2" {
		t.Fatalf("progressBar = %q", got)
	}
	if got := progressBar(0, 0, 2); got != "[░░] 0/0" {
		t.Fatalf("progressBar empty = %q", got)
	}
}
