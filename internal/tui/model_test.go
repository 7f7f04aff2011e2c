package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"ai_todo/internal/chat"
	"ai_todo/internal/domain"
	"ai_todo/internal/interpreter"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type memAPI struct {
	mu     sync.Mutex
	tasks  []*domain.Task // newest first
	nextID int
}

func (a *memAPI) List(ctx context.Context, owner string) ([]*domain.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*domain.Task
	for _, t := range a.tasks {
		if t.Owner == owner {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (a *memAPI) Create(ctx context.Context, owner, title string, description *string) (*domain.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	a.nextID++
	t := &domain.Task{ID: fmt.Sprintf("t%d", a.nextID), Owner: owner, Title: title, Description: description}
	a.tasks = append([]*domain.Task{t}, a.tasks...)
	return t, nil
}

func (a *memAPI) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.tasks {
		if t.ID == id {
			if patch.Title != nil {
				t.Title = *patch.Title
			}
			if patch.Completed != nil {
				t.Completed = *patch.Completed
			}
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (a *memAPI) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, t := range a.tasks {
		if t.ID == id {
			a.tasks = append(a.tasks[:i], a.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memIdentity struct{ value string }

func (m *memIdentity) Set(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("%w: identifier cannot be empty", domain.ErrValidation)
	}
	m.value = v
	return v, nil
}

func (m *memIdentity) Clear() error {
	m.value = ""
	return nil
}

type echoInterpreter struct {
	got     []string
	mutated bool
}

func (e *echoInterpreter) Interpret(ctx context.Context, owner, text string) (*interpreter.Reply, error) {
	e.got = append(e.got, text)
	return &interpreter.Reply{Message: "ok: " + text, DidMutate: e.mutated}, nil
}

// drive feeds msg into the model and runs resulting commands until none
// are left, like the bubbletea runtime would.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next, cmd := m.Update(queue[0])
		queue = queue[1:]
		m = next.(Model)
		if cmd == nil {
			continue
		}
		out := cmd()
		switch out.(type) {
		case tasksLoadedMsg, mutatedMsg, chatReplyMsg:
			queue = append(queue, out)
		}
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// staticCursor keeps focus changes from returning blink timers.
func staticCursor(m Model) Model {
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

func newTestModel(t *testing.T, api *memAPI, interp chat.Interpreter) Model {
	t.Helper()
	m := staticCursor(New(api, chat.NewRelay(interp), &memIdentity{}, "alice"))
	return drive(t, m, m.Init()())
}

func TestIdentifyThenLoad(t *testing.T) {
	api := &memAPI{}
	_, _ = api.Create(context.Background(), "bob", "Call mom", nil)
	ids := &memIdentity{}

	m := staticCursor(New(api, chat.NewRelay(&echoInterpreter{}), ids, ""))
	require.Equal(t, modeIdentify, m.mode)

	m = drive(t, m, enter)
	require.Equal(t, modeIdentify, m.mode)
	require.True(t, m.statusErr)

	m.input.SetValue("bob")
	m = drive(t, m, enter)
	require.Equal(t, modeList, m.mode)
	require.Equal(t, "bob", ids.value)
	require.Equal(t, 1, m.Board().Len())
}

func TestAddTaskFlow(t *testing.T) {
	api := &memAPI{}
	m := newTestModel(t, api, &echoInterpreter{})

	m = drive(t, m, keyRunes("a"))
	require.Equal(t, modeAddTitle, m.mode)

	m = drive(t, m, enter)
	require.Equal(t, modeAddTitle, m.mode, "blank title must be rejected")

	m.input.SetValue("Buy milk")
	m = drive(t, m, enter)
	require.Equal(t, modeAddDescription, m.mode)

	m = drive(t, m, enter)
	require.Equal(t, modeList, m.mode)
	require.Equal(t, 1, m.Board().Len())
	require.Equal(t, "Buy milk", m.Board().Tasks()[0].Title)
	require.Nil(t, m.Board().Tasks()[0].Description)
}

func TestToggleMovesTaskToCompletedGroup(t *testing.T) {
	api := &memAPI{}
	_, _ = api.Create(context.Background(), "alice", "Walk dog", nil)
	_, _ = api.Create(context.Background(), "alice", "Buy milk", nil)
	m := newTestModel(t, api, &echoInterpreter{})

	require.Equal(t, "Buy milk", m.Board().Selected().Title)
	m = drive(t, m, keyRunes(" "))

	tasks := m.Board().Tasks()
	require.Equal(t, "Walk dog", tasks[0].Title)
	require.Equal(t, "Buy milk", tasks[1].Title)
	require.True(t, tasks[1].Completed)
	// cursor follows the toggled task
	require.Equal(t, "Buy milk", m.Board().Selected().Title)
}

func TestChatResolvesDisplayNumbers(t *testing.T) {
	api := &memAPI{}
	_, _ = api.Create(context.Background(), "alice", "Walk dog", nil)
	done, _ := api.Create(context.Background(), "alice", "Pay rent", nil)
	_, _ = api.Create(context.Background(), "alice", "Buy milk", nil)
	completed := true
	_, _ = api.Update(context.Background(), done.ID, domain.TaskPatch{Completed: &completed})

	interp := &echoInterpreter{}
	m := newTestModel(t, api, interp)
	// display: Buy milk (t3), Walk dog (t1), Pay rent (t2, done)

	m = drive(t, m, keyRunes("c"))
	require.Equal(t, modeChat, m.mode)
	m.input.SetValue("complete #2 and delete #3 and #9")
	m = drive(t, m, enter)

	require.Equal(t, []string{"complete task ID t1 and delete task ID t2 and #9"}, interp.got)
	last := m.transcript.Last(1)[0]
	require.Equal(t, chat.SenderBot, last.Sender)
	require.Equal(t, "ok: complete task ID t1 and delete task ID t2 and #9", last.Text)
}

func TestChatFailureShowsFallback(t *testing.T) {
	m := newTestModel(t, &memAPI{}, failingInterpreter{})
	m = drive(t, m, keyRunes("c"))
	m.input.SetValue("hello")
	m = drive(t, m, enter)

	require.Equal(t, chat.FallbackReply, m.transcript.Last(1)[0].Text)
	require.Equal(t, 0, m.chatBusy)
}

type failingInterpreter struct{}

func (failingInterpreter) Interpret(ctx context.Context, owner, text string) (*interpreter.Reply, error) {
	return nil, interpreter.ErrUnreachable
}

func TestStaleResponseForPreviousOwnerIsIgnored(t *testing.T) {
	m := newTestModel(t, &memAPI{}, &echoInterpreter{})
	next, _ := m.Update(tasksLoadedMsg{owner: "mallory", tasks: []*domain.Task{{ID: "x", Title: "not mine"}}})
	m = next.(Model)
	require.Equal(t, 0, m.Board().Len())
}

func TestSwitchUserClearsIdentity(t *testing.T) {
	api := &memAPI{}
	_, _ = api.Create(context.Background(), "alice", "Buy milk", nil)
	ids := &memIdentity{value: "alice"}
	m := staticCursor(New(api, chat.NewRelay(&echoInterpreter{}), ids, "alice"))
	m = drive(t, m, m.Init()())

	m = drive(t, m, keyRunes("s"))
	require.Equal(t, modeIdentify, m.mode)
	require.Equal(t, "", ids.value)
	require.Equal(t, 0, m.Board().Len())
	require.Equal(t, "", m.Owner())
}

func TestViewRendersNumbers(t *testing.T) {
	api := &memAPI{}
	_, _ = api.Create(context.Background(), "alice", "Buy milk", nil)
	m := newTestModel(t, api, &echoInterpreter{})
	require.Contains(t, m.View(), " 1.")
	require.Contains(t, m.View(), "Buy milk")
}
