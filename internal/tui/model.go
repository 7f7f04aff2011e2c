// Package tui is the terminal front end: identify, list, add, edit and
// chat about tasks.
package tui

import (
	"context"
	"fmt"
	"strings"

	"ai_todo/internal/chat"
	"ai_todo/internal/domain"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const genericFailure = "Something went wrong. Please try again."

// TaskAPI is the task server as the terminal sees it.
type TaskAPI interface {
	List(ctx context.Context, owner string) ([]*domain.Task, error)
	Create(ctx context.Context, owner, title string, description *string) (*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// IdentityStore persists who is using this terminal.
type IdentityStore interface {
	Set(value string) (string, error)
	Clear() error
}

type mode int

const (
	modeIdentify mode = iota
	modeList
	modeAddTitle
	modeAddDescription
	modeEdit
	modeChat
)

type tasksLoadedMsg struct {
	owner string
	tasks []*domain.Task
	err   error
}

type mutatedMsg struct {
	owner string
	done  string
	err   error
}

type chatReplyMsg struct {
	owner string
	out   chat.Outcome
}

// Model is the bubbletea model. Board is replaced wholesale on every list
// response; nothing else holds task state.
type Model struct {
	api   TaskAPI
	relay *chat.Relay
	ids   IdentityStore

	owner      string
	mode       mode
	board      Board
	transcript *chat.Transcript

	input        textinput.Model
	pendingTitle string
	editingID    string

	status    string
	statusErr bool
	loading   bool
	chatBusy  int

	keys  keyMap
	help  help.Model
	width int
}

// New builds the model. owner may be empty, in which case the user is
// asked for an identifier first.
func New(api TaskAPI, relay *chat.Relay, ids IdentityStore, owner string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		api:        api,
		relay:      relay,
		ids:        ids,
		owner:      strings.TrimSpace(owner),
		transcript: chat.NewTranscript(),
		input:      ti,
		keys:       defaultKeys(),
		help:       help.New(),
		width:      80,
	}
	if m.owner == "" {
		m.enterIdentify()
	} else {
		m.mode = modeList
		m.loading = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.mode == modeIdentify {
		return textinput.Blink
	}
	return m.loadTasks()
}

func (m Model) Owner() string { return m.owner }
func (m Model) Board() Board   { return m.board }

func (m Model) loadTasks() tea.Cmd {
	api, owner := m.api, m.owner
	return func() tea.Msg {
		tasks, err := api.List(context.Background(), owner)
		return tasksLoadedMsg{owner: owner, tasks: tasks, err: err}
	}
}

func (m Model) mutate(done string, fn func(ctx context.Context) error) tea.Cmd {
	owner := m.owner
	return func() tea.Msg {
		return mutatedMsg{owner: owner, done: done, err: fn(context.Background())}
	}
}

func (m Model) sendChat(text string) tea.Cmd {
	relay, owner := m.relay, m.owner
	return func() tea.Msg {
		return chatReplyMsg{owner: owner, out: relay.Send(context.Background(), owner, text)}
	}
}

func (m *Model) enterIdentify() {
	m.mode = modeIdentify
	m.input.SetValue("")
	m.input.Placeholder = "Your name or email"
	m.input.Focus()
}

func (m *Model) focusInput(placeholder, value string) tea.Cmd {
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// failureText keeps validation messages and hides everything else.
func failureText(err error) string {
	if domain.IsValidation(err) {
		msg := err.Error()
		if i := strings.Index(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
		return msg
	}
	return genericFailure
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tasksLoadedMsg:
		if msg.owner != m.owner {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.setStatus("Could not load tasks. "+genericFailure, true)
			return m, nil
		}
		m.board = m.board.Replace(msg.tasks)
		return m, nil

	case mutatedMsg:
		if msg.owner != m.owner {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus(failureText(msg.err), true)
			return m, m.loadTasks()
		}
		m.setStatus(msg.done, false)
		m.loading = true
		return m, m.loadTasks()

	case chatReplyMsg:
		if msg.owner != m.owner {
			return m, nil
		}
		if m.chatBusy > 0 {
			m.chatBusy--
		}
		m.transcript.Add(chat.SenderBot, msg.out.Reply)
		if msg.out.Refresh {
			m.loading = true
			return m, m.loadTasks()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeIdentify:
			return m.updateIdentify(msg)
		case modeAddTitle, modeAddDescription, modeEdit:
			return m.updateForm(msg)
		case modeChat:
			return m.updateChat(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateIdentify(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	owner, err := m.ids.Set(m.input.Value())
	if err != nil {
		m.setStatus(failureText(err), true)
		return m, nil
	}
	m.owner = owner
	m.mode = modeList
	m.board = Board{}
	m.transcript = chat.NewTranscript()
	m.input.Blur()
	m.input.SetValue("")
	m.setStatus("Signed in as "+owner, false)
	m.loading = true
	return m, m.loadTasks()
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.board = m.board.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.board = m.board.MoveDown()
	case key.Matches(msg, m.keys.Toggle):
		t := m.board.Selected()
		if t == nil {
			return m, nil
		}
		api, id, completed := m.api, t.ID, !t.Completed
		done := "Marked as done"
		if !completed {
			done = "Marked as pending"
		}
		return m, m.mutate(done, func(ctx context.Context) error {
			_, err := api.Update(ctx, id, domain.TaskPatch{Completed: &completed})
			return err
		})
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAddTitle
		m.pendingTitle = ""
		return m, m.focusInput("What needs to be done?", "")
	case key.Matches(msg, m.keys.Edit):
		t := m.board.Selected()
		if t == nil {
			return m, nil
		}
		m.mode = modeEdit
		m.editingID = t.ID
		return m, m.focusInput("New title", t.Title)
	case key.Matches(msg, m.keys.Delete):
		t := m.board.Selected()
		if t == nil {
			return m, nil
		}
		api, id := m.api, t.ID
		return m, m.mutate("Task deleted", func(ctx context.Context) error {
			return api.Delete(ctx, id)
		})
	case key.Matches(msg, m.keys.Chat):
		m.mode = modeChat
		return m, m.focusInput("Ask me to add, complete or delete tasks", "")
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.loadTasks()
	case key.Matches(msg, m.keys.Switch):
		if err := m.ids.Clear(); err != nil {
			m.setStatus(genericFailure, true)
			return m, nil
		}
		m.owner = ""
		m.board = Board{}
		m.setStatus("", false)
		m.enterIdentify()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.input.Blur()
		m.setStatus("", false)
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeAddTitle:
			if value == "" {
				m.setStatus("Title cannot be empty", true)
				return m, nil
			}
			m.pendingTitle = value
			m.mode = modeAddDescription
			m.setStatus("", false)
			return m, m.focusInput("Description (optional, enter to skip)", "")
		case modeAddDescription:
			api, owner, title := m.api, m.owner, m.pendingTitle
			var desc *string
			if value != "" {
				desc = &value
			}
			m.mode = modeList
			m.input.Blur()
			return m, m.mutate("Task added", func(ctx context.Context) error {
				_, err := api.Create(ctx, owner, title, desc)
				return err
			})
		case modeEdit:
			if value == "" {
				m.setStatus("Title cannot be empty", true)
				return m, nil
			}
			api, id := m.api, m.editingID
			m.mode = modeList
			m.input.Blur()
			return m, m.mutate("Task updated", func(ctx context.Context) error {
				_, err := api.Update(ctx, id, domain.TaskPatch{Title: &value})
				return err
			})
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.transcript.Add(chat.SenderUser, text)
		m.chatBusy++
		// numbers refer to the list as it is on screen right now
		resolved := chat.ResolveReferences(text, m.board.Tasks())
		return m, m.sendChat(resolved)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.mode == modeIdentify {
		lines := []string{
			titleStyle.Render("AI To-Do"),
			"",
			"Who are you? Your tasks are kept under this name.",
			m.input.View(),
		}
		if m.status != "" {
			lines = append(lines, errorStyle.Render(m.status))
		}
		lines = append(lines, helpStyle.Render("enter to continue • ctrl+c to quit"))
		return panelStyle.Render(strings.Join(lines, "\n"))
	}

	var b strings.Builder
	done, pending := m.board.Counts()
	fmt.Fprintf(&b, "%s %s   %s %d  %s %d  %s %d\n",
		titleStyle.Render("Tasks for"), accentStyle.Render(m.owner),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), m.board.Len(),
	)
	b.WriteString(mutedStyle.Render(progressBar(done, m.board.Len(), 24)))
	b.WriteString("\n\n")

	if m.board.Len() == 0 {
		if m.loading {
			b.WriteString(mutedStyle.Render("Loading…"))
		} else {
			b.WriteString(mutedStyle.Render("No tasks yet. Press a to add one."))
		}
		b.WriteString("\n")
	}
	for i, t := range m.board.Tasks() {
		b.WriteString(m.renderTask(i, t))
	}

	switch m.mode {
	case modeAddTitle, modeAddDescription, modeEdit:
		title := "Add task"
		if m.mode == modeEdit {
			title = "Edit task"
		} else if m.mode == modeAddDescription {
			title = "Add task: " + m.pendingTitle
		}
		b.WriteString("\n" + panelStyle.Render(title+"\n"+m.input.View()))
	case modeChat:
		b.WriteString("\n" + panelStyle.Render(m.renderChat()))
	}

	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	if m.mode == modeList {
		b.WriteString("\n" + m.help.ShortHelpView(m.keys.ShortHelp()))
	} else {
		b.WriteString("\n" + helpStyle.Render("enter to submit • esc to go back"))
	}
	return panelStyle.Render(b.String())
}

func (m Model) renderTask(i int, t *domain.Task) string {
	box := mutedStyle.Render(boxUnchecked)
	text := t.Title
	if t.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(t.Title)
	}
	prefix := "  "
	if i == m.board.Cursor() && m.mode == modeList {
		prefix = selectedStyle.Render("> ")
	}
	line := fmt.Sprintf("%s%s %s %s\n", prefix, mutedStyle.Render(fmt.Sprintf("%2d.", i+1)), box, text)
	if t.Description != nil && *t.Description != "" {
		line += "       " + mutedStyle.Render(*t.Description) + "\n"
	}
	return line
}

func (m Model) renderChat() string {
	var lines []string
	for _, msg := range m.transcript.Last(8) {
		if msg.Sender == chat.SenderUser {
			lines = append(lines, userStyle.Render("you: ")+msg.Text)
		} else {
			lines = append(lines, botStyle.Render("bot: ")+msg.Text)
		}
	}
	if m.chatBusy > 0 {
		lines = append(lines, mutedStyle.Render("bot is typing…"))
	}
	lines = append(lines, m.input.View())
	return strings.Join(lines, "\n")
}
