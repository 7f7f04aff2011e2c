package chat

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Greeting opens every conversation.
const Greeting = "Hi! I'm your assistant. I can help you manage tasks.\n\n" +
	"Try:\n" +
	"• 'Add task: Buy groceries'\n" +
	"• 'List my tasks'\n" +
	"• 'Complete task #1' or 'Complete task 1'\n" +
	"• 'Delete #2'\n\n" +
	"You can reference tasks using their number from the task list!"

// Message is one line of the in-memory conversation. Never persisted.
type Message struct {
	ID     string
	Sender Sender
	Text   string
	At     time.Time
}

// Transcript is the conversation shown next to the task list. It has a single
// writer (the UI loop); ids are monotonic ULIDs so they sort by time.
type Transcript struct {
	entropy  io.Reader
	now      func() time.Time
	messages []Message
}

func NewTranscript() *Transcript {
	t := &Transcript{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
	t.Add(SenderBot, Greeting)
	return t
}

func (t *Transcript) Add(sender Sender, text string) Message {
	at := t.now()
	m := Message{
		ID:     ulid.MustNew(ulid.Timestamp(at), t.entropy).String(),
		Sender: sender,
		Text:   text,
		At:     at,
	}
	t.messages = append(t.messages, m)
	return m
}

func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns up to n most recent messages, oldest first.
func (t *Transcript) Last(n int) []Message {
	if n <= 0 || n >= len(t.messages) {
		return t.Messages()
	}
	out := make([]Message, n)
	copy(out, t.messages[len(t.messages)-n:])
	return out
}
