package chat

import (
	"context"
	"encoding/json"
	"strings"

	"ai_todo/internal/interpreter"
	"ai_todo/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// FallbackReply is shown whenever the interpreter could not be used.
	FallbackReply = "Sorry, I couldn't process your request. Please try again or use the main interface."
	// DefaultReply stands in for a successful reply without a message.
	DefaultReply = "Task processed successfully!"
)

var relayRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_relay_requests_total",
		Help: "Chat messages relayed to the interpreter, by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(relayRequests)
}

// Interpreter interprets one chat line for an owner. Implementations may
// change the owner's tasks as a side effect and say so via Reply.DidMutate.
type Interpreter interface {
	Interpret(ctx context.Context, owner, text string) (*interpreter.Reply, error)
}

// Outcome is what the caller shows and whether it should refresh its tasks.
type Outcome struct {
	Reply   string
	Refresh bool
	// Raw is the interpreter body on success.
	Raw json.RawMessage
	// Err is the swallowed failure, for logging and status mapping only.
	Err error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Relay forwards resolved chat text to an Interpreter. Failures never reach
// the user as raw errors: they become FallbackReply. Nothing is retried.
type Relay struct {
	interp Interpreter
}

func NewRelay(interp Interpreter) *Relay {
	return &Relay{interp: interp}
}

func (r *Relay) Send(ctx context.Context, owner, text string) Outcome {
	log := logger.WithContext(ctx).With("owner", owner)

	reply, err := r.interp.Interpret(ctx, owner, text)
	if err != nil {
		relayRequests.WithLabelValues("error").Inc()
		log.Warn("chat relay failed", "error", err)
		return Outcome{Reply: FallbackReply, Err: err}
	}

	msg := strings.TrimSpace(reply.Message)
	if msg == "" {
		msg = DefaultReply
	}

	result := "ok"
	if reply.Degraded {
		result = "degraded"
	}
	relayRequests.WithLabelValues(result).Inc()
	log.Debug("chat relayed", "mutated", reply.DidMutate)

	return Outcome{Reply: msg, Refresh: reply.DidMutate, Raw: reply.Raw}
}
