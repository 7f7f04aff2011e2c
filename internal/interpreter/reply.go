package interpreter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"ai_todo/internal/domain"
)

var (
	ErrNotConfigured  = fmt.Errorf("%w: webhook url not configured", domain.ErrInterpreterUnavailable)
	ErrUnreachable    = fmt.Errorf("%w: webhook unreachable", domain.ErrInterpreterUnavailable)
	ErrMalformedReply = fmt.Errorf("%w: malformed reply", domain.ErrInterpreterUnavailable)
)

// StatusError is a non-2xx answer from the webhook. Body is kept for logs only.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("interpreter returned status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrInterpreterUnavailable
}

// Reply is what an interpreter answered to one chat line.
type Reply struct {
	Message string
	// DidMutate tells the caller the task list may have changed.
	DidMutate bool
	// Raw is the reply body as received, for pass-through.
	Raw json.RawMessage
	// Degraded is set when the reply carries an "error" field next to a
	// user-facing message (the server's fallback envelopes).
	Degraded bool
}

type replyPayload struct {
	Message *string `json:"message"`
	Mutated *bool   `json:"mutated"`
	Success *bool   `json:"success"`
	Error   string  `json:"error"`
}

// DecodeReply parses an interpreter body. It must be a JSON object; "message"
// must be a string when present. Unless the body says otherwise through
// "mutated" or "success", a reply counts as having mutated tasks.
func DecodeReply(body []byte) (*Reply, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedReply
	}

	var p replyPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s is %s", ErrMalformedReply, typeErr.Field, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	r := &Reply{Raw: json.RawMessage(trimmed), DidMutate: true}
	if p.Message != nil {
		r.Message = *p.Message
	}
	switch {
	case p.Mutated != nil:
		r.DidMutate = *p.Mutated
	case p.Success != nil:
		r.DidMutate = *p.Success
	}
	if p.Error != "" {
		r.Degraded = true
		r.DidMutate = false
	}
	return r, nil
}
