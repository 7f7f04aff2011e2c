// Package interpreter talks to the external chat automation webhook that
// interprets natural-language task commands.
package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai_todo/internal/logger"
)

// maxReplyBytes caps how much of a webhook body is read.
const maxReplyBytes = 1 << 20

// WebhookClient posts chat lines to the configured webhook.
type WebhookClient struct {
	chatURL    string
	enhanceURL string
	httpClient *http.Client
}

func NewWebhookClient(chatURL, enhanceURL string, timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		chatURL:    chatURL,
		enhanceURL: enhanceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether a chat webhook URL is set.
func (c *WebhookClient) Configured() bool {
	return c != nil && c.chatURL != ""
}

type chatRequest struct {
	Owner          string `json:"owner"`
	UserIdentifier string `json:"user_identifier"`
	Message        string `json:"message"`
}

// Interpret sends one resolved chat line and returns the webhook's reply.
func (c *WebhookClient) Interpret(ctx context.Context, owner, text string) (*Reply, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, status, err := c.post(ctx, c.chatURL, chatRequest{Owner: owner, UserIdentifier: owner, Message: text})
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		logger.Warn("chat webhook error", "status", status, "body", truncate(string(body), 512))
		return nil, &StatusError{Code: status, Body: string(body)}
	}
	return DecodeReply(body)
}

// Suggestion is the enhance webhook's rewrite of a new task.
type Suggestion struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Enhanced    bool    `json:"-"`
}

type enhanceRequest struct {
	Owner          string `json:"owner"`
	UserIdentifier string `json:"user_identifier"`
	Title          string `json:"title"`
	Description    string `json:"description"`
}

type enhanceResponse struct {
	Task     *Suggestion `json:"task"`
	Success  bool        `json:"success"`
	Enhanced bool        `json:"enhanced"`
}

// Enhance asks the enhance webhook to rewrite a task before it is stored.
// The webhook only suggests; the caller decides what to insert.
func (c *WebhookClient) Enhance(ctx context.Context, owner, title string, description *string) (*Suggestion, error) {
	if c == nil || c.enhanceURL == "" {
		return nil, ErrNotConfigured
	}

	req := enhanceRequest{Owner: owner, UserIdentifier: owner, Title: title}
	if description != nil {
		req.Description = *description
	}

	body, status, err := c.post(ctx, c.enhanceURL, req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StatusError{Code: status, Body: string(body)}
	}

	var resp enhanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if !resp.Success || resp.Task == nil || resp.Task.Title == "" {
		return nil, fmt.Errorf("%w: enhance did not succeed", ErrMalformedReply)
	}
	resp.Task.Enhanced = resp.Enhanced
	return resp.Task, nil
}

func (c *WebhookClient) post(ctx context.Context, url string, payload any) ([]byte, int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %w", ErrUnreachable, err)
	}
	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
