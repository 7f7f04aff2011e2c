// Package client is the terminal app's view of the task server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"ai_todo/internal/domain"
	"ai_todo/internal/interpreter"
)

const maxBodyBytes = 1 << 20

// API calls the task server's REST and chat endpoints. Nothing is retried.
type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{baseURL: baseURL, httpClient: &http.Client{}}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *API) do(ctx context.Context, method, path string, in any) ([]byte, int, error) {
	var rd io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, rd)
	if err != nil {
		return nil, 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// taskCall runs one task endpoint and maps failures onto domain errors.
func (a *API) taskCall(ctx context.Context, method, path string, in, out any) error {
	body, status, err := a.do(ctx, method, path, in)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	if status >= 200 && status <= 299 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode response: %w", domain.ErrStoreUnavailable, err)
		}
		return nil
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrValidation, eb.Error)
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", domain.ErrStoreUnavailable, status)
	}
}

type tasksEnvelope struct {
	Tasks []*domain.Task `json:"tasks"`
}

type taskEnvelope struct {
	Task *domain.Task `json:"task"`
}

func (a *API) List(ctx context.Context, owner string) ([]*domain.Task, error) {
	var out tasksEnvelope
	if err := a.taskCall(ctx, http.MethodGet, "/tasks?owner="+url.QueryEscape(owner), nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (a *API) Create(ctx context.Context, owner, title string, description *string) (*domain.Task, error) {
	in := map[string]any{"owner": owner, "title": title}
	if description != nil {
		in["description"] = *description
	}
	var out taskEnvelope
	if err := a.taskCall(ctx, http.MethodPost, "/tasks", in, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (a *API) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var out taskEnvelope
	if err := a.taskCall(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (a *API) Delete(ctx context.Context, id string) error {
	return a.taskCall(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// Interpret relays one chat line through the server's /chat endpoint, so
// the terminal client can use it as a chat.Interpreter.
func (a *API) Interpret(ctx context.Context, owner, text string) (*interpreter.Reply, error) {
	body, status, err := a.do(ctx, http.MethodPost, "/chat", map[string]string{
		"owner":   owner,
		"message": text,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interpreter.ErrUnreachable, err)
	}
	if status < 200 || status > 299 {
		return nil, &interpreter.StatusError{Code: status, Body: string(body)}
	}
	return interpreter.DecodeReply(body)
}
