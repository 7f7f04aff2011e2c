package service

import (
	"context"
	"fmt"
	"strings"

	"ai_todo/internal/domain"
	"ai_todo/internal/interpreter"
	"ai_todo/internal/logger"
	"ai_todo/internal/repository"
	"ai_todo/internal/ws"
)

// Enhancer suggests a better title/description for a new task.
type Enhancer interface {
	Enhance(ctx context.Context, owner, title string, description *string) (*interpreter.Suggestion, error)
}

// ChangeNotifier is told whenever an owner's tasks changed.
type ChangeNotifier interface {
	NotifyTasksChanged(owner, reason, taskID string)
}

// CreateTaskInput is a new task as submitted by a client.
type CreateTaskInput struct {
	Owner       string
	Title       string
	Description *string
	// Enhance asks the enhancer for a rewrite before insert.
	Enhance bool
}

// TaskService validates input, talks to the store and announces changes.
// The store insert is the only way tasks get created.
type TaskService struct {
	store    repository.TaskStore
	enhancer Enhancer
	notifier ChangeNotifier
}

func NewTaskService(store repository.TaskStore) *TaskService {
	return &TaskService{store: store}
}

func (s *TaskService) WithEnhancer(e Enhancer) *TaskService {
	s.enhancer = e
	return s
}

func (s *TaskService) WithNotifier(n ChangeNotifier) *TaskService {
	s.notifier = n
	return s
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

// normalizeDescription trims and turns blank into NULL.
func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	v := strings.TrimSpace(*d)
	if v == "" {
		return nil
	}
	return &v
}

func (s *TaskService) List(ctx context.Context, owner string) ([]*domain.Task, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, validationError("owner is required")
	}
	tasks, err := s.store.List(ctx, owner)
	if err != nil {
		logger.WithContext(ctx).Error("list tasks failed", "owner", owner, "error", err)
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	owner := strings.TrimSpace(in.Owner)
	title := strings.TrimSpace(in.Title)
	if owner == "" {
		return nil, validationError("owner is required")
	}
	if title == "" {
		return nil, validationError("title is required")
	}
	desc := normalizeDescription(in.Description)

	if in.Enhance && s.enhancer != nil {
		title, desc = s.enhance(ctx, owner, title, desc)
	}

	t, err := s.store.Create(ctx, owner, title, desc)
	if err != nil {
		logger.WithContext(ctx).Error("create task failed", "owner", owner, "error", err)
		return nil, err
	}

	s.notify(t.Owner, ws.ReasonCreated, t.ID)
	return t, nil
}

// enhance falls back to the user's input on any enhancer failure.
func (s *TaskService) enhance(ctx context.Context, owner, title string, desc *string) (string, *string) {
	sug, err := s.enhancer.Enhance(ctx, owner, title, desc)
	if err != nil {
		logger.WithContext(ctx).Warn("task enhancement skipped", "owner", owner, "error", err)
		return title, desc
	}
	newTitle := strings.TrimSpace(sug.Title)
	if newTitle == "" {
		return title, desc
	}
	newDesc := normalizeDescription(sug.Description)
	if newDesc == nil {
		newDesc = desc
	}
	return newTitle, newDesc
}

func (s *TaskService) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("title cannot be empty")
		}
		patch.Title = &title
	}
	if patch.SetDescription {
		patch.Description = normalizeDescription(patch.Description)
	}

	t, err := s.store.Update(ctx, id, patch)
	if err != nil {
		logger.WithContext(ctx).Warn("update task failed", "task_id", id, "error", err)
		return nil, err
	}
	if !patch.Empty() {
		s.notify(t.Owner, ws.ReasonUpdated, t.ID)
	}
	return t, nil
}

// SetCompleted is the toggle used by the list view.
func (s *TaskService) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Task, error) {
	return s.Update(ctx, id, domain.TaskPatch{Completed: &completed})
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrNotFound
	}
	t, err := s.store.Delete(ctx, id)
	if err != nil {
		logger.WithContext(ctx).Warn("delete task failed", "task_id", id, "error", err)
		return err
	}
	s.notify(t.Owner, ws.ReasonDeleted, t.ID)
	return nil
}

// TasksChangedByChat is called after the interpreter reported a mutation.
func (s *TaskService) TasksChangedByChat(owner string) {
	s.notify(owner, ws.ReasonChat, "")
}

func (s *TaskService) notify(owner, reason, taskID string) {
	if s.notifier != nil {
		s.notifier.NotifyTasksChanged(owner, reason, taskID)
	}
}

func (s *TaskService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
