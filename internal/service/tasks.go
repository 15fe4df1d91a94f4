package service

import (
	"context"
	"strings"
	"time"

	"taskmanager/internal/cache"
	"taskmanager/internal/domain"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
)

// TaskStore is the persistence surface the task service runs on.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, f repository.TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskService owns the task query engine and the ownership guard. Every
// single-task operation goes through getOwned, every list through the owner
// scope in ListByOwner.
type TaskService struct {
	tasks TaskStore
	lists *cache.TaskListCache
}

func NewTaskService(tasks TaskStore, lists *cache.TaskListCache) *TaskService {
	return &TaskService{tasks: tasks, lists: lists}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, in CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > domain.MaxTitleLen {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Description) > domain.MaxDescriptionLen {
		return nil, domain.ErrInvalidInput
	}

	status := domain.StatusPending
	if in.Status != "" {
		status = domain.Status(in.Status)
		if !domain.ValidStatus(status) {
			return nil, domain.ErrInvalidInput
		}
	}
	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
		if !domain.ValidPriority(priority) {
			return nil, domain.ErrInvalidInput
		}
	}

	task := &domain.Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.lists.Invalidate(ctx, ownerID)
	return task, nil
}

// List returns the owner's tasks. status and priority narrow the result only
// when they name a known value; unrecognized literals mean no filter. sort
// keys outside the fixed table degrade to newest first.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, status, priority, sort string) ([]*domain.Task, error) {
	f := repository.TaskFilter{}
	if st := domain.Status(status); domain.ValidStatus(st) {
		f.Status = st
	}
	if p := domain.Priority(priority); domain.ValidPriority(p) {
		f.Priority = p
	}
	switch sort {
	case repository.SortDueDate, repository.SortPriority, repository.SortStatus:
		f.Sort = sort
	}

	// only the unfiltered default listing is cached
	plain := f == repository.TaskFilter{}
	if plain {
		if tasks, ok := s.lists.Get(ctx, ownerID); ok {
			return tasks, nil
		}
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	if plain {
		s.lists.Set(ctx, ownerID, tasks)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.getOwned(ctx, ownerID, taskID)
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

// Update applies the present fields to the owner's task. Validation runs
// before any write, so a rejected update changes nothing.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, in UpdateTaskInput) (*domain.Task, error) {
	task, err := s.getOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > domain.MaxTitleLen {
			return nil, domain.ErrInvalidInput
		}
		task.Title = title
	}
	if in.Description != nil {
		if len(*in.Description) > domain.MaxDescriptionLen {
			return nil, domain.ErrInvalidInput
		}
		task.Description = *in.Description
	}
	if in.Status != nil {
		st := domain.Status(*in.Status)
		if !domain.ValidStatus(st) {
			return nil, domain.ErrInvalidInput
		}
		task.Status = st
	}
	if in.Priority != nil {
		p := domain.Priority(*in.Priority)
		if !domain.ValidPriority(p) {
			return nil, domain.ErrInvalidInput
		}
		task.Priority = p
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	s.lists.Invalidate(ctx, ownerID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if _, err := s.getOwned(ctx, ownerID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	s.lists.Invalidate(ctx, ownerID)
	return nil
}

// getOwned fetches a task and checks ownership. A missing task is ErrNotFound
// regardless of who asks; an existing task owned by someone else is
// ErrForbidden, never ErrNotFound. The order is a contract: existence is
// checked first.
func (s *TaskService) getOwned(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != ownerID {
		return nil, domain.ErrForbidden
	}
	return task, nil
}
