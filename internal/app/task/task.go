package task

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/slok/w3task/internal/authz"
	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/lock"
	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage"
)

// ServiceConfig is the configuration for the task service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Authorizer authz.Authorizer
	// Locker serializes the operations of the same task, if missing a new one is created.
	Locker    *lock.Keyed[model.TaskID]
	Publisher events.Publisher
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Authorizer == nil {
		return fmt.Errorf("authorizer is required")
	}

	if c.Locker == nil {
		c.Locker = lock.NewKeyed[model.TaskID]()
	}

	if c.Publisher == nil {
		c.Publisher = events.NoopPublisher
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Task"})

	return nil
}

// Service stores tasks and drives them through their lifecycle.
type Service struct {
	repo       storage.TaskRepository
	authorizer authz.Authorizer
	locker     *lock.Keyed[model.TaskID]
	publisher  events.Publisher
	logger     log.Logger
}

// NewService creates a new task service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:       cfg.Repository,
		authorizer: cfg.Authorizer,
		locker:     cfg.Locker,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
	}, nil
}

// CreateTaskRequest represents the create task request parameters.
type CreateTaskRequest struct {
	Caller      model.Address
	Title       string
	Description string
	Reward      *big.Int
	EndDate     time.Time
	Authorized  []model.RoleID
	Creator     model.RoleID
	Assignee    model.Address
	Metadata    string
	// Status is ignored, tasks always start as created.
	Status model.TaskStatus
}

// TaskResponse has the resulting task and the events emitted by a task operation.
type TaskResponse struct {
	Task   model.Task
	Events []model.Event
}

// CreateTask stores a new task. Any caller can create tasks.
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	t := model.Task{
		Status:      model.TaskStatusCreated,
		Title:       req.Title,
		Description: req.Description,
		Reward:      req.Reward,
		EndDate:     model.NormalizeEndDate(req.EndDate),
		Authorized:  req.Authorized,
		Creator:     req.Creator,
		Assignee:    req.Assignee.Normalize(),
		Metadata:    req.Metadata,
	}
	if t.Reward == nil {
		t.Reward = new(big.Int)
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	stored, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("could not create task: %w", err)
	}

	evs := []model.Event{{Type: model.EventTaskCreated, TaskID: stored.ID}}
	s.publisher.Publish(ctx, evs...)

	s.logger.Infof("task %d created by %s", stored.ID, req.Caller)
	return &TaskResponse{Task: *stored, Events: evs}, nil
}

// GetTask returns a task, model.TaskNotFoundError if it doesn't exist.
func (s *Service) GetTask(ctx context.Context, id model.TaskID) (*model.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	return t, nil
}

// ListTasks returns the tasks ordered by ID.
func (s *Service) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	ts, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	return ts, nil
}

// TaskRequest represents the parameters shared by all the operations over an existing task.
type TaskRequest struct {
	Caller model.Address
	TaskID model.TaskID
	// RoleID is the role the caller acts as.
	RoleID model.RoleID
}

// mutation changes a loaded task on behalf of a request. It returns the events to emit
// and false if the task didn't change and doesn't need to be stored.
type mutation func(t *model.Task, req TaskRequest) (evs []model.Event, changed bool, err error)

// mutate runs a task operation atomically: nothing is stored unless every check passes.
//
// Checks are done in order: caller authorization, task existence, terminal status,
// role scope and finally the operation itself.
func (s *Service) mutate(ctx context.Context, req TaskRequest, op model.Operation, fn mutation) (*TaskResponse, error) {
	req.Caller = req.Caller.Normalize()

	s.locker.Lock(req.TaskID)
	defer s.locker.Unlock(req.TaskID)

	logger := s.logger.WithValues(log.Kv{"task-id": req.TaskID, "op": op.Name})

	err := s.authorizer.Authorize(ctx, req.Caller, req.RoleID, op.ID())
	if err != nil {
		return nil, fmt.Errorf("could not authorize %s: %w", op.Name, err)
	}

	stored, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	t := stored.Clone()

	if t.Status.IsConcluded() {
		return nil, model.NotConcludedError{TaskID: t.ID}
	}

	if !t.InScope(req.RoleID) {
		return nil, fmt.Errorf("role %d is not in the scope of task %d: %w", req.RoleID, t.ID, model.ErrUnauthorized)
	}

	evs, changed, err := fn(&t, req)
	if err != nil {
		return nil, err
	}

	if changed {
		err := s.repo.UpdateTask(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("could not update task: %w", err)
		}
		t.Revision++
	}

	s.publisher.Publish(ctx, evs...)
	logger.Debugf("%s executed by %s", op.Name, req.Caller)

	return &TaskResponse{Task: t, Events: evs}, nil
}

// SetTitle changes the title of a task.
func (s *Service) SetTitle(ctx context.Context, req TaskRequest, title string) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpSetTitle, func(t *model.Task, _ TaskRequest) ([]model.Event, bool, error) {
		t.Title = title
		return []model.Event{{Type: model.EventTitleUpdated, TaskID: t.ID}}, true, nil
	})
}

// SetDescription changes the description of a task.
func (s *Service) SetDescription(ctx context.Context, req TaskRequest, description string) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpSetDescription, func(t *model.Task, _ TaskRequest) ([]model.Event, bool, error) {
		t.Description = description
		return []model.Event{{Type: model.EventDescriptionUpdated, TaskID: t.ID}}, true, nil
	})
}

// SetEndDate changes the end date of a task, kept with second precision. The end date is
// informative, it's not enforced.
func (s *Service) SetEndDate(ctx context.Context, req TaskRequest, endDate time.Time) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpSetEndDate, func(t *model.Task, _ TaskRequest) ([]model.Event, bool, error) {
		t.EndDate = model.NormalizeEndDate(endDate)
		return []model.Event{{Type: model.EventEndDateUpdated, TaskID: t.ID}}, true, nil
	})
}

// SetMetadata changes the metadata of a task.
func (s *Service) SetMetadata(ctx context.Context, req TaskRequest, metadata string) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpSetMetadata, func(t *model.Task, _ TaskRequest) ([]model.Event, bool, error) {
		t.Metadata = metadata
		return []model.Event{{Type: model.EventMetadataUpdated, TaskID: t.ID}}, true, nil
	})
}

func transition(t *model.Task, to model.TaskStatus) error {
	if !t.Status.CanTransition(to) {
		return model.InvalidTransitionError{TaskID: t.ID, From: t.Status, To: to}
	}
	t.Status = to
	return nil
}

// StartTask moves a created task to progress.
func (s *Service) StartTask(ctx context.Context, req TaskRequest) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpStartTask, func(t *model.Task, req TaskRequest) ([]model.Event, bool, error) {
		if err := transition(t, model.TaskStatusProgress); err != nil {
			return nil, false, err
		}
		return []model.Event{{Type: model.EventTaskStarted, TaskID: t.ID, Address: req.Caller}}, true, nil
	})
}

// ReviewTask moves a task in progress to review.
func (s *Service) ReviewTask(ctx context.Context, req TaskRequest) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpReviewTask, func(t *model.Task, _ TaskRequest) ([]model.Event, bool, error) {
		if err := transition(t, model.TaskStatusReview); err != nil {
			return nil, false, err
		}
		return []model.Event{{Type: model.EventTaskUpdated, TaskID: t.ID, Status: t.Status}}, true, nil
	})
}

// CompleteTask confirms the completion of a task in review. Only the creator role can
// confirm, and the task is completed once two different addresses have confirmed it.
// Confirming twice with the same address succeeds without counting twice.
func (s *Service) CompleteTask(ctx context.Context, req TaskRequest) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpCompleteTask, func(t *model.Task, req TaskRequest) ([]model.Event, bool, error) {
		if req.RoleID != t.Creator {
			return nil, false, fmt.Errorf("role %d is not the creator of task %d: %w", req.RoleID, t.ID, model.ErrUnauthorized)
		}

		if t.Status != model.TaskStatusReview {
			return nil, false, model.InvalidTransitionError{TaskID: t.ID, From: t.Status, To: model.TaskStatusCompleted}
		}

		if !t.Confirm(req.Caller) {
			return nil, false, nil
		}

		if !t.IsConfirmed() {
			return nil, true, nil
		}

		if err := transition(t, model.TaskStatusCompleted); err != nil {
			return nil, false, err
		}
		return []model.Event{{Type: model.EventTaskUpdated, TaskID: t.ID, Status: t.Status}}, true, nil
	})
}

// CancelTask cancels a task that is not concluded.
func (s *Service) CancelTask(ctx context.Context, req TaskRequest) (*TaskResponse, error) {
	return s.mutate(ctx, req, model.OpCancelTask, func(t *model.Task, _ TaskRequest) ([]model.Event, bool, error) {
		if err := transition(t, model.TaskStatusCanceled); err != nil {
			return nil, false, err
		}
		return []model.Event{{Type: model.EventTaskUpdated, TaskID: t.ID, Status: t.Status}}, true, nil
	})
}
