package storage

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository --structname MockRepository --filename mocks.go

import (
	"context"

	"github.com/slok/w3task/internal/model"
)

// RoleRepository is the interface for role membership persistence.
type RoleRepository interface {
	SetMember(ctx context.Context, role model.RoleID, addr model.Address, isMember bool) error
	IsMember(ctx context.Context, role model.RoleID, addr model.Address) (bool, error)
	ListMembers(ctx context.Context, role model.RoleID) ([]model.Address, error)
}

// OperatorRepository is the interface for operator grant persistence.
type OperatorRepository interface {
	SetOperator(ctx context.Context, op model.OperationID, role model.RoleID, allowed bool) error
	IsOperator(ctx context.Context, op model.OperationID, role model.RoleID) (bool, error)
	ListOperators(ctx context.Context) ([]model.OperatorGrant, error)
}

// TaskRepository is the interface for task persistence.
type TaskRepository interface {
	// CreateTask stores a new task assigning the next sequential ID and returns the stored task.
	CreateTask(ctx context.Context, t model.Task) (*model.Task, error)
	GetTask(ctx context.Context, id model.TaskID) (*model.Task, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	// UpdateTask replaces a task only if the stored revision is the same as the received one,
	// otherwise it returns model.ErrConflict. The stored revision is increased by one.
	UpdateTask(ctx context.Context, t model.Task) error
}

// Repository is the full engine persistence.
type Repository interface {
	RoleRepository
	OperatorRepository
	TaskRepository
}
