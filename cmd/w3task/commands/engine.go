package commands

import (
	"context"
	"fmt"

	"github.com/slok/w3task/internal/app/operator"
	"github.com/slok/w3task/internal/app/role"
	"github.com/slok/w3task/internal/app/task"
	"github.com/slok/w3task/internal/authz"
	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage/sqlite"
)

// engine has the services shared by all the commands, all of them backed by the
// same SQLite repository.
type engine struct {
	repo      *sqlite.Repository
	roles     *role.Service
	operators *operator.Service
	tasks     *task.Service
}

func newEngine(ctx context.Context, rootCmd *RootCommand, pub events.Publisher) (*engine, error) {
	logger := rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	owner := model.NormalizeAddress(rootCmd.Owner)

	roles, err := role.NewService(role.ServiceConfig{
		Repository: repo,
		Owner:      owner,
		Publisher:  pub,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create role service: %w", err)
	}

	operators, err := operator.NewService(operator.ServiceConfig{
		Repository: repo,
		Owner:      owner,
		Publisher:  pub,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create operator service: %w", err)
	}

	gate, err := authz.NewGate(authz.GateConfig{
		Roles:     repo,
		Operators: repo,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create authorization gate: %w", err)
	}

	tasks, err := task.NewService(task.ServiceConfig{
		Repository: repo,
		Authorizer: gate,
		Publisher:  pub,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task service: %w", err)
	}

	return &engine{
		repo:      repo,
		roles:     roles,
		operators: operators,
		tasks:     tasks,
	}, nil
}

func (e *engine) Close() error { return e.repo.Close() }
