package operator

import (
	"context"
	"fmt"

	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage"
)

// ServiceConfig is the configuration for the operator service.
type ServiceConfig struct {
	Repository storage.OperatorRepository
	// Owner is the administrator, the only one allowed to change grants.
	// Without owner the grants are read only.
	Owner     model.Address
	Publisher events.Publisher
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	c.Owner = c.Owner.Normalize()

	if c.Publisher == nil {
		c.Publisher = events.NoopPublisher
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Operator"})

	return nil
}

// Service manages the per operation grants of roles.
type Service struct {
	repo      storage.OperatorRepository
	owner     model.Address
	publisher events.Publisher
	logger    log.Logger
}

// NewService creates a new operator service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		owner:     cfg.Owner,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}, nil
}

// SetOperatorRequest represents the set operator request parameters.
type SetOperatorRequest struct {
	Caller      model.Address
	OperationID model.OperationID
	RoleID      model.RoleID
	Allowed     bool
}

// SetOperatorResponse has the events emitted by the set operator operation.
type SetOperatorResponse struct {
	Events []model.Event
}

// SetOperator grants or revokes an operation to a role, overwriting the previous grant.
func (s *Service) SetOperator(ctx context.Context, req SetOperatorRequest) (*SetOperatorResponse, error) {
	if err := req.RoleID.Validate(); err != nil {
		return nil, err
	}

	req.Caller = req.Caller.Normalize()
	if s.owner == "" || req.Caller != s.owner {
		return nil, fmt.Errorf("%s is not the owner: %w", req.Caller, model.ErrUnauthorized)
	}

	if err := s.repo.SetOperator(ctx, req.OperationID, req.RoleID, req.Allowed); err != nil {
		return nil, fmt.Errorf("could not set operator: %w", err)
	}

	evs := []model.Event{{
		Type:        model.EventAuthorizedOperator,
		OperationID: req.OperationID,
		RoleID:      req.RoleID,
		Allowed:     req.Allowed,
	}}
	s.publisher.Publish(ctx, evs...)

	s.logger.Infof("operator %s role %d set to %t", model.OperationName(req.OperationID), req.RoleID, req.Allowed)
	return &SetOperatorResponse{Events: evs}, nil
}

// IsOperator checks if a role is allowed to invoke an operation.
func (s *Service) IsOperator(ctx context.Context, op model.OperationID, roleID model.RoleID) (bool, error) {
	ok, err := s.repo.IsOperator(ctx, op, roleID)
	if err != nil {
		return false, fmt.Errorf("could not check operator: %w", err)
	}
	return ok, nil
}

// ListOperators returns all the stored grants.
func (s *Service) ListOperators(ctx context.Context) ([]model.OperatorGrant, error) {
	grants, err := s.repo.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list operators: %w", err)
	}
	return grants, nil
}
