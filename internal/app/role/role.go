package role

import (
	"context"
	"fmt"

	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage"
)

// ServiceConfig is the configuration for the role service.
type ServiceConfig struct {
	Repository storage.RoleRepository
	// Owner is the administrator, the only one allowed to change memberships.
	// Without owner the memberships are read only.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Role"})

	return nil
}

// Service manages role memberships.
type Service struct {
	repo      storage.RoleRepository
	owner     model.Address
	publisher events.Publisher
	logger    log.Logger
}

// NewService creates a new role service.
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

// SetAuthorizationRequest represents the set authorization request parameters.
type SetAuthorizationRequest struct {
	Caller   model.Address
	RoleID   model.RoleID
	Address  model.Address
	IsMember bool
}

// SetAuthorizationResponse has the events emitted by the set authorization operation.
type SetAuthorizationResponse struct {
	Events []model.Event
}

// SetAuthorization adds or removes an address from a role. Setting the same
// membership twice succeeds and emits the event again.
func (s *Service) SetAuthorization(ctx context.Context, req SetAuthorizationRequest) (*SetAuthorizationResponse, error) {
	// Reserved IDs are rejected regardless of the caller.
	if err := req.RoleID.Validate(); err != nil {
		return nil, err
	}

	req.Caller = req.Caller.Normalize()
	req.Address = req.Address.Normalize()

	if s.owner == "" || req.Caller != s.owner {
		return nil, fmt.Errorf("%s is not the owner: %w", req.Caller, model.ErrUnauthorized)
	}

	if err := req.Address.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.SetMember(ctx, req.RoleID, req.Address, req.IsMember); err != nil {
		return nil, fmt.Errorf("could not set role member: %w", err)
	}

	evs := []model.Event{{
		Type:    model.EventAuthorizedPersonnel,
		RoleID:  req.RoleID,
		Address: req.Address,
		Allowed: req.IsMember,
	}}
	s.publisher.Publish(ctx, evs...)

	s.logger.Infof("role %d member %s set to %t", req.RoleID, req.Address, req.IsMember)
	return &SetAuthorizationResponse{Events: evs}, nil
}

// IsMember checks if an address belongs to a role.
func (s *Service) IsMember(ctx context.Context, roleID model.RoleID, addr model.Address) (bool, error) {
	ok, err := s.repo.IsMember(ctx, roleID, addr.Normalize())
	if err != nil {
		return false, fmt.Errorf("could not check role member: %w", err)
	}
	return ok, nil
}

// ListMembers returns the members of a role.
func (s *Service) ListMembers(ctx context.Context, roleID model.RoleID) ([]model.Address, error) {
	members, err := s.repo.ListMembers(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("could not list role members: %w", err)
	}
	return members, nil
}
