package policy

import (
	"context"
	"fmt"

	"github.com/slok/w3task/internal/app/operator"
	"github.com/slok/w3task/internal/app/role"
	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
)

// Repository loads policies.
type Repository interface {
	GetPolicy(ctx context.Context, path string) (model.Policy, error)
}

// RoleSetter sets role memberships.
type RoleSetter interface {
	SetAuthorization(ctx context.Context, req role.SetAuthorizationRequest) (*role.SetAuthorizationResponse, error)
}

// OperatorSetter sets operator grants.
type OperatorSetter interface {
	SetOperator(ctx context.Context, req operator.SetOperatorRequest) (*operator.SetOperatorResponse, error)
}

// ServiceConfig is the configuration for the policy service.
type ServiceConfig struct {
	Repository Repository
	Roles      RoleSetter
	Operators  OperatorSetter
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Roles == nil {
		return fmt.Errorf("role setter is required")
	}

	if c.Operators == nil {
		return fmt.Errorf("operator setter is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Policy"})

	return nil
}

// Service applies declarative policies of role members and operator grants.
type Service struct {
	repo      Repository
	roles     RoleSetter
	operators OperatorSetter
	logger    log.Logger
}

// NewService creates a new policy service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		roles:     cfg.Roles,
		operators: cfg.Operators,
		logger:    cfg.Logger,
	}, nil
}

// ApplyRequest represents the apply request parameters.
type ApplyRequest struct {
	Caller model.Address
	Path   string
}

// ApplyResponse has the events emitted while applying the policy.
type ApplyResponse struct {
	Events []model.Event
}

// Apply loads a policy and grants every role member and operator in it. Only
// additions are made, anything not present in the policy is left as it is.
// If applying fails midway the already applied entries are kept, applying again is safe.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResponse, error) {
	pol, err := s.repo.GetPolicy(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load policy: %w", err)
	}

	if err := pol.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	var evs []model.Event
	for _, r := range pol.Roles {
		for _, m := range r.Members {
			resp, err := s.roles.SetAuthorization(ctx, role.SetAuthorizationRequest{
				Caller:   req.Caller,
				RoleID:   r.RoleID,
				Address:  m,
				IsMember: true,
			})
			if err != nil {
				return nil, fmt.Errorf("could not set role %d member %s: %w", r.RoleID, m, err)
			}
			evs = append(evs, resp.Events...)
		}
	}

	for _, o := range pol.Operators {
		for _, r := range o.Roles {
			resp, err := s.operators.SetOperator(ctx, operator.SetOperatorRequest{
				Caller:      req.Caller,
				OperationID: o.OperationID,
				RoleID:      r,
				Allowed:     true,
			})
			if err != nil {
				return nil, fmt.Errorf("could not set operator %s role %d: %w", model.OperationName(o.OperationID), r, err)
			}
			evs = append(evs, resp.Events...)
		}
	}

	s.logger.Infof("policy %s applied with %d changes", req.Path, len(evs))
	return &ApplyResponse{Events: evs}, nil
}
