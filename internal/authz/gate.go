package authz

import (
	"context"
	"fmt"

	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage"
)

// Authorizer decides if a caller may invoke an operation acting as a role.
type Authorizer interface {
	Authorize(ctx context.Context, caller model.Address, role model.RoleID, op model.OperationID) error
}

// GateConfig is the configuration for the authorization gate.
type GateConfig struct {
	Roles     storage.RoleRepository
	Operators storage.OperatorRepository
	Logger    log.Logger
}

func (c *GateConfig) defaults() error {
	if c.Roles == nil {
		return fmt.Errorf("role repository is required")
	}

	if c.Operators == nil {
		return fmt.Errorf("operator repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "authz.Gate"})

	return nil
}

// Gate authorizes a caller when it's a member of the role and the role is an
// operator of the operation. It doesn't mutate anything.
type Gate struct {
	roles     storage.RoleRepository
	operators storage.OperatorRepository
	logger    log.Logger
}

// NewGate creates a new authorization gate.
func NewGate(cfg GateConfig) (*Gate, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Gate{
		roles:     cfg.Roles,
		operators: cfg.Operators,
		logger:    cfg.Logger,
	}, nil
}

// Authorize returns model.ErrUnauthorized if the caller can't act as the role for the operation.
func (g *Gate) Authorize(ctx context.Context, caller model.Address, role model.RoleID, op model.OperationID) error {
	caller = caller.Normalize()
	isMember, err := g.roles.IsMember(ctx, role, caller)
	if err != nil {
		return fmt.Errorf("could not check role membership: %w", err)
	}
	if !isMember {
		g.logger.Debugf("%s is not a member of role %d", caller, role)
		return fmt.Errorf("%s is not a member of role %d: %w", caller, role, model.ErrUnauthorized)
	}

	isOperator, err := g.operators.IsOperator(ctx, op, role)
	if err != nil {
		return fmt.Errorf("could not check operator: %w", err)
	}
	if !isOperator {
		g.logger.Debugf("role %d is not an operator of %s", role, model.OperationName(op))
		return fmt.Errorf("role %d is not an operator of %s: %w", role, model.OperationName(op), model.ErrUnauthorized)
	}

	return nil
}
