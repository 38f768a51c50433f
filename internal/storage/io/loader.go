package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/w3task/internal/model"
)

// PolicyYAMLRepository loads role and operator policies from YAML files.
type PolicyYAMLRepository struct {
	fs fs.FS
}

// NewPolicyYAMLRepository creates a new YAML policy repository.
func NewPolicyYAMLRepository(filesystem fs.FS) *PolicyYAMLRepository {
	return &PolicyYAMLRepository{fs: filesystem}
}

// GetPolicy loads a policy from a YAML file and returns a validated domain model.
func (r *PolicyYAMLRepository) GetPolicy(ctx context.Context, path string) (model.Policy, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Policy{}, fmt.Errorf("reading policy file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Policy{}, ctx.Err()
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return model.Policy{}, fmt.Errorf("parsing YAML: %w", err)
	}

	pol, err := p.toModel()
	if err != nil {
		return model.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}

	if err := pol.Validate(); err != nil {
		return model.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}

	return pol, nil
}

// Policy represents the YAML structure of a policy.
type Policy struct {
	Roles     []RolePolicy     `yaml:"roles"`
	Operators []OperatorPolicy `yaml:"operators"`
}

// RolePolicy represents the YAML structure of a role and its members.
type RolePolicy struct {
	ID      uint64   `yaml:"id"`
	Members []string `yaml:"members"`
}

// OperatorPolicy represents the YAML structure of an operation grant.
// Operation can be the operation name or its 0x selector.
type OperatorPolicy struct {
	Operation string   `yaml:"operation"`
	Roles     []uint64 `yaml:"roles"`
}

func (p Policy) toModel() (model.Policy, error) {
	pol := model.Policy{}

	for _, r := range p.Roles {
		members := make([]model.Address, 0, len(r.Members))
		for _, m := range r.Members {
			members = append(members, model.NormalizeAddress(m))
		}
		pol.Roles = append(pol.Roles, model.RolePolicy{
			RoleID:  model.RoleID(r.ID),
			Members: members,
		})
	}

	for _, o := range p.Operators {
		if o.Operation == "" {
			return model.Policy{}, fmt.Errorf("operation is required")
		}

		id, err := model.ResolveOperationID(o.Operation)
		if err != nil {
			return model.Policy{}, err
		}

		roles := make([]model.RoleID, 0, len(o.Roles))
		for _, r := range o.Roles {
			roles = append(roles, model.RoleID(r))
		}
		pol.Operators = append(pol.Operators, model.OperatorPolicy{
			OperationID: id,
			Roles:       roles,
		})
	}

	return pol, nil
}
