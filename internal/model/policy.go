package model

import "fmt"

// Policy is a declarative set of role memberships and operator grants.
type Policy struct {
	Roles     []RolePolicy
	Operators []OperatorPolicy
}

// RolePolicy lists the members of a role.
type RolePolicy struct {
	RoleID  RoleID
	Members []Address
}

// OperatorPolicy lists the roles allowed to invoke an operation.
type OperatorPolicy struct {
	OperationID OperationID
	Roles       []RoleID
}

// Validate validates the policy.
func (p Policy) Validate() error {
	for _, r := range p.Roles {
		if err := r.RoleID.Validate(); err != nil {
			return err
		}
		for _, m := range r.Members {
			if err := m.Validate(); err != nil {
				return fmt.Errorf("role %d: %w", r.RoleID, err)
			}
		}
	}

	for _, o := range p.Operators {
		for _, r := range o.Roles {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("operation %s: %w", o.OperationID, err)
			}
		}
	}

	return nil
}
