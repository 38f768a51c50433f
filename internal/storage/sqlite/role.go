package sqlite

import (
	"context"
	"fmt"

	"github.com/slok/w3task/internal/model"
)

// SetMember adds or removes an address from a role.
func (r *Repository) SetMember(ctx context.Context, role model.RoleID, addr model.Address, isMember bool) error {
	var err error
	if isMember {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO role_members (role_id, address) VALUES (?, ?) ON CONFLICT (role_id, address) DO NOTHING`,
			int64(role), string(addr))
	} else {
		_, err = r.db.ExecContext(ctx, `DELETE FROM role_members WHERE role_id = ? AND address = ?`, int64(role), string(addr))
	}
	if err != nil {
		return fmt.Errorf("could not set role member: %w", err)
	}

	r.logger.Debugf("Set role %d member %s: %t", role, addr, isMember)
	return nil
}

// IsMember checks if an address belongs to a role.
func (r *Repository) IsMember(ctx context.Context, role model.RoleID, addr model.Address) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM role_members WHERE role_id = ? AND address = ?`,
		int64(role), string(addr)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("could not query role member: %w", err)
	}

	return n > 0, nil
}

// ListMembers returns the members of a role sorted.
func (r *Repository) ListMembers(ctx context.Context, role model.RoleID) ([]model.Address, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT address FROM role_members WHERE role_id = ? ORDER BY address ASC`, int64(role))
	if err != nil {
		return nil, fmt.Errorf("could not query role members: %w", err)
	}
	defer rows.Close()

	members := []model.Address{}
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		members = append(members, model.Address(addr))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return members, nil
}

// SetOperator sets the grant of an operation for a role, overwriting the previous one.
func (r *Repository) SetOperator(ctx context.Context, op model.OperationID, role model.RoleID, allowed bool) error {
	query := `
		INSERT INTO operators (operation_id, role_id, allowed)
		VALUES (?, ?, ?)
		ON CONFLICT (operation_id, role_id) DO UPDATE SET allowed = excluded.allowed
	`
	if _, err := r.db.ExecContext(ctx, query, op.String(), int64(role), allowed); err != nil {
		return fmt.Errorf("could not set operator: %w", err)
	}

	r.logger.Debugf("Set operator %s role %d: %t", op, role, allowed)
	return nil
}

// IsOperator checks if a role is allowed to invoke an operation.
func (r *Repository) IsOperator(ctx context.Context, op model.OperationID, role model.RoleID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operators WHERE operation_id = ? AND role_id = ? AND allowed = 1`,
		op.String(), int64(role)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("could not query operator: %w", err)
	}

	return n > 0, nil
}

// ListOperators returns all the stored grants (including revoked ones).
func (r *Repository) ListOperators(ctx context.Context) ([]model.OperatorGrant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT operation_id, role_id, allowed FROM operators ORDER BY operation_id ASC, role_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query operators: %w", err)
	}
	defer rows.Close()

	grants := []model.OperatorGrant{}
	for rows.Next() {
		var opID string
		var role int64
		var allowed bool
		if err := rows.Scan(&opID, &role, &allowed); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}

		op, err := model.ParseOperationID(opID)
		if err != nil {
			return nil, fmt.Errorf("invalid stored operation: %w", err)
		}
		grants = append(grants, model.OperatorGrant{OperationID: op, RoleID: model.RoleID(role), Allowed: allowed})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return grants, nil
}
