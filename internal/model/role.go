package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Address identifies a caller. The host verifies it before it reaches the engine.
type Address string

// NormalizeAddress trims the address and lowercases hex addresses so "0xAB" and "0xab" match.
func NormalizeAddress(s string) Address {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return Address(strings.ToLower(s))
	}
	return Address(s)
}

// Normalize returns the normalized form of the address, see NormalizeAddress.
func (a Address) Normalize() Address {
	return NormalizeAddress(string(a))
}

// Validate validates the address.
func (a Address) Validate() error {
	if a == "" {
		return fmt.Errorf("address is required: %w", ErrNotValid)
	}
	return nil
}

// RoleID identifies a role (a group of addresses).
type RoleID uint64

// Reserved role IDs, always rejected.
const (
	RoleIDReservedZero RoleID = 0
	RoleIDReservedOne  RoleID = 1
)

// Validate returns ErrInvalidAuthID for reserved role IDs.
func (r RoleID) Validate() error {
	if r == RoleIDReservedZero || r == RoleIDReservedOne {
		return fmt.Errorf("role %d is reserved: %w", r, ErrInvalidAuthID)
	}
	return nil
}

// ParseRoleID parses a decimal role ID.
func ParseRoleID(s string) (RoleID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid role id %q: %w", s, ErrNotValid)
	}
	return RoleID(id), nil
}

// OperatorGrant allows (or denies) every member of a role to invoke an operation.
type OperatorGrant struct {
	OperationID OperationID
	RoleID      RoleID
	Allowed     bool
}
