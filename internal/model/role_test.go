package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/model"
)

func TestRoleIDValidate(t *testing.T) {
	tests := map[string]struct {
		role   model.RoleID
		expErr error
	}{
		"Role 0 is reserved":      {role: 0, expErr: model.ErrInvalidAuthID},
		"Role 1 is reserved":      {role: 1, expErr: model.ErrInvalidAuthID},
		"Role 2 should be valid":  {role: 2},
		"Role 10 should be valid": {role: 10},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.role.Validate()
			if test.expErr != nil {
				assert.True(t, errors.Is(err, test.expErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(model.Address("0xabcdef"), model.NormalizeAddress(" 0xABCdef "))
	assert.Equal(model.Address("alice"), model.NormalizeAddress("alice"))
	assert.Error(model.NormalizeAddress("  ").Validate())
}

func TestOperationSelectors(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// Well known ERC-20 selectors.
	assert.Equal("0xa9059cbb", model.SelectorOf("transfer(address,uint256)").String())
	assert.Equal("0x70a08231", model.SelectorOf("balanceOf(address)").String())

	// Every catalog operation has a distinct selector.
	seen := map[model.OperationID]string{}
	for _, op := range model.Operations {
		_, dup := seen[op.ID()]
		assert.False(dup, "duplicated selector for %s", op.Name)
		seen[op.ID()] = op.Name
	}

	id, err := model.ResolveOperationID("setTitle")
	require.NoError(err)
	assert.Equal(model.OpSetTitle.ID(), id)
	assert.Equal("setTitle", model.OperationName(id))

	id2, err := model.ResolveOperationID(id.String())
	require.NoError(err)
	assert.Equal(id, id2)

	_, err = model.ResolveOperationID("fly")
	assert.True(errors.Is(err, model.ErrNotValid))

	_, err = model.ParseOperationID("0x1234")
	assert.True(errors.Is(err, model.ErrNotValid))
}

func TestPolicyValidate(t *testing.T) {
	tests := map[string]struct {
		policy model.Policy
		expErr error
	}{
		"A valid policy should not fail": {
			policy: model.Policy{
				Roles:     []model.RolePolicy{{RoleID: 5, Members: []model.Address{"0xa"}}},
				Operators: []model.OperatorPolicy{{OperationID: model.OpSetTitle.ID(), Roles: []model.RoleID{5}}},
			},
		},
		"A reserved member role should fail": {
			policy: model.Policy{Roles: []model.RolePolicy{{RoleID: 1, Members: []model.Address{"0xa"}}}},
			expErr: model.ErrInvalidAuthID,
		},
		"An empty member should fail": {
			policy: model.Policy{Roles: []model.RolePolicy{{RoleID: 5, Members: []model.Address{""}}}},
			expErr: model.ErrNotValid,
		},
		"A reserved operator role should fail": {
			policy: model.Policy{Operators: []model.OperatorPolicy{{OperationID: model.OpSetTitle.ID(), Roles: []model.RoleID{0}}}},
			expErr: model.ErrInvalidAuthID,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.policy.Validate()
			if test.expErr != nil {
				assert.True(t, errors.Is(err, test.expErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
