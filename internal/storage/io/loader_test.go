package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/model"
)

func TestPolicyYAMLRepository_GetPolicy(t *testing.T) {
	tests := map[string]struct {
		fs        fstest.MapFS
		path      string
		expPolicy model.Policy
		expErr    bool
		errMsg    string
	}{
		"Valid policy should load successfully": {
			fs: fstest.MapFS{
				"policy.yaml": &fstest.MapFile{
					Data: []byte(`roles:
  - id: 5
    members: ["0xAAA", "0xbbb"]
  - id: 10
    members: ["0xccc"]
operators:
  - operation: completeTask
    roles: [5]
  - operation: "0xa9059cbb"
    roles: [5, 10]
`),
				},
			},
			path: "policy.yaml",
			expPolicy: model.Policy{
				Roles: []model.RolePolicy{
					{RoleID: 5, Members: []model.Address{"0xaaa", "0xbbb"}},
					{RoleID: 10, Members: []model.Address{"0xccc"}},
				},
				Operators: []model.OperatorPolicy{
					{OperationID: model.OpCompleteTask.ID(), Roles: []model.RoleID{5}},
					{OperationID: model.OperationID{0xa9, 0x05, 0x9c, 0xbb}, Roles: []model.RoleID{5, 10}},
				},
			},
		},
		"Empty policy should load successfully": {
			fs: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{
					Data: []byte(`---
`),
				},
			},
			path:      "empty.yaml",
			expPolicy: model.Policy{},
		},
		"Reserved role IDs should return error": {
			fs: fstest.MapFS{
				"policy.yaml": &fstest.MapFile{
					Data: []byte(`roles:
  - id: 1
    members: ["0xaaa"]
`),
				},
			},
			path:   "policy.yaml",
			expErr: true,
			errMsg: "invalid auth id",
		},
		"Reserved role IDs on operators should return error": {
			fs: fstest.MapFS{
				"policy.yaml": &fstest.MapFile{
					Data: []byte(`operators:
  - operation: startTask
    roles: [0]
`),
				},
			},
			path:   "policy.yaml",
			expErr: true,
			errMsg: "invalid auth id",
		},
		"Unknown operations should return error": {
			fs: fstest.MapFS{
				"policy.yaml": &fstest.MapFile{
					Data: []byte(`operators:
  - operation: doSomething
    roles: [5]
`),
				},
			},
			path:   "policy.yaml",
			expErr: true,
			errMsg: "unknown operation",
		},
		"Missing operation should return error": {
			fs: fstest.MapFS{
				"policy.yaml": &fstest.MapFile{
					Data: []byte(`operators:
  - roles: [5]
`),
				},
			},
			path:   "policy.yaml",
			expErr: true,
			errMsg: "operation is required",
		},
		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading policy file",
		},
		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewPolicyYAMLRepository(tc.fs)
			pol, err := repo.GetPolicy(context.Background(), tc.path)

			if tc.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expPolicy, pol)
		})
	}
}

func TestPolicyYAMLRepository_GetPolicy_ContextCancellation(t *testing.T) {
	fs := fstest.MapFS{
		"policy.yaml": &fstest.MapFile{
			Data: []byte(`roles: []
`),
		},
	}

	repo := NewPolicyYAMLRepository(fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetPolicy(ctx, "policy.yaml")
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}
