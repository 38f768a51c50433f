package policy_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/app/operator"
	"github.com/slok/w3task/internal/app/policy"
	"github.com/slok/w3task/internal/app/role"
	"github.com/slok/w3task/internal/model"
	storageio "github.com/slok/w3task/internal/storage/io"
	"github.com/slok/w3task/internal/storage/memory"
)

const owner = model.Address("0xowner")

const testPolicy = `roles:
  - id: 5
    members: ["0xl1", "0xl2"]
  - id: 10
    members: ["0xm"]
operators:
  - operation: startTask
    roles: [10]
  - operation: completeTask
    roles: [5]
`

func TestServiceApply(t *testing.T) {
	tests := map[string]struct {
		caller    model.Address
		path      string
		expErr    bool
		expErrIs  error
		expEvents int
		expGrants int
	}{
		"The owner should apply every member and grant": {
			caller:    owner,
			path:      "policy.yaml",
			expEvents: 5,
			expGrants: 2,
		},
		"A non owner should not apply anything": {
			caller:   "0xl1",
			path:     "policy.yaml",
			expErr:   true,
			expErrIs: model.ErrUnauthorized,
		},
		"A missing policy should fail": {
			caller: owner,
			path:   "missing.yaml",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			roleSvc, err := role.NewService(role.ServiceConfig{Repository: repo, Owner: owner})
			require.NoError(err)
			opSvc, err := operator.NewService(operator.ServiceConfig{Repository: repo, Owner: owner})
			require.NoError(err)

			fs := fstest.MapFS{"policy.yaml": &fstest.MapFile{Data: []byte(testPolicy)}}
			svc, err := policy.NewService(policy.ServiceConfig{
				Repository: storageio.NewPolicyYAMLRepository(fs),
				Roles:      roleSvc,
				Operators:  opSvc,
			})
			require.NoError(err)

			resp, err := svc.Apply(ctx, policy.ApplyRequest{Caller: test.caller, Path: test.path})

			grants, gerr := repo.ListOperators(ctx)
			require.NoError(gerr)
			members, gerr := repo.ListMembers(ctx, 5)
			require.NoError(gerr)

			if test.expErr {
				require.Error(err)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
				assert.Empty(grants)
				assert.Empty(members)
				return
			}

			require.NoError(err)
			assert.Len(resp.Events, test.expEvents)
			assert.Len(grants, test.expGrants)
			assert.Equal([]model.Address{"0xl1", "0xl2"}, members)

			ok, err := repo.IsOperator(ctx, model.OpStartTask.ID(), 10)
			require.NoError(err)
			assert.True(ok)
		})
	}
}

func TestNewService(t *testing.T) {
	_, err := policy.NewService(policy.ServiceConfig{})
	assert.Error(t, err)
}
