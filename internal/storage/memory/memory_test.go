package memory_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage/memory"
)

func newRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
	require.NoError(t, err)
	return repo
}

func taskFixture() model.Task {
	return model.Task{
		Status:      model.TaskStatusCreated,
		Title:       "Pay members",
		Description: "Don't forget",
		Reward:      big.NewInt(1_000_000_000_000_000_000),
		EndDate:     time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
		Authorized:  []model.RoleID{10},
		Creator:     5,
		Assignee:    "0xc",
		Metadata:    "ipfs://0xc0/",
	}
}

func TestRepositoryRoles(t *testing.T) {
	tests := map[string]struct {
		actions    func(ctx context.Context, repo *memory.Repository) error
		expMembers []model.Address
	}{
		"Adding members should list them sorted": {
			actions: func(ctx context.Context, repo *memory.Repository) error {
				if err := repo.SetMember(ctx, 5, "0xb", true); err != nil {
					return err
				}
				return repo.SetMember(ctx, 5, "0xa", true)
			},
			expMembers: []model.Address{"0xa", "0xb"},
		},

		"Adding the same member twice should be idempotent": {
			actions: func(ctx context.Context, repo *memory.Repository) error {
				if err := repo.SetMember(ctx, 5, "0xa", true); err != nil {
					return err
				}
				return repo.SetMember(ctx, 5, "0xa", true)
			},
			expMembers: []model.Address{"0xa"},
		},

		"Removing a member should remove it": {
			actions: func(ctx context.Context, repo *memory.Repository) error {
				if err := repo.SetMember(ctx, 5, "0xa", true); err != nil {
					return err
				}
				if err := repo.SetMember(ctx, 5, "0xb", true); err != nil {
					return err
				}
				return repo.SetMember(ctx, 5, "0xa", false)
			},
			expMembers: []model.Address{"0xb"},
		},

		"Removing a missing member should not fail": {
			actions: func(ctx context.Context, repo *memory.Repository) error {
				return repo.SetMember(ctx, 5, "0xa", false)
			},
			expMembers: []model.Address{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			repo := newRepo(t)

			require.NoError(test.actions(ctx, repo))

			members, err := repo.ListMembers(ctx, 5)
			require.NoError(err)
			assert.Equal(t, test.expMembers, members)

			for _, m := range test.expMembers {
				ok, err := repo.IsMember(ctx, 5, m)
				require.NoError(err)
				assert.True(t, ok)
			}
		})
	}
}

func TestRepositoryOperators(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	repo := newRepo(t)

	op := model.OpSetTitle.ID()

	ok, err := repo.IsOperator(ctx, op, 5)
	require.NoError(err)
	assert.False(ok)

	require.NoError(repo.SetOperator(ctx, op, 5, true))
	ok, err = repo.IsOperator(ctx, op, 5)
	require.NoError(err)
	assert.True(ok)

	// Other roles are not affected.
	ok, err = repo.IsOperator(ctx, op, 10)
	require.NoError(err)
	assert.False(ok)

	require.NoError(repo.SetOperator(ctx, op, 5, false))
	ok, err = repo.IsOperator(ctx, op, 5)
	require.NoError(err)
	assert.False(ok)

	grants, err := repo.ListOperators(ctx)
	require.NoError(err)
	assert.Equal([]model.OperatorGrant{{OperationID: op, RoleID: 5, Allowed: false}}, grants)
}

func TestRepositoryTasks(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	repo := newRepo(t)

	t1, err := repo.CreateTask(ctx, taskFixture())
	require.NoError(err)
	assert.Equal(model.TaskID(1), t1.ID)
	assert.Equal(1, t1.Revision)

	t2, err := repo.CreateTask(ctx, taskFixture())
	require.NoError(err)
	assert.Equal(model.TaskID(2), t2.ID)

	got, err := repo.GetTask(ctx, 1)
	require.NoError(err)
	assert.Equal("Pay members", got.Title)
	assert.Equal(0, got.Reward.Cmp(big.NewInt(1_000_000_000_000_000_000)))

	// Mutating the returned copy should not affect the stored one.
	got.Authorized[0] = 99
	again, err := repo.GetTask(ctx, 1)
	require.NoError(err)
	assert.Equal(model.RoleID(10), again.Authorized[0])

	// Update.
	again.Status = model.TaskStatusProgress
	require.NoError(repo.UpdateTask(ctx, *again))
	updated, err := repo.GetTask(ctx, 1)
	require.NoError(err)
	assert.Equal(model.TaskStatusProgress, updated.Status)
	assert.Equal(2, updated.Revision)

	// Stale revision.
	err = repo.UpdateTask(ctx, *again)
	assert.True(errors.Is(err, model.ErrConflict))

	// Filter.
	progress := model.TaskStatusProgress
	tasks, err := repo.ListTasks(ctx, model.TaskFilter{Status: &progress})
	require.NoError(err)
	require.Len(tasks, 1)
	assert.Equal(model.TaskID(1), tasks[0].ID)

	all, err := repo.ListTasks(ctx, model.TaskFilter{})
	require.NoError(err)
	assert.Len(all, 2)

	// Missing.
	_, err = repo.GetTask(ctx, 42)
	assert.True(errors.Is(err, model.ErrNotFound))
	err = repo.UpdateTask(ctx, model.Task{ID: 42})
	assert.True(errors.Is(err, model.ErrNotFound))
}
