package operator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/app/operator"
	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage/memory"
)

const owner = model.Address("0xowner")

func newService(t *testing.T, pub events.Publisher) *operator.Service {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	svc, err := operator.NewService(operator.ServiceConfig{Repository: repo, Owner: owner, Publisher: pub})
	require.NoError(t, err)

	return svc
}

func TestServiceSetOperator(t *testing.T) {
	opStart := model.OpStartTask.ID()

	tests := map[string]struct {
		req         operator.SetOperatorRequest
		expErr      error
		expEvents   []model.Event
		expOperator bool
	}{
		"The owner should grant an operation": {
			req: operator.SetOperatorRequest{Caller: owner, OperationID: opStart, RoleID: 10, Allowed: true},
			expEvents: []model.Event{
				{Type: model.EventAuthorizedOperator, OperationID: opStart, RoleID: 10, Allowed: true},
			},
			expOperator: true,
		},
		"The owner should revoke an operation": {
			req: operator.SetOperatorRequest{Caller: owner, OperationID: opStart, RoleID: 10, Allowed: false},
			expEvents: []model.Event{
				{Type: model.EventAuthorizedOperator, OperationID: opStart, RoleID: 10, Allowed: false},
			},
			expOperator: false,
		},
		"A mixed case owner should grant an operation": {
			req: operator.SetOperatorRequest{Caller: "0xOWNER", OperationID: opStart, RoleID: 10, Allowed: true},
			expEvents: []model.Event{
				{Type: model.EventAuthorizedOperator, OperationID: opStart, RoleID: 10, Allowed: true},
			},
			expOperator: true,
		},
		"A non owner should fail with unauthorized": {
			req:    operator.SetOperatorRequest{Caller: "0xa", OperationID: opStart, RoleID: 10, Allowed: true},
			expErr: model.ErrUnauthorized,
		},
		"A reserved role should fail with invalid auth id": {
			req:    operator.SetOperatorRequest{Caller: owner, OperationID: opStart, RoleID: 1, Allowed: true},
			expErr: model.ErrInvalidAuthID,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			bus := events.NewBus()
			defer bus.Close()
			published := bus.SubscribeAll(10)

			svc := newService(t, bus)

			resp, err := svc.SetOperator(ctx, test.req)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				ok, err := svc.IsOperator(ctx, test.req.OperationID, test.req.RoleID)
				require.NoError(err)
				assert.False(ok)
				return
			}

			require.NoError(err)
			assert.Equal(test.expEvents, resp.Events)

			env := <-published
			assert.Equal(test.expEvents[0], env.Event)

			ok, err := svc.IsOperator(ctx, test.req.OperationID, test.req.RoleID)
			require.NoError(err)
			assert.Equal(test.expOperator, ok)
		})
	}
}

func TestServiceSetOperatorOverwrites(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc := newService(t, nil)
	op := model.OpCompleteTask.ID()

	_, err := svc.SetOperator(ctx, operator.SetOperatorRequest{Caller: owner, OperationID: op, RoleID: 5, Allowed: true})
	require.NoError(err)
	ok, err := svc.IsOperator(ctx, op, 5)
	require.NoError(err)
	assert.True(ok)

	_, err = svc.SetOperator(ctx, operator.SetOperatorRequest{Caller: owner, OperationID: op, RoleID: 5, Allowed: false})
	require.NoError(err)
	ok, err = svc.IsOperator(ctx, op, 5)
	require.NoError(err)
	assert.False(ok)

	grants, err := svc.ListOperators(ctx)
	require.NoError(err)
	assert.Len(grants, 1)
}

func TestServiceWithoutOwnerRejectsChanges(t *testing.T) {
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	svc, err := operator.NewService(operator.ServiceConfig{Repository: repo})
	require.NoError(t, err)

	_, err = svc.SetOperator(context.Background(), operator.SetOperatorRequest{OperationID: model.OpSetTitle.ID(), RoleID: 5, Allowed: true})
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}
