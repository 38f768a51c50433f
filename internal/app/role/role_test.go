package role_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/app/role"
	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/storage/storagemock"
)

const owner = model.Address("0xowner")

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config role.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: role.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Owner:      owner,
				Logger:     log.Noop,
			},
		},
		"missing repository should fail": {
			config: role.ServiceConfig{Owner: owner},
			expErr: true,
		},
		"missing owner should create a read only service": {
			config: role.ServiceConfig{Repository: &storagemock.MockRepository{}},
		},
		"nil logger should default to noop": {
			config: role.ServiceConfig{Repository: &storagemock.MockRepository{}, Owner: owner},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := role.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestServiceSetAuthorization(t *testing.T) {
	tests := map[string]struct {
		mockRepo  func(m *storagemock.MockRepository)
		req       role.SetAuthorizationRequest
		expEvents []model.Event
		expErr    bool
		expErrIs  error
	}{
		"The owner should add a member": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("SetMember", mock.Anything, model.RoleID(5), model.Address("0xa"), true).Once().Return(nil)
			},
			req: role.SetAuthorizationRequest{Caller: owner, RoleID: 5, Address: "0xa", IsMember: true},
			expEvents: []model.Event{
				{Type: model.EventAuthorizedPersonnel, RoleID: 5, Address: "0xa", Allowed: true},
			},
		},
		"The owner should remove a member": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("SetMember", mock.Anything, model.RoleID(10), model.Address("0xc"), false).Once().Return(nil)
			},
			req: role.SetAuthorizationRequest{Caller: owner, RoleID: 10, Address: "0xc", IsMember: false},
			expEvents: []model.Event{
				{Type: model.EventAuthorizedPersonnel, RoleID: 10, Address: "0xc", Allowed: false},
			},
		},
		"Mixed case caller and address should be normalized": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("SetMember", mock.Anything, model.RoleID(5), model.Address("0xab"), true).Once().Return(nil)
			},
			req: role.SetAuthorizationRequest{Caller: "0xOWNER", RoleID: 5, Address: "0xAB", IsMember: true},
			expEvents: []model.Event{
				{Type: model.EventAuthorizedPersonnel, RoleID: 5, Address: "0xab", Allowed: true},
			},
		},
		"Role 0 should fail with invalid auth id": {
			mockRepo: func(m *storagemock.MockRepository) {},
			req:      role.SetAuthorizationRequest{Caller: owner, RoleID: 0, Address: "0xa", IsMember: true},
			expErr:   true,
			expErrIs: model.ErrInvalidAuthID,
		},
		"Role 1 should fail with invalid auth id": {
			mockRepo: func(m *storagemock.MockRepository) {},
			req:      role.SetAuthorizationRequest{Caller: owner, RoleID: 1, Address: "0xa", IsMember: true},
			expErr:   true,
			expErrIs: model.ErrInvalidAuthID,
		},
		"Reserved role should fail with invalid auth id even if the caller is not the owner": {
			mockRepo: func(m *storagemock.MockRepository) {},
			req:      role.SetAuthorizationRequest{Caller: "0xa", RoleID: 1, Address: "0xa", IsMember: true},
			expErr:   true,
			expErrIs: model.ErrInvalidAuthID,
		},
		"A non owner caller should fail with unauthorized": {
			mockRepo: func(m *storagemock.MockRepository) {},
			req:      role.SetAuthorizationRequest{Caller: "0xa", RoleID: 5, Address: "0xa", IsMember: true},
			expErr:   true,
			expErrIs: model.ErrUnauthorized,
		},
		"An empty address should fail": {
			mockRepo: func(m *storagemock.MockRepository) {},
			req:      role.SetAuthorizationRequest{Caller: owner, RoleID: 5, Address: "", IsMember: true},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
		"Repository errors should propagate": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("SetMember", mock.Anything, model.RoleID(5), model.Address("0xa"), true).Once().Return(fmt.Errorf("database error"))
			},
			req:    role.SetAuthorizationRequest{Caller: owner, RoleID: 5, Address: "0xa", IsMember: true},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := &storagemock.MockRepository{}
			test.mockRepo(mRepo)

			svc, err := role.NewService(role.ServiceConfig{Repository: mRepo, Owner: owner, Logger: log.Noop})
			require.NoError(err)

			resp, err := svc.SetAuthorization(context.Background(), test.req)

			if test.expErr {
				require.Error(err)
				assert.Nil(resp)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
			} else {
				require.NoError(err)
				assert.Equal(test.expEvents, resp.Events)
			}

			mRepo.AssertExpectations(t)
		})
	}
}

func TestServiceIsMember(t *testing.T) {
	mRepo := &storagemock.MockRepository{}
	mRepo.On("IsMember", mock.Anything, model.RoleID(5), model.Address("0xa")).Twice().Return(true, nil)
	mRepo.On("ListMembers", mock.Anything, model.RoleID(5)).Once().Return([]model.Address{"0xa"}, nil)

	svc, err := role.NewService(role.ServiceConfig{Repository: mRepo, Owner: owner})
	require.NoError(t, err)

	ok, err := svc.IsMember(context.Background(), 5, "0xa")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsMember(context.Background(), 5, "0xA")
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := svc.ListMembers(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Address{"0xa"}, members)

	mRepo.AssertExpectations(t)
}

func TestServiceMixedCaseOwner(t *testing.T) {
	mRepo := &storagemock.MockRepository{}
	mRepo.On("SetMember", mock.Anything, model.RoleID(5), model.Address("0xa"), true).Once().Return(nil)

	svc, err := role.NewService(role.ServiceConfig{Repository: mRepo, Owner: "0xOwner"})
	require.NoError(t, err)

	_, err = svc.SetAuthorization(context.Background(), role.SetAuthorizationRequest{Caller: "0xowner", RoleID: 5, Address: "0xa", IsMember: true})
	require.NoError(t, err)

	mRepo.AssertExpectations(t)
}

func TestServiceWithoutOwnerRejectsChanges(t *testing.T) {
	mRepo := &storagemock.MockRepository{}

	svc, err := role.NewService(role.ServiceConfig{Repository: mRepo})
	require.NoError(t, err)

	_, err = svc.SetAuthorization(context.Background(), role.SetAuthorizationRequest{RoleID: 5, Address: "0xa", IsMember: true})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	mRepo.AssertExpectations(t)
}
