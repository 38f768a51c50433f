package commands

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/model"
)

func TestParseRoleIDs(t *testing.T) {
	tests := map[string]struct {
		values []string
		expIDs []model.RoleID
		expErr bool
	}{
		"No values should return no roles": {
			values: nil,
			expIDs: nil,
		},
		"Repeated values should parse": {
			values: []string{"10", "11"},
			expIDs: []model.RoleID{10, 11},
		},
		"Comma separated values should parse": {
			values: []string{"10, 11", "12"},
			expIDs: []model.RoleID{10, 11, 12},
		},
		"Empty entries should be ignored": {
			values: []string{"10,,"},
			expIDs: []model.RoleID{10},
		},
		"Invalid roles should fail": {
			values: []string{"ten"},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ids, err := parseRoleIDs(tc.values)

			if tc.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expIDs, ids)
		})
	}
}

func TestParseReward(t *testing.T) {
	r, err := parseReward("1_000_000")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(big.NewInt(1000000)))

	r, err = parseReward("")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Sign())

	_, err = parseReward("1.5")
	assert.ErrorIs(t, err, model.ErrNotValid)
}
