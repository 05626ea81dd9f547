package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTriggerArgs(t *testing.T) {
	cases := []struct {
		name string
		args string
		want TriggerArgs
		err  bool
	}{
		{name: "numeric", args: "btc < 0.5", want: TriggerArgs{Currency: "btc", Comparison: "<", Amount: "0.5"}},
		{name: "any", args: "xmr any", want: TriggerArgs{Currency: "xmr", Comparison: "any"}},
		{name: "once", args: "eth > 10 ONCE", want: TriggerArgs{Currency: "eth", Comparison: ">", Amount: "10", OnlyOnce: true}},
		{name: "any once", args: "eth any once", want: TriggerArgs{Currency: "eth", Comparison: "any", OnlyOnce: true}},
		{name: "missing op", args: "btc", err: true},
		{name: "too many", args: "btc < 1 2", err: true},
		{name: "empty", args: "  ", err: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTriggerArgs(tc.args)
			if tc.err {
				assert.ErrorIs(t, err, ErrInvalidArguments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseEditTriggerArgs(t *testing.T) {
	id, args, err := ParseEditTriggerArgs("abc-123 btc = 2")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
	assert.Equal(t, TriggerArgs{Currency: "btc", Comparison: "=", Amount: "2"}, args)

	_, _, err = ParseEditTriggerArgs("abc-123")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestParseIDAndTrack(t *testing.T) {
	id, err := ParseID(" abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = ParseID("a b")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	orderID, token, err := ParseTrackArgs("o1 secret")
	require.NoError(t, err)
	assert.Equal(t, "o1", orderID)
	assert.Equal(t, "secret", token)

	_, _, err = ParseTrackArgs("o1")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestParseToggle(t *testing.T) {
	enabled, set, err := ParseToggle("ON")
	require.NoError(t, err)
	assert.True(t, set)
	assert.True(t, enabled)

	enabled, set, err = ParseToggle("off")
	require.NoError(t, err)
	assert.True(t, set)
	assert.False(t, enabled)

	_, set, err = ParseToggle("")
	require.NoError(t, err)
	assert.False(t, set)

	_, _, err = ParseToggle("maybe")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}
