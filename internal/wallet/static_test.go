package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Connect(t *testing.T) {
	ctx := context.Background()

	_, err := NewStatic("296").Connect(ctx)
	assert.ErrorIs(t, err, ErrNoWalletInstalled)

	w := NewStatic("296", "0xAAA", "0xBBB")
	w.RejectConnect(true)
	_, err = w.Connect(ctx)
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Empty(t, w.Account())

	w.RejectConnect(false)
	addr, err := w.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xAAA", addr)
	assert.Equal(t, "0xAAA", w.Account())
}

func TestStatic_AccountsChanged(t *testing.T) {
	w := NewStatic("296", "0xAAA")
	var got [][]string
	w.OnAccountsChanged(func(accounts []string) { got = append(got, accounts) })

	w.SetAccounts("0xCCC")
	assert.Empty(t, got, "no events before connect")

	_, err := w.Connect(context.Background())
	require.NoError(t, err)
	w.SetAccounts("0xDDD", "0xEEE")
	w.SetAccounts()

	require.Len(t, got, 2)
	assert.Equal(t, []string{"0xDDD", "0xEEE"}, got[0])
	assert.Empty(t, got[1])
	assert.Empty(t, w.Account())
}

func TestStatic_ChainChanged(t *testing.T) {
	w := NewStatic("296", "0xAAA")
	var got []string
	w.OnChainChanged(func(id string) { got = append(got, id) })

	w.SetChain("296")
	w.SetChain("1")
	assert.Equal(t, []string{"1"}, got)
	assert.Equal(t, "1", w.ChainID())
}
