package store

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/erarewards/internal/crypto"
)

func TestBalances(t *testing.T) {
	balances := NewBalances(newTestDB(t))
	account := crypto.AccountID{0xaa}

	balance, err := balances.Balance(account)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	require.NoError(t, balances.PutBalance(account, uint256.NewInt(100), uint256.NewInt(150)))

	balance, err = balances.Balance(account)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance.Uint64())

	issuance, err := balances.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, uint64(150), issuance.Uint64())
}

func TestEvents(t *testing.T) {
	events := NewEvents(newTestDB(t))

	seq, err := events.Append("First", []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	seq, err = events.Append("Second", []byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	records, err := events.List()
	require.NoError(t, err)
	assert.Equal(t, []EventRecord{
		{Seq: 0, Name: "First", Data: []byte{0x01}},
		{Seq: 1, Name: "Second", Data: []byte{0x02}},
	}, records)
}

func TestOutbound(t *testing.T) {
	outbound := NewOutbound(newTestDB(t))

	nonce, err := outbound.NextNonce()
	require.NoError(t, err)
	assert.Zero(t, nonce)

	first := OutboundMessage{Nonce: nonce, ID: crypto.Hash{0x01}, Data: []byte("a")}
	require.NoError(t, outbound.Enqueue(first))

	nonce, err = outbound.NextNonce()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	second := OutboundMessage{Nonce: nonce, ID: crypto.Hash{0x02}, Data: []byte("b")}
	require.NoError(t, outbound.Enqueue(second))

	pending, err := outbound.Pending()
	require.NoError(t, err)
	assert.Equal(t, []OutboundMessage{first, second}, pending)

	require.NoError(t, outbound.Remove(first.Nonce))
	pending, err = outbound.Pending()
	require.NoError(t, err)
	assert.Equal(t, []OutboundMessage{second}, pending)

	// removal does not rewind the nonce
	nonce, err = outbound.NextNonce()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)
}
