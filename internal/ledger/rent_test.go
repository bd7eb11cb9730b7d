package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_RequiresVerifierCapability(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)

	onlyAdmin := Principal{Address: addr(5), Capabilities: []Capability{AdminCapability}}
	_, err := l.Verify(ctx, onlyAdmin, p.PropertyID, wei(10))
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = l.Verify(ctx, manager, p.PropertyID, wei(10))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = l.Verify(ctx, verifier, p.PropertyID, wei(0))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = l.Verify(ctx, verifier, 77, wei(10))
	assert.ErrorIs(t, err, ErrNotFound)

	pv, err := l.Verify(ctx, verifier, p.PropertyID, wei(10))
	require.NoError(t, err)
	assert.Equal(t, verifier.Address, pv.VerifiedBy)
}

func TestVerify_OverwritesPending(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 10)

	_, err := l.Verify(ctx, admin, p.PropertyID, wei(10))
	require.NoError(t, err)
	_, err = l.Verify(ctx, admin, p.PropertyID, wei(25))
	require.NoError(t, err)

	pv, ok, err := l.PendingVerification(p.PropertyID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "25", pv.Amount.String())

	_, err = l.Deposit(ctx, manager, p.PropertyID, wei(10), wei(10))
	assert.ErrorIs(t, err, ErrAmountMismatch)
	_, err = l.Deposit(ctx, manager, p.PropertyID, wei(25), wei(25))
	assert.NoError(t, err)
}

func TestDeposit_Gate(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 10)

	_, err := l.Deposit(ctx, manager, p.PropertyID, wei(40), wei(40))
	assert.ErrorIs(t, err, ErrNoVerification)

	_, err = l.Verify(ctx, admin, p.PropertyID, wei(40))
	require.NoError(t, err)

	_, err = l.Deposit(ctx, manager, p.PropertyID, wei(41), wei(41))
	assert.ErrorIs(t, err, ErrAmountMismatch)
	_, err = l.Deposit(ctx, manager, p.PropertyID, wei(40), wei(39))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = l.Deposit(ctx, Principal{Address: alice}, p.PropertyID, wei(40), wei(40))
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = l.Deposit(ctx, admin, p.PropertyID, wei(40), wei(40))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, ok, _ := l.PendingVerification(p.PropertyID)
	assert.True(t, ok, "rejected deposits leave the verification pending")

	got, err := l.Deposit(ctx, manager, p.PropertyID, wei(40), wei(40))
	require.NoError(t, err)
	assert.Equal(t, "40", got.RentBalance.String())

	_, ok, _ = l.PendingVerification(p.PropertyID)
	assert.False(t, ok)
	_, err = l.Deposit(ctx, manager, p.PropertyID, wei(40), wei(40))
	assert.ErrorIs(t, err, ErrNoVerification)
}

func TestDeposit_NoShareholdersKeepsVerification(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	_, err := l.Verify(ctx, admin, p.PropertyID, wei(40))
	require.NoError(t, err)

	_, err = l.Deposit(ctx, manager, p.PropertyID, wei(40), wei(40))
	assert.ErrorIs(t, err, ErrNoShareholders)

	_, ok, _ := l.PendingVerification(p.PropertyID)
	assert.True(t, ok)
	got, _ := l.GetProperty(p.PropertyID)
	assert.True(t, got.RentBalance.IsZero())
}

func TestDeposit_ManagerMatchIsCaseInsensitive(t *testing.T) {
	l := New()
	p, err := l.Tokenize(ctx, admin, TokenizeInput{
		Name: "Elm", TotalShares: 2, PricePerShare: wei(1),
		Manager: "0x00000000000000000000000000000000000000AB",
	})
	require.NoError(t, err)
	buy(t, l, p.PropertyID, alice, 2)
	_, err = l.Verify(ctx, admin, p.PropertyID, wei(2))
	require.NoError(t, err)

	_, err = l.Deposit(ctx, Principal{Address: "0x00000000000000000000000000000000000000Ab"}, p.PropertyID, wei(2), wei(2))
	assert.NoError(t, err)
}
