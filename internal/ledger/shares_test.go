package ledger

import (
	"testing"

	"propshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchase_RequiresExactPayment(t *testing.T) {
	l := New()
	p, err := l.Tokenize(ctx, admin, TokenizeInput{Name: "Elm", TotalShares: 10, PricePerShare: wei(100), Manager: managerID})
	require.NoError(t, err)

	_, err = l.Purchase(ctx, p.PropertyID, alice, 3, wei(299))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = l.Purchase(ctx, p.PropertyID, alice, 3, wei(301))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = l.Purchase(ctx, p.PropertyID, alice, 0, wei(0))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = l.Purchase(ctx, p.PropertyID, "not-an-address", 3, wei(300))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	got, _ := l.GetProperty(p.PropertyID)
	assert.Equal(t, int64(0), got.SharesSold)

	h, err := l.Purchase(ctx, p.PropertyID, alice, 3, wei(300))
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.Shares)

	got, _ = l.GetProperty(p.PropertyID)
	assert.Equal(t, int64(3), got.SharesSold)
	assert.Equal(t, "300", got.FundsRaised.String())
}

func TestPurchase_UnknownProperty(t *testing.T) {
	l := New()
	_, err := l.Purchase(ctx, 42, alice, 1, wei(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurchase_SoldOutIffExceedsRemaining(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 7)

	_, err := l.Purchase(ctx, p.PropertyID, bob, 4, wei(4))
	assert.ErrorIs(t, err, ErrSoldOut)

	_, err = l.Purchase(ctx, p.PropertyID, bob, 3, wei(3))
	assert.NoError(t, err)
	requireInvariants(t, l)
}

func TestPurchase_FundedExactlyOnce(t *testing.T) {
	pub := &recordingPublisher{}
	l := New(WithPublisher(pub))
	p := tokenize(t, l, 10)

	buy(t, l, p.PropertyID, alice, 4)
	got, _ := l.GetProperty(p.PropertyID)
	assert.False(t, got.IsFunded)

	buy(t, l, p.PropertyID, bob, 6)
	got, _ = l.GetProperty(p.PropertyID)
	assert.True(t, got.IsFunded)
	assert.Equal(t, int64(0), got.SharesRemaining())
	assert.Equal(t, 1, pub.count(domain.EventFunded))

	_, err := l.Purchase(ctx, p.PropertyID, carol, 1, wei(1))
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Equal(t, 1, pub.count(domain.EventFunded))
	assert.Equal(t, 2, pub.count(domain.EventPurchased))
}

func TestPurchase_SumOfHoldingsEqualsSold(t *testing.T) {
	l := New()
	p := tokenize(t, l, 50)
	for i, q := range []int64{5, 1, 9, 5, 30} {
		buy(t, l, p.PropertyID, addr(100+i%3), q)
		requireInvariants(t, l)
	}

	var sum int64
	for i := 0; i < 3; i++ {
		n, err := l.SharesBalance(p.PropertyID, addr(100+i))
		require.NoError(t, err)
		sum += n
	}
	got, _ := l.GetProperty(p.PropertyID)
	assert.Equal(t, got.SharesSold, sum)
	assert.True(t, got.IsFunded)
}

func TestHolding_NeverBoughtIsZero(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	h, err := l.Holding(p.PropertyID, carol)
	require.NoError(t, err)
	assert.Equal(t, int64(0), h.Shares)
	assert.Equal(t, carol, h.Holder)
}
