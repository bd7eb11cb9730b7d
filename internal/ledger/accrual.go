package ledger

import (
	"context"
	"fmt"

	"propshare-backend/internal/domain"
)

// Scale is the fixed-point factor of CumulativeRentPerShare. Truncation loses less than one
// base unit per holder per settlement.
var Scale = domain.NewWei(1_000_000_000_000_000_000)

// accrue spreads amount over the sold shares of p.
func accrue(p *domain.Property, amount domain.Wei) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: accrual amount must be positive", ErrInvalidArgument)
	}
	if p.SharesSold == 0 {
		return fmt.Errorf("%w: property %d", ErrNoShareholders, p.PropertyID)
	}
	p.CumulativeRentPerShare = p.CumulativeRentPerShare.Add(amount.Mul(Scale).QuoInt64(p.SharesSold))
	p.RentBalance = p.RentBalance.Add(amount)
	return nil
}

// accrued is the rent earned by h's current shares since its debt was last settled.
func accrued(h domain.ShareHolding, cumulative domain.Wei) domain.Wei {
	return cumulative.Sub(h.RentDebt).MulInt64(h.Shares).Quo(Scale)
}

// entitlement is what h can withdraw right now.
func entitlement(h domain.ShareHolding, cumulative domain.Wei) domain.Wei {
	return h.Unclaimed.Add(accrued(h, cumulative))
}

// settle moves everything h has earned into Unclaimed and prices the current accumulator in,
// so shares added afterwards earn only future rent.
func settle(h *domain.ShareHolding, cumulative domain.Wei) {
	h.Unclaimed = entitlement(*h, cumulative)
	h.RentDebt = cumulative
}

// Entitlement previews what holder could withdraw from a property right now.
func (l *Ledger) Entitlement(propertyID uint64, holder string) (domain.Wei, error) {
	holder, err := NormalizeAddress(holder)
	if err != nil {
		return domain.Wei{}, err
	}
	b, err := l.book(propertyID)
	if err != nil {
		return domain.Wei{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.holdings[holder]
	if !ok {
		return domain.Wei{}, nil
	}
	return entitlement(*h, b.property.CumulativeRentPerShare), nil
}

// Withdraw pays holder its full entitlement and settles it against the current accumulator.
// The returned amount is owed to the holder by the caller's payment rail.
func (l *Ledger) Withdraw(ctx context.Context, propertyID uint64, holder string) (domain.Wei, error) {
	holder, err := NormalizeAddress(holder)
	if err != nil {
		return domain.Wei{}, err
	}
	b, err := l.book(propertyID)
	if err != nil {
		return domain.Wei{}, err
	}

	b.mu.Lock()
	existing, ok := b.holdings[holder]
	if !ok {
		b.mu.Unlock()
		return domain.Wei{}, fmt.Errorf("%w: %s holds no shares in property %d", ErrNothingToWithdraw, holder, propertyID)
	}
	p := b.property
	h := *existing
	amount := entitlement(h, p.CumulativeRentPerShare)
	if amount.Sign() <= 0 {
		b.mu.Unlock()
		return domain.Wei{}, fmt.Errorf("%w: property %d", ErrNothingToWithdraw, propertyID)
	}

	now := l.now()
	h.RentDebt = p.CumulativeRentPerShare
	h.Unclaimed = domain.Wei{}
	h.UpdatedAt = now
	p.RentBalance = p.RentBalance.Sub(amount)
	p.UpdatedAt = now
	if p.RentBalance.Sign() < 0 {
		panic(fmt.Sprintf("ledger: property %d rent balance negative after paying %s", propertyID, amount))
	}

	events := []domain.LedgerEvent{l.newEvent(domain.EventWithdrawn, propertyID, nil, holder, map[string]interface{}{
		"amount":       amount.String(),
		"rent_balance": p.RentBalance.String(),
	})}
	if err := l.commit(ctx, ChangeSet{Property: &p, Holdings: []domain.ShareHolding{h}, Events: events}); err != nil {
		b.mu.Unlock()
		return domain.Wei{}, err
	}
	b.property = p
	b.holdings[holder] = &h
	b.mu.Unlock()

	l.publish(ctx, events)
	return amount, nil
}
