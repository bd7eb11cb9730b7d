package ledger

import (
	"context"
	"fmt"

	"propshare-backend/internal/domain"
)

// Purchase sells quantity shares to buyer for exactly quantity × pricePerShare.
// Rent earned by the buyer's existing shares is carried forward before the new shares are added,
// so the new shares earn only rent accrued after this call.
func (l *Ledger) Purchase(ctx context.Context, propertyID uint64, buyer string, quantity int64, payment domain.Wei) (domain.ShareHolding, error) {
	if quantity <= 0 {
		return domain.ShareHolding{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}
	buyer, err := NormalizeAddress(buyer)
	if err != nil {
		return domain.ShareHolding{}, err
	}
	b, err := l.book(propertyID)
	if err != nil {
		return domain.ShareHolding{}, err
	}

	b.mu.Lock()
	p := b.property
	if quantity > p.SharesRemaining() {
		b.mu.Unlock()
		return domain.ShareHolding{}, fmt.Errorf("%w: requested %d, %d remaining", ErrSoldOut, quantity, p.SharesRemaining())
	}
	cost := p.PricePerShare.MulInt64(quantity)
	if !payment.Equal(cost) {
		b.mu.Unlock()
		return domain.ShareHolding{}, fmt.Errorf("%w: payment %s does not equal cost %s", ErrInvalidArgument, payment, cost)
	}

	now := l.now()
	var h domain.ShareHolding
	if existing, ok := b.holdings[buyer]; ok {
		h = *existing
	} else {
		h = domain.ShareHolding{PropertyID: propertyID, Holder: buyer, CreatedAt: now}
	}
	settle(&h, p.CumulativeRentPerShare)
	h.Shares += quantity
	h.UpdatedAt = now

	p.SharesSold += quantity
	p.FundsRaised = p.PricePerShare.MulInt64(p.SharesSold)
	p.IsFunded = p.SharesSold == p.TotalShares
	p.UpdatedAt = now

	events := []domain.LedgerEvent{l.newEvent(domain.EventPurchased, propertyID, nil, buyer, map[string]interface{}{
		"quantity":    quantity,
		"payment":     payment.String(),
		"shares":      h.Shares,
		"shares_sold": p.SharesSold,
	})}
	if p.IsFunded && !b.property.IsFunded {
		events = append(events, l.newEvent(domain.EventFunded, propertyID, nil, buyer, map[string]interface{}{
			"funds_raised": p.FundsRaised.String(),
		}))
	}

	if err := l.commit(ctx, ChangeSet{Property: &p, Holdings: []domain.ShareHolding{h}, Events: events}); err != nil {
		b.mu.Unlock()
		return domain.ShareHolding{}, err
	}
	b.property = p
	b.holdings[buyer] = &h
	b.mu.Unlock()

	l.publish(ctx, events)
	return h, nil
}

// Holding returns holder's position in a property. A holder who never bought gets a zero holding.
func (l *Ledger) Holding(propertyID uint64, holder string) (domain.ShareHolding, error) {
	holder, err := NormalizeAddress(holder)
	if err != nil {
		return domain.ShareHolding{}, err
	}
	b, err := l.book(propertyID)
	if err != nil {
		return domain.ShareHolding{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if h, ok := b.holdings[holder]; ok {
		return *h, nil
	}
	return domain.ShareHolding{PropertyID: propertyID, Holder: holder}, nil
}

// SharesBalance is the share count of holder in a property.
func (l *Ledger) SharesBalance(propertyID uint64, holder string) (int64, error) {
	h, err := l.Holding(propertyID, holder)
	if err != nil {
		return 0, err
	}
	return h.Shares, nil
}
