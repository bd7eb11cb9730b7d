package ledger

import (
	"context"
	"fmt"
	"strings"

	"propshare-backend/internal/domain"
)

// Verify records an oracle attestation of rent collected for a property, replacing any earlier
// attestation that was not yet deposited. Requires VerifierCapability.
func (l *Ledger) Verify(ctx context.Context, caller Principal, propertyID uint64, amount domain.Wei) (domain.PendingVerification, error) {
	if !caller.Has(VerifierCapability) {
		return domain.PendingVerification{}, fmt.Errorf("%w: verify requires verifier capability", ErrUnauthorized)
	}
	if amount.Sign() <= 0 {
		return domain.PendingVerification{}, fmt.Errorf("%w: verified amount must be positive", ErrInvalidArgument)
	}
	b, err := l.book(propertyID)
	if err != nil {
		return domain.PendingVerification{}, err
	}

	b.mu.Lock()
	now := l.now()
	pv := domain.PendingVerification{
		PropertyID: propertyID,
		Amount:     amount,
		VerifiedBy: strings.Clone(strings.ToLower(caller.Address)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	data := map[string]interface{}{"amount": amount.String()}
	if b.pending != nil {
		pv.CreatedAt = b.pending.CreatedAt
		data["replaced"] = b.pending.Amount.String()
	}
	events := []domain.LedgerEvent{l.newEvent(domain.EventRentVerified, propertyID, nil, caller.Address, data)}
	if err := l.commit(ctx, ChangeSet{Pending: &pv, Events: events}); err != nil {
		b.mu.Unlock()
		return domain.PendingVerification{}, err
	}
	b.pending = &pv
	b.mu.Unlock()

	l.publish(ctx, events)
	return pv, nil
}

// Deposit accepts rent from the property's manager. amount must equal the pending verified
// amount and funds must equal amount; on success the verification is consumed and the rent
// accrues to the current shareholders.
func (l *Ledger) Deposit(ctx context.Context, caller Principal, propertyID uint64, amount, funds domain.Wei) (domain.Property, error) {
	if amount.Sign() <= 0 {
		return domain.Property{}, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidArgument)
	}
	b, err := l.book(propertyID)
	if err != nil {
		return domain.Property{}, err
	}

	b.mu.Lock()
	p := b.property
	if caller.Address == "" || !strings.EqualFold(caller.Address, p.Manager) {
		b.mu.Unlock()
		return domain.Property{}, fmt.Errorf("%w: only the manager of property %d may deposit", ErrUnauthorized, propertyID)
	}
	if b.pending == nil {
		b.mu.Unlock()
		return domain.Property{}, fmt.Errorf("%w: property %d", ErrNoVerification, propertyID)
	}
	if !amount.Equal(b.pending.Amount) {
		b.mu.Unlock()
		return domain.Property{}, fmt.Errorf("%w: deposit %s, verified %s", ErrAmountMismatch, amount, b.pending.Amount)
	}
	if !funds.Equal(amount) {
		b.mu.Unlock()
		return domain.Property{}, fmt.Errorf("%w: funds %s do not equal amount %s", ErrInvalidArgument, funds, amount)
	}
	if err := accrue(&p, amount); err != nil {
		b.mu.Unlock()
		return domain.Property{}, err
	}
	p.UpdatedAt = l.now()

	events := []domain.LedgerEvent{l.newEvent(domain.EventRentDeposited, propertyID, nil, p.Manager, map[string]interface{}{
		"amount":                    amount.String(),
		"rent_balance":              p.RentBalance.String(),
		"cumulative_rent_per_share": p.CumulativeRentPerShare.String(),
	})}
	if err := l.commit(ctx, ChangeSet{Property: &p, ClearPending: true, Events: events}); err != nil {
		b.mu.Unlock()
		return domain.Property{}, err
	}
	b.property = p
	b.pending = nil
	b.mu.Unlock()

	l.publish(ctx, events)
	return p, nil
}

// PendingVerification returns the attestation awaiting deposit, if any.
func (l *Ledger) PendingVerification(propertyID uint64) (domain.PendingVerification, bool, error) {
	b, err := l.book(propertyID)
	if err != nil {
		return domain.PendingVerification{}, false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.pending == nil {
		return domain.PendingVerification{}, false, nil
	}
	return *b.pending, true, nil
}
