package ledger

import (
	"context"
	"fmt"
	"strings"

	"propshare-backend/internal/domain"
)

// TokenizeInput describes a new property issuance.
type TokenizeInput struct {
	Name          string
	URI           string
	TotalShares   int64
	PricePerShare domain.Wei
	Manager       string
}

// Tokenize registers a property with a fixed share issuance. Requires AdminCapability.
func (l *Ledger) Tokenize(ctx context.Context, caller Principal, in TokenizeInput) (domain.Property, error) {
	if !caller.Has(AdminCapability) {
		return domain.Property{}, fmt.Errorf("%w: tokenize requires admin capability", ErrUnauthorized)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Property{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if in.TotalShares <= 0 {
		return domain.Property{}, fmt.Errorf("%w: total shares must be positive", ErrInvalidArgument)
	}
	if in.PricePerShare.Sign() <= 0 {
		return domain.Property{}, fmt.Errorf("%w: price per share must be positive", ErrInvalidArgument)
	}
	manager, err := NormalizeAddress(in.Manager)
	if err != nil {
		return domain.Property{}, err
	}

	l.tokenizeMu.Lock()
	l.mu.RLock()
	id := l.lastPropertyID + 1
	l.mu.RUnlock()

	now := l.now()
	p := domain.Property{
		PropertyID:    id,
		Name:          name,
		URI:           strings.TrimSpace(in.URI),
		Manager:       manager,
		TotalShares:   in.TotalShares,
		PricePerShare: in.PricePerShare,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ev := l.newEvent(domain.EventTokenized, p.PropertyID, nil, caller.Address, map[string]interface{}{
		"name":            p.Name,
		"manager":         p.Manager,
		"total_shares":    p.TotalShares,
		"price_per_share": p.PricePerShare.String(),
	})
	if err := l.commit(ctx, ChangeSet{Property: &p, NewProperty: true, Events: []domain.LedgerEvent{ev}}); err != nil {
		l.tokenizeMu.Unlock()
		return domain.Property{}, err
	}
	l.mu.Lock()
	l.books[id] = newBook(p)
	l.lastPropertyID = id
	l.mu.Unlock()
	l.tokenizeMu.Unlock()

	l.publish(ctx, []domain.LedgerEvent{ev})
	return p, nil
}

// GetProperty returns a snapshot of one property.
func (l *Ledger) GetProperty(propertyID uint64) (domain.Property, error) {
	b, err := l.book(propertyID)
	if err != nil {
		return domain.Property{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.property, nil
}

// ListProperties returns every property ordered by id.
func (l *Ledger) ListProperties() []domain.Property {
	l.mu.RLock()
	books := sortedBooks(l.books)
	l.mu.RUnlock()

	out := make([]domain.Property, 0, len(books))
	for _, b := range books {
		b.mu.RLock()
		out = append(out, b.property)
		b.mu.RUnlock()
	}
	return out
}

// PropertyCount is the id of the most recently tokenized property.
func (l *Ledger) PropertyCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastPropertyID
}
