package ledger

import (
	"math/big"

	"propshare-backend/internal/domain"
)

// Position is one holder's stake in one property, as shown on a portfolio page.
type Position struct {
	Property  domain.Property `json:"property"`
	Shares    int64           `json:"shares"`
	Invested  domain.Wei      `json:"invested"`
	Claimable domain.Wei      `json:"claimable"`
	// OwnershipBps is the share of the total issuance held, in basis points.
	OwnershipBps int64 `json:"ownership_bps"`
}

// Portfolio lists every property in which holder owns shares, ordered by property id.
func (l *Ledger) Portfolio(holder string) ([]Position, error) {
	holder, err := NormalizeAddress(holder)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	books := sortedBooks(l.books)
	l.mu.RUnlock()

	var out []Position
	for _, b := range books {
		b.mu.RLock()
		h, ok := b.holdings[holder]
		if ok && h.Shares > 0 {
			p := b.property
			out = append(out, Position{
				Property:     p,
				Shares:       h.Shares,
				Invested:     p.PricePerShare.MulInt64(h.Shares),
				Claimable:    entitlement(*h, p.CumulativeRentPerShare),
				OwnershipBps: ownershipBps(h.Shares, p.TotalShares),
			})
		}
		b.mu.RUnlock()
	}
	return out, nil
}

// ownershipBps is shares/total in basis points, truncated. The product is taken in big.Int
// because issuances may be large enough for shares × 10000 to overflow int64.
func ownershipBps(shares, total int64) int64 {
	n := new(big.Int).Mul(big.NewInt(shares), big.NewInt(10_000))
	return n.Quo(n, big.NewInt(total)).Int64()
}
