// Package views shapes ledger records for JSON responses: amounts stay exact wei strings and
// gain a display value in ether next to them.
package views

import (
	"propshare-backend/internal/domain"
	"propshare-backend/internal/ledger"

	"github.com/shopspring/decimal"
)

type Property struct {
	domain.Property
	SharesRemaining  int64  `json:"shares_remaining"`
	PricePerShareEth string `json:"price_per_share_eth"`
	FundsRaisedEth   string `json:"funds_raised_eth"`
	RentBalanceEth   string `json:"rent_balance_eth"`
}

func NewProperty(p domain.Property) Property {
	return Property{
		Property:         p,
		SharesRemaining:  p.SharesRemaining(),
		PricePerShareEth: p.PricePerShare.Ether(),
		FundsRaisedEth:   p.FundsRaised.Ether(),
		RentBalanceEth:   p.RentBalance.Ether(),
	}
}

func NewProperties(ps []domain.Property) []Property {
	out := make([]Property, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProperty(p))
	}
	return out
}

type Holding struct {
	PropertyID     uint64     `json:"property_id"`
	Holder         string     `json:"holder"`
	Shares         int64      `json:"shares"`
	Entitlement    domain.Wei `json:"entitlement"`
	EntitlementEth string     `json:"entitlement_eth"`
}

func NewHolding(h domain.ShareHolding, entitlement domain.Wei) Holding {
	return Holding{
		PropertyID:     h.PropertyID,
		Holder:         h.Holder,
		Shares:         h.Shares,
		Entitlement:    entitlement,
		EntitlementEth: entitlement.Ether(),
	}
}

type Proposal struct {
	domain.Proposal
	Status string `json:"status"`
}

func NewProposal(p domain.Proposal) Proposal {
	return Proposal{Proposal: p, Status: p.Status()}
}

func NewProposals(ps []domain.Proposal) []Proposal {
	out := make([]Proposal, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProposal(p))
	}
	return out
}

type Position struct {
	Property     Property   `json:"property"`
	Shares       int64      `json:"shares"`
	Invested     domain.Wei `json:"invested"`
	InvestedEth  string     `json:"invested_eth"`
	Claimable    domain.Wei `json:"claimable"`
	ClaimableEth string     `json:"claimable_eth"`
	// OwnershipPercent is OwnershipBps rendered with two decimals.
	OwnershipPercent string `json:"ownership_percent"`
}

func NewPositions(ps []ledger.Position) []Position {
	out := make([]Position, 0, len(ps))
	for _, p := range ps {
		out = append(out, Position{
			Property:         NewProperty(p.Property),
			Shares:           p.Shares,
			Invested:         p.Invested,
			InvestedEth:      p.Invested.Ether(),
			Claimable:        p.Claimable,
			ClaimableEth:     p.Claimable.Ether(),
			OwnershipPercent: percent(p.OwnershipBps),
		})
	}
	return out
}

func percent(bps int64) string {
	return decimal.New(bps, -2).StringFixed(2)
}
