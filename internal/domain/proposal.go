package domain

import "time"

// Proposal status values. Only executed is persisted; the rest are derived from the tally.
const (
	ProposalOpen     = "open"
	ProposalPassing  = "passing"
	ProposalFailed   = "failed"
	ProposalExecuted = "executed"
)

// Proposal is a share-weighted governance decision on one property.
type Proposal struct {
	ProposalID   uint64         `gorm:"column:proposal_id;primaryKey;autoIncrement:false" json:"proposal_id"`
	PropertyID   uint64         `gorm:"column:property_id;not null;index" json:"property_id"`
	Creator      string         `gorm:"column:creator;type:varchar(42);not null" json:"creator"`
	Description  string         `gorm:"column:description;not null" json:"description"`
	VotesFor     int64          `gorm:"column:votes_for;not null;default:0" json:"votes_for"`
	VotesAgainst int64          `gorm:"column:votes_against;not null;default:0" json:"votes_against"`
	Executed     bool           `gorm:"column:executed;not null;default:false" json:"executed"`
	Votes        []ProposalVote `gorm:"-" json:"votes,omitempty"`
	CreatedAt    time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Proposal) TableName() string {
	return "Proposals"
}

// Status derives the read-time state of the proposal.
func (p Proposal) Status() string {
	switch {
	case p.Executed:
		return ProposalExecuted
	case p.VotesFor == 0 && p.VotesAgainst == 0:
		return ProposalOpen
	case p.VotesFor > p.VotesAgainst:
		return ProposalPassing
	default:
		return ProposalFailed
	}
}

// ProposalVote records one voter in a proposal's voter set with the weight counted.
type ProposalVote struct {
	ProposalID uint64    `gorm:"column:proposal_id;primaryKey;autoIncrement:false" json:"proposal_id"`
	Voter      string    `gorm:"column:voter;type:varchar(42);primaryKey" json:"voter"`
	InFavor    bool      `gorm:"column:in_favor;not null" json:"in_favor"`
	Weight     int64     `gorm:"column:weight;not null" json:"weight"`
	CreatedAt  time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (ProposalVote) TableName() string {
	return "ProposalVotes"
}
