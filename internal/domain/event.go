package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger event types, one per committed operation.
const (
	EventTokenized        = "tokenized"
	EventPurchased        = "purchased"
	EventFunded           = "funded"
	EventRentVerified     = "rent_verified"
	EventRentDeposited    = "rent_deposited"
	EventWithdrawn        = "withdrawn"
	EventProposalCreated  = "proposal_created"
	EventVoted            = "voted"
	EventProposalExecuted = "proposal_executed"
)

// LedgerEvent is the journal entry written with every committed change set.
// Seq is assigned by the database on insert and orders the journal by commit.
type LedgerEvent struct {
	Seq        uint64         `gorm:"column:seq;primaryKey;autoIncrement" json:"seq,omitempty"`
	EventID    uuid.UUID      `gorm:"column:event_id;type:uuid;uniqueIndex;not null" json:"event_id"`
	EventType  string         `gorm:"column:event_type;type:varchar(30);not null;index" json:"event_type"`
	PropertyID uint64         `gorm:"column:property_id;not null;index" json:"property_id"`
	ProposalID *uint64        `gorm:"column:proposal_id" json:"proposal_id,omitempty"`
	Actor      string         `gorm:"column:actor;type:varchar(42)" json:"actor"`
	EventData  datatypes.JSON `gorm:"column:event_data;type:json;not null" json:"event_data"`
	CreatedAt  time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (LedgerEvent) TableName() string {
	return "LedgerEvents"
}

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
