package database

import (
	"context"
	"fmt"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/ledger"

	"gorm.io/gorm"
)

// LedgerStore persists ledger change sets, one database transaction per operation.
type LedgerStore struct {
	DB *gorm.DB
}

var _ ledger.Store = (*LedgerStore)(nil)

// Apply writes cs atomically. New properties and proposals are inserted so an id taken by another
// writer fails the transaction; existing rows are upserted by primary key. The journal is append-only.
func (s *LedgerStore) Apply(ctx context.Context, cs ledger.ChangeSet) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cs.Property != nil {
			if err := insertOrSave(tx, cs.Property, cs.NewProperty); err != nil {
				return fmt.Errorf("save property %d: %w", cs.Property.PropertyID, err)
			}
			if cs.ClearPending {
				if err := tx.Where("property_id = ?", cs.Property.PropertyID).Delete(&domain.PendingVerification{}).Error; err != nil {
					return fmt.Errorf("clear pending verification %d: %w", cs.Property.PropertyID, err)
				}
			}
		}
		for i := range cs.Holdings {
			h := cs.Holdings[i]
			if err := tx.Save(&h).Error; err != nil {
				return fmt.Errorf("save holding %d/%s: %w", h.PropertyID, h.Holder, err)
			}
		}
		if cs.Pending != nil {
			if err := tx.Save(cs.Pending).Error; err != nil {
				return fmt.Errorf("save pending verification %d: %w", cs.Pending.PropertyID, err)
			}
		}
		if cs.Proposal != nil {
			if err := insertOrSave(tx, cs.Proposal, cs.NewProposal); err != nil {
				return fmt.Errorf("save proposal %d: %w", cs.Proposal.ProposalID, err)
			}
		}
		if cs.Vote != nil {
			// primary key (proposal, voter) rejects a second vote
			if err := tx.Create(cs.Vote).Error; err != nil {
				return fmt.Errorf("record vote %d/%s: %w", cs.Vote.ProposalID, cs.Vote.Voter, err)
			}
		}
		for i := range cs.Events {
			ev := cs.Events[i]
			if err := tx.Create(&ev).Error; err != nil {
				return fmt.Errorf("append event %s: %w", ev.EventType, err)
			}
		}
		return nil
	})
}

func insertOrSave(tx *gorm.DB, row interface{}, create bool) error {
	if create {
		return tx.Create(row).Error
	}
	return tx.Save(row).Error
}

// Load reads the full ledger state.
func (s *LedgerStore) Load(ctx context.Context) (*ledger.Snapshot, error) {
	db := s.DB.WithContext(ctx)
	snap := &ledger.Snapshot{}
	if err := db.Order("property_id").Find(&snap.Properties).Error; err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	if err := db.Find(&snap.Holdings).Error; err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	if err := db.Find(&snap.Pending).Error; err != nil {
		return nil, fmt.Errorf("load pending verifications: %w", err)
	}
	if err := db.Order("proposal_id").Find(&snap.Proposals).Error; err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	if err := db.Find(&snap.Votes).Error; err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	return snap, nil
}

// Events returns the journal of one property in commit order.
func (s *LedgerStore) Events(ctx context.Context, propertyID uint64, limit int) ([]domain.LedgerEvent, error) {
	var events []domain.LedgerEvent
	q := s.DB.WithContext(ctx).Where("property_id = ?", propertyID).Order("seq")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
