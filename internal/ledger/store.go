package ledger

import (
	"context"

	"propshare-backend/internal/domain"
)

// ChangeSet is everything one operation writes. A Store applies it atomically.
type ChangeSet struct {
	Property *domain.Property
	// NewProperty marks Property as a fresh issuance; a store must reject an existing id.
	NewProperty bool
	Holdings    []domain.ShareHolding
	Pending     *domain.PendingVerification
	// ClearPending removes the pending verification of Property.
	ClearPending bool
	Proposal     *domain.Proposal
	NewProposal  bool
	Vote         *domain.ProposalVote
	Events       []domain.LedgerEvent
}

// Snapshot is the full persisted state used to rebuild a ledger at boot.
type Snapshot struct {
	Properties []domain.Property
	Holdings   []domain.ShareHolding
	Pending    []domain.PendingVerification
	Proposals  []domain.Proposal
	Votes      []domain.ProposalVote
}

// Store persists change sets. Apply must be all-or-nothing.
type Store interface {
	Apply(ctx context.Context, cs ChangeSet) error
	Load(ctx context.Context) (*Snapshot, error)
}

// Publisher fans committed events out to external collaborators.
type Publisher interface {
	Publish(ctx context.Context, ev domain.LedgerEvent) error
}

type memoryStore struct{}

func (memoryStore) Apply(context.Context, ChangeSet) error     { return nil }
func (memoryStore) Load(context.Context) (*Snapshot, error) { return &Snapshot{}, nil }
