package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"propshare-backend/internal/domain"

	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func addr(n int) string { return fmt.Sprintf("0x%040x", n) }

var (
	admin     = Principal{Address: addr(1), Capabilities: []Capability{AdminCapability, VerifierCapability}}
	verifier  = Principal{Address: addr(3), Capabilities: []Capability{VerifierCapability}}
	managerID = addr(2)
	manager   = Principal{Address: managerID}
	alice     = addr(10)
	bob       = addr(11)
	carol     = addr(12)
)

func wei(n int64) domain.Wei { return domain.NewWei(n) }

// tokenize registers a property priced at one wei per share.
func tokenize(t *testing.T, l *Ledger, shares int64) domain.Property {
	t.Helper()
	p, err := l.Tokenize(ctx, admin, TokenizeInput{
		Name:          "Harbor Lofts",
		URI:           "ipfs://harbor-lofts",
		TotalShares:   shares,
		PricePerShare: wei(1),
		Manager:       managerID,
	})
	require.NoError(t, err)
	return p
}

func buy(t *testing.T, l *Ledger, propertyID uint64, holder string, quantity int64) {
	t.Helper()
	_, err := l.Purchase(ctx, propertyID, holder, quantity, wei(quantity))
	require.NoError(t, err)
}

func payRent(t *testing.T, l *Ledger, propertyID uint64, amount int64) {
	t.Helper()
	_, err := l.Verify(ctx, admin, propertyID, wei(amount))
	require.NoError(t, err)
	_, err = l.Deposit(ctx, manager, propertyID, wei(amount), wei(amount))
	require.NoError(t, err)
}

func requireInvariants(t *testing.T, l *Ledger) {
	t.Helper()
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, b := range l.books {
		b.mu.RLock()
		err := b.checkInvariants()
		b.mu.RUnlock()
		require.NoError(t, err)
	}
}

// memStore keeps applied change sets so a second ledger can be restored from them.
type memStore struct {
	mu         sync.Mutex
	fail       error
	properties map[uint64]domain.Property
	holdings   map[string]domain.ShareHolding
	pending    map[uint64]domain.PendingVerification
	proposals  map[uint64]domain.Proposal
	votes      map[string]domain.ProposalVote
	events     []domain.LedgerEvent
}

func newMemStore() *memStore {
	return &memStore{
		properties: make(map[uint64]domain.Property),
		holdings:   make(map[string]domain.ShareHolding),
		pending:    make(map[uint64]domain.PendingVerification),
		proposals:  make(map[uint64]domain.Proposal),
		votes:      make(map[string]domain.ProposalVote),
	}
}

func (s *memStore) setFail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *memStore) Apply(_ context.Context, cs ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if cs.Property != nil {
		s.properties[cs.Property.PropertyID] = *cs.Property
		if cs.ClearPending {
			delete(s.pending, cs.Property.PropertyID)
		}
	}
	for _, h := range cs.Holdings {
		s.holdings[fmt.Sprintf("%d/%s", h.PropertyID, h.Holder)] = h
	}
	if cs.Pending != nil {
		s.pending[cs.Pending.PropertyID] = *cs.Pending
	}
	if cs.Proposal != nil {
		s.proposals[cs.Proposal.ProposalID] = *cs.Proposal
	}
	if cs.Vote != nil {
		s.votes[fmt.Sprintf("%d/%s", cs.Vote.ProposalID, cs.Vote.Voter)] = *cs.Vote
	}
	s.events = append(s.events, cs.Events...)
	return nil
}

// gatedStore parks change sets matching hold until release is closed.
type gatedStore struct {
	*memStore
	hold    func(ChangeSet) bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		memStore: newMemStore(),
		hold:     func(ChangeSet) bool { return false },
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
}

func (s *gatedStore) Apply(ctx context.Context, cs ChangeSet) error {
	if s.hold(cs) {
		s.entered <- struct{}{}
		<-s.release
	}
	return s.memStore.Apply(ctx, cs)
}

func (s *memStore) Load(context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &Snapshot{}
	for _, p := range s.properties {
		snap.Properties = append(snap.Properties, p)
	}
	for _, h := range s.holdings {
		snap.Holdings = append(snap.Holdings, h)
	}
	for _, pv := range s.pending {
		snap.Pending = append(snap.Pending, pv)
	}
	for _, p := range s.proposals {
		snap.Proposals = append(snap.Proposals, p)
	}
	for _, v := range s.votes {
		snap.Votes = append(snap.Votes, v)
	}
	return snap, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.LedgerEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev.EventType == eventType {
			n++
		}
	}
	return n
}
