package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"propshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Ledger is the single authority for every property's shares, rent and proposals.
//
// Each property owns a book guarded by its own RWMutex: mutations on one property are serialized,
// mutations on different properties run in parallel, and reads take a consistent snapshot of the
// property, its holdings and its accumulator. Every mutation validates on copies, persists the
// resulting ChangeSet, and only then installs the copies, so a failed operation leaves no trace.
type Ledger struct {
	store     Store
	publisher Publisher
	now       func() time.Time

	// tokenizeMu serializes property id allocation across the commit; mu is held only to
	// look up or install books, so a slow commit never stalls other properties.
	tokenizeMu     sync.Mutex
	mu             sync.RWMutex
	books          map[uint64]*book
	lastPropertyID uint64

	gov governance
}

type book struct {
	id        uint64
	mu        sync.RWMutex
	property  domain.Property
	holdings  map[string]*domain.ShareHolding
	pending   *domain.PendingVerification
	proposals map[uint64]*proposalState
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithStore persists every change set before it is installed.
func WithStore(s Store) Option {
	return func(l *Ledger) {
		if s != nil {
			l.store = s
		}
	}
}

// WithPublisher publishes committed events.
func WithPublisher(p Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns an empty ledger. Call Restore to load persisted state.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		store: memoryStore{},
		now:   time.Now,
		books: make(map[uint64]*book),
		gov:   governance{index: make(map[uint64]uint64)},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Restore rebuilds the ledger from the store. It fails on a non-empty ledger or on persisted
// state that breaks the share invariants.
func (l *Ledger) Restore(ctx context.Context) error {
	snap, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.gov.mu.Lock()
	defer l.gov.mu.Unlock()

	if len(l.books) > 0 {
		return errors.New("ledger: restore into non-empty ledger")
	}

	books := make(map[uint64]*book, len(snap.Properties))
	var lastProperty uint64
	for _, p := range snap.Properties {
		books[p.PropertyID] = newBook(p)
		if p.PropertyID > lastProperty {
			lastProperty = p.PropertyID
		}
	}
	for i := range snap.Holdings {
		h := snap.Holdings[i]
		b, ok := books[h.PropertyID]
		if !ok {
			return fmt.Errorf("ledger: holding of %s references unknown property %d", h.Holder, h.PropertyID)
		}
		b.holdings[h.Holder] = &h
	}
	for i := range snap.Pending {
		pv := snap.Pending[i]
		b, ok := books[pv.PropertyID]
		if !ok {
			return fmt.Errorf("ledger: pending verification references unknown property %d", pv.PropertyID)
		}
		b.pending = &pv
	}

	index := make(map[uint64]uint64, len(snap.Proposals))
	states := make(map[uint64]*proposalState, len(snap.Proposals))
	var lastProposal uint64
	for _, p := range snap.Proposals {
		b, ok := books[p.PropertyID]
		if !ok {
			return fmt.Errorf("ledger: proposal %d references unknown property %d", p.ProposalID, p.PropertyID)
		}
		p.Votes = nil
		ps := &proposalState{proposal: p, voters: make(map[string]domain.ProposalVote)}
		b.proposals[p.ProposalID] = ps
		states[p.ProposalID] = ps
		index[p.ProposalID] = p.PropertyID
		if p.ProposalID > lastProposal {
			lastProposal = p.ProposalID
		}
	}
	for _, v := range snap.Votes {
		ps, ok := states[v.ProposalID]
		if !ok {
			return fmt.Errorf("ledger: vote by %s references unknown proposal %d", v.Voter, v.ProposalID)
		}
		ps.voters[v.Voter] = v
	}

	for _, b := range books {
		if err := b.checkInvariants(); err != nil {
			return err
		}
	}

	l.books = books
	l.lastPropertyID = lastProperty
	l.gov.index = index
	l.gov.lastProposalID = lastProposal
	log.Info().Int("properties", len(books)).Int("proposals", len(index)).Msg("ledger restored")
	return nil
}

func newBook(p domain.Property) *book {
	return &book{
		id:        p.PropertyID,
		property:  p,
		holdings:  make(map[string]*domain.ShareHolding),
		proposals: make(map[uint64]*proposalState),
	}
}

func (l *Ledger) book(propertyID uint64) (*book, error) {
	l.mu.RLock()
	b, ok := l.books[propertyID]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: property %d", ErrNotFound, propertyID)
	}
	return b, nil
}

// commit persists cs. Callers hold the write lock of every book cs touches.
func (l *Ledger) commit(ctx context.Context, cs ChangeSet) error {
	if err := l.store.Apply(ctx, cs); err != nil {
		return fmt.Errorf("ledger: persist: %w", err)
	}
	return nil
}

// publish runs after the book lock is released; a failed publication never undoes a commit.
func (l *Ledger) publish(ctx context.Context, events []domain.LedgerEvent) {
	for _, ev := range events {
		log.Info().Str("event", ev.EventType).Uint64("property_id", ev.PropertyID).Str("actor", ev.Actor).Msg("ledger event committed")
		if l.publisher == nil {
			continue
		}
		if err := l.publisher.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event_id", ev.EventID.String()).Str("event", ev.EventType).Msg("ledger event publish failed")
		}
	}
}

func (l *Ledger) newEvent(eventType string, propertyID uint64, proposalID *uint64, actor string, data map[string]interface{}) domain.LedgerEvent {
	payload, err := json.Marshal(data)
	if err != nil {
		// data only ever holds strings, integers and bools
		panic(fmt.Sprintf("ledger: marshal event data: %v", err))
	}
	return domain.LedgerEvent{
		EventID:    uuid.New(),
		EventType:  eventType,
		PropertyID: propertyID,
		ProposalID: proposalID,
		Actor:      strings.Clone(actor),
		EventData:  datatypes.JSON(payload),
		CreatedAt:  l.now(),
	}
}

// checkInvariants verifies the share bookkeeping of a book.
func (b *book) checkInvariants() error {
	p := b.property
	if p.SharesSold < 0 || p.SharesSold > p.TotalShares {
		return fmt.Errorf("ledger: property %d sold %d of %d shares", p.PropertyID, p.SharesSold, p.TotalShares)
	}
	if p.IsFunded != (p.SharesSold == p.TotalShares) {
		return fmt.Errorf("ledger: property %d funded flag out of sync", p.PropertyID)
	}
	var sum int64
	for _, h := range b.holdings {
		if h.Shares < 0 {
			return fmt.Errorf("ledger: holding %s of property %d is negative", h.Holder, p.PropertyID)
		}
		sum += h.Shares
	}
	if sum != p.SharesSold {
		return fmt.Errorf("ledger: property %d holdings sum to %d, sold %d", p.PropertyID, sum, p.SharesSold)
	}
	return nil
}

func sortedBooks(books map[uint64]*book) []*book {
	out := make([]*book, 0, len(books))
	for _, b := range books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
