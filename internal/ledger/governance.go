package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"propshare-backend/internal/domain"
)

// governance owns the proposal id counter and the proposal → property index.
// Proposal state itself lives in the property's book, under the book lock.
// createMu serializes id allocation across the commit; mu guards only the counter and index.
type governance struct {
	createMu       sync.Mutex
	mu             sync.Mutex
	lastProposalID uint64
	index          map[uint64]uint64
}

type proposalState struct {
	proposal domain.Proposal
	voters   map[string]domain.ProposalVote
}

func (ps *proposalState) snapshot() domain.Proposal {
	p := ps.proposal
	p.Votes = make([]domain.ProposalVote, 0, len(ps.voters))
	for _, v := range ps.voters {
		p.Votes = append(p.Votes, v)
	}
	sort.Slice(p.Votes, func(i, j int) bool { return p.Votes[i].Voter < p.Votes[j].Voter })
	return p
}

func (l *Ledger) proposalBook(proposalID uint64) (*book, error) {
	l.gov.mu.Lock()
	propertyID, ok := l.gov.index[proposalID]
	l.gov.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: proposal %d", ErrNotFound, proposalID)
	}
	return l.book(propertyID)
}

// CreateProposal opens a proposal on a property. The creator must hold shares in it.
func (l *Ledger) CreateProposal(ctx context.Context, propertyID uint64, creator, description string) (domain.Proposal, error) {
	creator, err := NormalizeAddress(creator)
	if err != nil {
		return domain.Proposal{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Proposal{}, fmt.Errorf("%w: description is required", ErrInvalidArgument)
	}
	b, err := l.book(propertyID)
	if err != nil {
		return domain.Proposal{}, err
	}

	b.mu.Lock()
	if h, ok := b.holdings[creator]; !ok || h.Shares == 0 {
		b.mu.Unlock()
		return domain.Proposal{}, fmt.Errorf("%w: %s in property %d", ErrNotAShareholder, creator, propertyID)
	}

	l.gov.createMu.Lock()
	l.gov.mu.Lock()
	id := l.gov.lastProposalID + 1
	l.gov.mu.Unlock()

	now := l.now()
	p := domain.Proposal{
		ProposalID:  id,
		PropertyID:  propertyID,
		Creator:     creator,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	events := []domain.LedgerEvent{l.newEvent(domain.EventProposalCreated, propertyID, &id, creator, map[string]interface{}{
		"description": description,
	})}
	if err := l.commit(ctx, ChangeSet{Proposal: &p, NewProposal: true, Events: events}); err != nil {
		l.gov.createMu.Unlock()
		b.mu.Unlock()
		return domain.Proposal{}, err
	}
	l.gov.mu.Lock()
	l.gov.lastProposalID = id
	l.gov.index[id] = propertyID
	l.gov.mu.Unlock()
	l.gov.createMu.Unlock()

	ps := &proposalState{proposal: p, voters: make(map[string]domain.ProposalVote)}
	b.proposals[id] = ps
	out := ps.snapshot()
	b.mu.Unlock()

	l.publish(ctx, events)
	return out, nil
}

// Vote adds voter's current share balance to one side of the tally. Weight is read at vote time,
// not at proposal creation.
func (l *Ledger) Vote(ctx context.Context, proposalID uint64, voter string, inFavor bool) (domain.Proposal, error) {
	voter, err := NormalizeAddress(voter)
	if err != nil {
		return domain.Proposal{}, err
	}
	b, err := l.proposalBook(proposalID)
	if err != nil {
		return domain.Proposal{}, err
	}

	b.mu.Lock()
	ps := b.proposals[proposalID]
	if ps.proposal.Executed {
		b.mu.Unlock()
		return domain.Proposal{}, fmt.Errorf("%w: proposal %d", ErrAlreadyExecuted, proposalID)
	}
	if _, voted := ps.voters[voter]; voted {
		b.mu.Unlock()
		return domain.Proposal{}, fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter, proposalID)
	}
	var weight int64
	if h, ok := b.holdings[voter]; ok {
		weight = h.Shares
	}
	if weight == 0 {
		b.mu.Unlock()
		return domain.Proposal{}, fmt.Errorf("%w: %s in property %d", ErrNotAShareholder, voter, ps.proposal.PropertyID)
	}

	now := l.now()
	p := ps.proposal
	if inFavor {
		p.VotesFor += weight
	} else {
		p.VotesAgainst += weight
	}
	p.UpdatedAt = now
	v := domain.ProposalVote{ProposalID: proposalID, Voter: voter, InFavor: inFavor, Weight: weight, CreatedAt: now}

	events := []domain.LedgerEvent{l.newEvent(domain.EventVoted, p.PropertyID, &proposalID, voter, map[string]interface{}{
		"in_favor":      inFavor,
		"weight":        weight,
		"votes_for":     p.VotesFor,
		"votes_against": p.VotesAgainst,
	})}
	if err := l.commit(ctx, ChangeSet{Proposal: &p, Vote: &v, Events: events}); err != nil {
		b.mu.Unlock()
		return domain.Proposal{}, err
	}
	ps.proposal = p
	ps.voters[voter] = v
	out := ps.snapshot()
	b.mu.Unlock()

	l.publish(ctx, events)
	return out, nil
}

// Execute records a passed proposal as executed. Follow-on actions belong to whoever consumes
// the proposal_executed event. executor is recorded as the event actor and may be empty.
func (l *Ledger) Execute(ctx context.Context, proposalID uint64, executor string) (domain.Proposal, error) {
	b, err := l.proposalBook(proposalID)
	if err != nil {
		return domain.Proposal{}, err
	}

	b.mu.Lock()
	ps := b.proposals[proposalID]
	if ps.proposal.Executed {
		b.mu.Unlock()
		return domain.Proposal{}, fmt.Errorf("%w: proposal %d", ErrAlreadyExecuted, proposalID)
	}
	if ps.proposal.VotesFor <= ps.proposal.VotesAgainst {
		b.mu.Unlock()
		return domain.Proposal{}, fmt.Errorf("%w: %d for, %d against", ErrNotPassed, ps.proposal.VotesFor, ps.proposal.VotesAgainst)
	}

	p := ps.proposal
	p.Executed = true
	p.UpdatedAt = l.now()
	events := []domain.LedgerEvent{l.newEvent(domain.EventProposalExecuted, p.PropertyID, &proposalID, strings.ToLower(executor), map[string]interface{}{
		"votes_for":     p.VotesFor,
		"votes_against": p.VotesAgainst,
		"description":   p.Description,
	})}
	if err := l.commit(ctx, ChangeSet{Proposal: &p, Events: events}); err != nil {
		b.mu.Unlock()
		return domain.Proposal{}, err
	}
	ps.proposal = p
	out := ps.snapshot()
	b.mu.Unlock()

	l.publish(ctx, events)
	return out, nil
}

// GetProposal returns a proposal with its voter set.
func (l *Ledger) GetProposal(proposalID uint64) (domain.Proposal, error) {
	b, err := l.proposalBook(proposalID)
	if err != nil {
		return domain.Proposal{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.proposals[proposalID].snapshot(), nil
}

// ListProposals returns the proposals of one property ordered by id.
func (l *Ledger) ListProposals(propertyID uint64) ([]domain.Proposal, error) {
	b, err := l.book(propertyID)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	out := make([]domain.Proposal, 0, len(b.proposals))
	for _, ps := range b.proposals {
		out = append(out, ps.snapshot())
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ProposalID < out[j].ProposalID })
	return out, nil
}

// ProposalCount is the id of the most recently created proposal.
func (l *Ledger) ProposalCount() uint64 {
	l.gov.mu.Lock()
	defer l.gov.mu.Unlock()
	return l.gov.lastProposalID
}
