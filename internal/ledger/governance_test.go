package ledger

import (
	"testing"
	"unsafe"

	"propshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProposal_RequiresShares(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 4)

	_, err := l.CreateProposal(ctx, p.PropertyID, bob, "Replace the roof")
	assert.ErrorIs(t, err, ErrNotAShareholder)
	_, err = l.CreateProposal(ctx, p.PropertyID, alice, "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = l.CreateProposal(ctx, 55, alice, "Replace the roof")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, uint64(0), l.ProposalCount())

	prop, err := l.CreateProposal(ctx, p.PropertyID, alice, "Replace the roof")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), prop.ProposalID)
	assert.Equal(t, domain.ProposalOpen, prop.Status())
	assert.Equal(t, uint64(1), l.ProposalCount())

	second, err := l.CreateProposal(ctx, p.PropertyID, alice, "Hire a new manager")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.ProposalID)
}

func TestVote_ShareWeightedTallyAndExecution(t *testing.T) {
	pub := &recordingPublisher{}
	l := New(WithPublisher(pub))
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 6)
	buy(t, l, p.PropertyID, bob, 4)
	prop, err := l.CreateProposal(ctx, p.PropertyID, alice, "Repaint the facade")
	require.NoError(t, err)

	_, err = l.Vote(ctx, prop.ProposalID, carol, true)
	assert.ErrorIs(t, err, ErrNotAShareholder)

	got, err := l.Vote(ctx, prop.ProposalID, bob, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.VotesAgainst)
	assert.Equal(t, domain.ProposalFailed, got.Status())

	_, err = l.Execute(ctx, prop.ProposalID, bob)
	assert.ErrorIs(t, err, ErrNotPassed)

	got, err = l.Vote(ctx, prop.ProposalID, alice, true)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.VotesFor)
	assert.Equal(t, domain.ProposalPassing, got.Status())
	require.Len(t, got.Votes, 2)

	_, err = l.Vote(ctx, prop.ProposalID, bob, true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	executed, err := l.Execute(ctx, prop.ProposalID, carol)
	require.NoError(t, err)
	assert.True(t, executed.Executed)
	assert.Equal(t, domain.ProposalExecuted, executed.Status())
	assert.Equal(t, 1, pub.count(domain.EventProposalExecuted))

	_, err = l.Execute(ctx, prop.ProposalID, carol)
	assert.ErrorIs(t, err, ErrAlreadyExecuted)
	_, err = l.Vote(ctx, prop.ProposalID, carol, true)
	assert.ErrorIs(t, err, ErrAlreadyExecuted)

	final, err := l.GetProposal(prop.ProposalID)
	require.NoError(t, err)
	assert.True(t, final.Executed)
	assert.Equal(t, int64(6), final.VotesFor)
	assert.Equal(t, int64(4), final.VotesAgainst)
}

func TestExecute_TieAndEmptyTallyDoNotPass(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 5)
	buy(t, l, p.PropertyID, bob, 5)
	prop, err := l.CreateProposal(ctx, p.PropertyID, alice, "Sell the building")
	require.NoError(t, err)

	_, err = l.Execute(ctx, prop.ProposalID, "")
	assert.ErrorIs(t, err, ErrNotPassed)

	_, err = l.Vote(ctx, prop.ProposalID, alice, true)
	require.NoError(t, err)
	_, err = l.Vote(ctx, prop.ProposalID, bob, false)
	require.NoError(t, err)

	_, err = l.Execute(ctx, prop.ProposalID, "")
	assert.ErrorIs(t, err, ErrNotPassed)
	got, _ := l.GetProposal(prop.ProposalID)
	assert.False(t, got.Executed)
}

func TestVote_AlreadyVotedAfterBalanceChange(t *testing.T) {
	l := New()
	p := tokenize(t, l, 20)
	buy(t, l, p.PropertyID, alice, 5)
	prop, err := l.CreateProposal(ctx, p.PropertyID, alice, "Add solar panels")
	require.NoError(t, err)

	_, err = l.Vote(ctx, prop.ProposalID, alice, true)
	require.NoError(t, err)
	buy(t, l, p.PropertyID, alice, 5)

	_, err = l.Vote(ctx, prop.ProposalID, alice, true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	got, _ := l.GetProposal(prop.ProposalID)
	assert.Equal(t, int64(5), got.VotesFor)
}

func TestVote_UsesLiveBalance(t *testing.T) {
	l := New()
	p := tokenize(t, l, 20)
	buy(t, l, p.PropertyID, alice, 5)
	prop, err := l.CreateProposal(ctx, p.PropertyID, alice, "Add solar panels")
	require.NoError(t, err)

	// bob buys in after the proposal opened and still votes with the full balance
	buy(t, l, p.PropertyID, bob, 12)
	got, err := l.Vote(ctx, prop.ProposalID, bob, false)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.VotesAgainst)
}

func TestProposals_UnknownIDs(t *testing.T) {
	l := New()
	_, err := l.GetProposal(3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Vote(ctx, 3, alice, true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Execute(ctx, 3, alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProposals_PerProperty(t *testing.T) {
	l := New()
	first := tokenize(t, l, 10)
	second := tokenize(t, l, 10)
	buy(t, l, first.PropertyID, alice, 1)
	buy(t, l, second.PropertyID, alice, 1)

	for _, d := range []string{"one", "two"} {
		_, err := l.CreateProposal(ctx, first.PropertyID, alice, d)
		require.NoError(t, err)
	}
	_, err := l.CreateProposal(ctx, second.PropertyID, alice, "three")
	require.NoError(t, err)

	list, err := l.ListProposals(first.PropertyID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Description)
	assert.Equal(t, "two", list[1].Description)

	list, err = l.ListProposals(second.PropertyID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(3), list[0].ProposalID)
}

// Transports hand the ledger strings backed by reusable request buffers.
func TestVote_KeysSurviveCallerBufferReuse(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 6)
	buy(t, l, p.PropertyID, bob, 4)

	buf := []byte(bob)
	reused := unsafe.String(&buf[0], len(buf))
	prop, err := l.CreateProposal(ctx, p.PropertyID, reused, "Repaint the lobby")
	require.NoError(t, err)
	_, err = l.Vote(ctx, prop.ProposalID, reused, false)
	require.NoError(t, err)

	copy(buf, alice)

	_, err = l.Vote(ctx, prop.ProposalID, alice, true)
	require.NoError(t, err)
	got, err := l.GetProposal(prop.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, bob, got.Creator)
	require.Len(t, got.Votes, 2)
	assert.Equal(t, alice, got.Votes[0].Voter)
	assert.Equal(t, bob, got.Votes[1].Voter)
	assert.Equal(t, int64(6), got.VotesFor)
	assert.Equal(t, int64(4), got.VotesAgainst)
}

func TestPurchase_HolderKeySurvivesCallerBufferReuse(t *testing.T) {
	l := New()
	p := tokenize(t, l, 10)

	buf := []byte(carol)
	buy(t, l, p.PropertyID, unsafe.String(&buf[0], len(buf)), 3)
	copy(buf, alice)

	n, err := l.SharesBalance(p.PropertyID, carol)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	n, err = l.SharesBalance(p.PropertyID, alice)
	require.NoError(t, err)
	assert.Zero(t, n)
	requireInvariants(t, l)
}

func TestExecute_ActorSurvivesCallerBufferReuse(t *testing.T) {
	store := newMemStore()
	l := New(WithStore(store))
	p := tokenize(t, l, 10)
	buy(t, l, p.PropertyID, alice, 6)
	prop, err := l.CreateProposal(ctx, p.PropertyID, alice, "New roof")
	require.NoError(t, err)
	_, err = l.Vote(ctx, prop.ProposalID, alice, true)
	require.NoError(t, err)

	buf := []byte(bob)
	_, err = l.Execute(ctx, prop.ProposalID, unsafe.String(&buf[0], len(buf)))
	require.NoError(t, err)
	copy(buf, carol)

	store.mu.Lock()
	defer store.mu.Unlock()
	last := store.events[len(store.events)-1]
	assert.Equal(t, domain.EventProposalExecuted, last.EventType)
	assert.Equal(t, bob, last.Actor)
}
