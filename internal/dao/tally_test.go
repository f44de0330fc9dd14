package dao

import (
	"testing"

	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/require"
)

// TestTallySumsMatchCommitments checks that the homomorphic sums over N
// independent vote records open to the plain sums of weighted values and
// blinds, which is exactly what the exec relation requires of its declared
// tally.
func TestTallySumsMatchCommitments(t *testing.T) {
	proposalBulla := RandomField()
	tokenCommit := RandomField()

	const n = 8
	var winSum, totalSum uint64
	var winBlind, totalBlind bls12377_fr.Element

	tally := NewTally(proposalBulla)
	for i := 0; i < n; i++ {
		option := uint64(i % 2)
		value := uint64(i + 1)
		vb, rb := RandomScalar(), RandomScalar()

		rec := &VoteRecord{
			ProposalBulla: proposalBulla,
			TokenCommit:   tokenCommit,
			VoteCommit:    ValueCommit(option*value, vb),
			ValueCommit:   ValueCommit(value, rb),
		}
		require.NoError(t, tally.Add(rec))

		winSum += option * value
		totalSum += value
		winBlind.Add(&winBlind, vb)
		totalBlind.Add(&totalBlind, rb)
	}
	require.Equal(t, n, tally.Count)

	win := ValueCommit(winSum, &winBlind)
	total := ValueCommit(totalSum, &totalBlind)
	require.True(t, tally.WinVotes.Equal(&win),
		"sum of vote commitments must open to (sum of weighted values, sum of blinds)")
	require.True(t, tally.TotalVotes.Equal(&total))
}

func TestTallyRejectsForeignProposal(t *testing.T) {
	tally := NewTally(RandomField())
	rec := &VoteRecord{
		ProposalBulla: RandomField(),
		TokenCommit:   RandomField(),
		VoteCommit:    ValueCommit(1, RandomScalar()),
		ValueCommit:   ValueCommit(1, RandomScalar()),
	}
	require.ErrorIs(t, tally.Add(rec), ErrMalformedPublicInput)
}

func TestAggregateOrderIndependent(t *testing.T) {
	proposalBulla := RandomField()
	recs := make([]*VoteRecord, 4)
	for i := range recs {
		recs[i] = &VoteRecord{
			ProposalBulla: proposalBulla,
			TokenCommit:   RandomField(),
			VoteCommit:    ValueCommit(uint64(i), RandomScalar()),
			ValueCommit:   ValueCommit(uint64(i+1), RandomScalar()),
		}
	}
	forward, err := Aggregate(proposalBulla, recs)
	require.NoError(t, err)

	reversed := []*VoteRecord{recs[3], recs[2], recs[1], recs[0]}
	backward, err := Aggregate(proposalBulla, reversed)
	require.NoError(t, err)

	require.True(t, forward.WinVotes.Equal(&backward.WinVotes))
	require.True(t, forward.TotalVotes.Equal(&backward.TotalVotes))
}
