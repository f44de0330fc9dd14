// tally.go - Homomorphic aggregation of vote commitments.
//
// Votes are produced independently and in parallel by different voters with
// no coordination or ordering requirement. Aggregation is a commutative,
// associative point addition, so a tally may be folded incrementally as votes
// arrive or recomputed from scratch; the exec proof must be generated from a
// snapshot taken after all votes intended to count. Voting windows and
// deadlines belong to the external ledger layer.

package dao

import (
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
)

// VoteRecord is the public outcome of one vote proof: two curve point
// commitments plus the proposal bulla and token commitment they attest to.
// Nothing in it reveals the vote option or the voter's value.
type VoteRecord struct {
	ProposalBulla *big.Int
	TokenCommit   *big.Int
	VoteCommit    bls12377.G1Affine // commit(vote_option * value, vote_blind)
	ValueCommit   bls12377.G1Affine // commit(value, value_blind)
}

// Tally accumulates vote records for a single proposal.
// win = sum of weighted vote commitments, total = sum of value commitments.
type Tally struct {
	ProposalBulla *big.Int
	WinVotes      bls12377.G1Affine
	TotalVotes    bls12377.G1Affine
	Count         int
}

// NewTally creates an empty tally for a proposal.
func NewTally(proposalBulla *big.Int) *Tally {
	return &Tally{ProposalBulla: new(big.Int).Set(proposalBulla)}
}

// Add folds one vote record into the tally. Records for a different proposal
// are rejected; double-vote prevention does not exist at this layer and must
// come from a nullifier scheme above it.
func (t *Tally) Add(rec *VoteRecord) error {
	if rec.ProposalBulla.Cmp(t.ProposalBulla) != 0 {
		return ErrMalformedPublicInput
	}
	if t.Count == 0 {
		t.WinVotes = rec.VoteCommit
		t.TotalVotes = rec.ValueCommit
	} else {
		t.WinVotes.Add(&t.WinVotes, &rec.VoteCommit)
		t.TotalVotes.Add(&t.TotalVotes, &rec.ValueCommit)
	}
	t.Count++
	return nil
}

// Aggregate builds a tally from a batch of vote records.
func Aggregate(proposalBulla *big.Int, recs []*VoteRecord) (*Tally, error) {
	t := NewTally(proposalBulla)
	for _, rec := range recs {
		if err := t.Add(rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}
