package vote

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"darkdao/internal/dao"
)

func testWitness(t *testing.T, option uint64) *Witness {
	t.Helper()
	daoKey, err := dao.GenerateKeypair()
	require.NoError(t, err)
	daoX, daoY := daoKey.PublicCoords()
	destKey, err := dao.GenerateKeypair()
	require.NoError(t, err)
	destX, destY := destKey.PublicCoords()

	return &Witness{
		Dao: &dao.DaoParams{
			ProposerLimit: 10,
			Quorum:        3,
			ApprovalRatio: dao.ApprovalRatio{Num: 1, Denom: 2},
			GovTokenID:    big.NewInt(777),
			PublicKeyX:    daoX,
			PublicKeyY:    daoY,
			BullaBlind:    dao.RandomField(),
		},
		Proposal: &dao.ProposalParams{
			DestX:   destX,
			DestY:   destY,
			Amount:  250,
			Serial:  dao.RandomField(),
			TokenID: big.NewInt(888),
			Blind:   dao.RandomField(),
		},
		VoteOption: option,
		VoteBlind:  dao.RandomScalar(),
		Value:      5,
		ValueBlind: dao.RandomScalar(),
		TokenBlind: dao.RandomField(),
	}
}

func assignment(t *testing.T, w *Witness) *Circuit {
	t.Helper()
	daoBulla, err := w.Dao.Bulla()
	require.NoError(t, err)
	proposalBulla, err := w.Proposal.Bulla(daoBulla)
	require.NoError(t, err)
	tokenCommit, err := dao.TokenCommit(w.Dao.GovTokenID, w.TokenBlind)
	require.NoError(t, err)
	voteCommit := dao.ValueCommit(w.VoteOption*w.Value, w.VoteBlind)
	valueCommit := dao.ValueCommit(w.Value, w.ValueBlind)

	return &Circuit{
		TokenCommit:   tokenCommit,
		ProposalBulla: proposalBulla,
		VoteCommit:    dao.ToGnarkPoint(voteCommit),
		ValueCommit:   dao.ToGnarkPoint(valueCommit),

		DaoProposerLimit: w.Dao.ProposerLimit,
		DaoQuorum:        w.Dao.Quorum,
		DaoApprovalNum:   w.Dao.ApprovalRatio.Num,
		DaoApprovalDenom: w.Dao.ApprovalRatio.Denom,
		DaoTokenID:       w.Dao.GovTokenID,
		DaoPublicX:       w.Dao.PublicKeyX,
		DaoPublicY:       w.Dao.PublicKeyY,
		DaoBullaBlind:    w.Dao.BullaBlind,

		PropDestX:   w.Proposal.DestX,
		PropDestY:   w.Proposal.DestY,
		PropAmount:  w.Proposal.Amount,
		PropSerial:  w.Proposal.Serial,
		PropTokenID: w.Proposal.TokenID,
		PropBlind:   w.Proposal.Blind,

		VoteOption: w.VoteOption,
		VoteBlind:  w.VoteBlind.BigInt(new(big.Int)),
		Value:      w.Value,
		ValueBlind: w.ValueBlind.BigInt(new(big.Int)),
		TokenBlind: w.TokenBlind,
	}
}

func TestVoteYes(t *testing.T) {
	w := testWitness(t, 1)
	err := test.IsSolved(&Circuit{}, assignment(t, w), dao.Curve.ScalarField())
	require.NoError(t, err)
}

func TestVoteNo(t *testing.T) {
	// A no vote commits to weighted value zero but still contributes its
	// full value to the total.
	w := testWitness(t, 0)
	err := test.IsSolved(&Circuit{}, assignment(t, w), dao.Curve.ScalarField())
	require.NoError(t, err)
}

func TestVoteRejectsNonBooleanOption(t *testing.T) {
	w := testWitness(t, 2)
	err := test.IsSolved(&Circuit{}, assignment(t, w), dao.Curve.ScalarField())
	require.Error(t, err, "vote_option outside {0,1} must be rejected")
}

func TestVoteRejectsFlippedCommit(t *testing.T) {
	w := testWitness(t, 1)
	a := assignment(t, w)
	a.VoteCommit = a.ValueCommit
	err := test.IsSolved(&Circuit{}, a, dao.Curve.ScalarField())
	require.Error(t, err)
}

func TestVoteRejectsForeignProposalBulla(t *testing.T) {
	w := testWitness(t, 1)
	a := assignment(t, w)
	a.ProposalBulla = dao.RandomField()
	err := test.IsSolved(&Circuit{}, a, dao.Curve.ScalarField())
	require.Error(t, err)
}

func TestVoteRecordMatchesNativeCommitments(t *testing.T) {
	w := testWitness(t, 1)
	daoBulla, err := w.Dao.Bulla()
	require.NoError(t, err)
	proposalBulla, err := w.Proposal.Bulla(daoBulla)
	require.NoError(t, err)

	rec := &dao.VoteRecord{
		ProposalBulla: proposalBulla,
		TokenCommit:   big.NewInt(0),
		VoteCommit:    dao.ValueCommit(w.VoteOption*w.Value, w.VoteBlind),
		ValueCommit:   dao.ValueCommit(w.Value, w.ValueBlind),
	}
	tally := dao.NewTally(proposalBulla)
	require.NoError(t, tally.Add(rec))
	require.True(t, tally.WinVotes.Equal(&rec.VoteCommit))
}
