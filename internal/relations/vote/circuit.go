package vote

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/sw_bls12377"
	"github.com/consensys/gnark/std/hash/mimc"

	"darkdao/internal/relations/gadget"
)

// Circuit proves a single voter's weighted commitment to a proposal without
// revealing the vote option or the voter's value. The full DAO and proposal
// parameter sets are witnesses so both bullas are recomputed, never trusted.
//
// Public instance, in order:
// [token_commit, proposal_bulla, vote_commit_x, vote_commit_y,
// value_commit_x, value_commit_y]
//
// No voter identity or double-vote prevention exists in this relation; a
// nullifier scheme above this layer must supply it.
type Circuit struct {
	// ====== PUBLIC VARIABLES ======
	TokenCommit   frontend.Variable    `gnark:",public"`
	ProposalBulla frontend.Variable    `gnark:",public"`
	VoteCommit    sw_bls12377.G1Affine `gnark:",public"` // commit(vote_option*value, vote_blind)
	ValueCommit   sw_bls12377.G1Affine `gnark:",public"` // commit(value, value_blind)

	// ====== PRIVATE VARIABLES ======
	DaoProposerLimit frontend.Variable
	DaoQuorum        frontend.Variable
	DaoApprovalNum   frontend.Variable
	DaoApprovalDenom frontend.Variable
	DaoTokenID       frontend.Variable
	DaoPublicX       frontend.Variable
	DaoPublicY       frontend.Variable
	DaoBullaBlind    frontend.Variable

	PropDestX   frontend.Variable
	PropDestY   frontend.Variable
	PropAmount  frontend.Variable
	PropSerial  frontend.Variable
	PropTokenID frontend.Variable
	PropBlind   frontend.Variable

	VoteOption frontend.Variable
	VoteBlind  frontend.Variable
	Value      frontend.Variable
	ValueBlind frontend.Variable
	TokenBlind frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	hasher, _ := mimc.NewMiMC(api)

	// 1) Recompute the DAO bulla.
	hasher.Write(c.DaoProposerLimit)
	hasher.Write(c.DaoQuorum)
	hasher.Write(c.DaoApprovalNum)
	hasher.Write(c.DaoApprovalDenom)
	hasher.Write(c.DaoTokenID)
	hasher.Write(c.DaoPublicX)
	hasher.Write(c.DaoPublicY)
	hasher.Write(c.DaoBullaBlind)
	daoBulla := hasher.Sum()

	// 2) Recompute the proposal bulla; its public declaration binds this
	// vote to an exact proposal.
	hasher.Reset()
	hasher.Write(c.PropDestX)
	hasher.Write(c.PropDestY)
	hasher.Write(c.PropAmount)
	hasher.Write(c.PropSerial)
	hasher.Write(c.PropTokenID)
	hasher.Write(daoBulla)
	hasher.Write(c.PropBlind)
	api.AssertIsEqual(c.ProposalBulla, hasher.Sum())

	// 3) token_commit = H(gov_token_id, token_blind)
	hasher.Reset()
	hasher.Write(c.DaoTokenID)
	hasher.Write(c.TokenBlind)
	api.AssertIsEqual(c.TokenCommit, hasher.Sum())

	// 4) vote_option is boolean: o*(o-1) = 0
	api.AssertIsBoolean(c.VoteOption)

	// 5) weighted_value = vote_option * value
	weighted := api.Mul(c.VoteOption, c.Value)

	// 6) vote_commit = commit(weighted_value, vote_blind)
	voteCommit := gadget.PedersenCommit(api, weighted, c.VoteBlind)
	api.AssertIsEqual(c.VoteCommit.X, voteCommit.X)
	api.AssertIsEqual(c.VoteCommit.Y, voteCommit.Y)

	// 7) value_commit = commit(value, value_blind)
	valueCommit := gadget.PedersenCommit(api, c.Value, c.ValueBlind)
	api.AssertIsEqual(c.ValueCommit.X, valueCommit.X)
	api.AssertIsEqual(c.ValueCommit.Y, valueCommit.Y)

	return nil
}
