package propose

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/sw_bls12377"
	"github.com/consensys/gnark/std/hash/mimc"

	"darkdao/internal/dao"
	"darkdao/internal/relations/gadget"
)

// Circuit proves a legitimate proposal creation: the prover knows a DAO whose
// bulla is registered under the declared root, holds at least proposer_limit
// governance tokens, and binds a new proposal to that DAO.
//
// Public instance, in order:
// [token_commit, dao_root, proposal_bulla, funds_commit_x, funds_commit_y]
type Circuit struct {
	// ====== PUBLIC VARIABLES ======
	TokenCommit   frontend.Variable    `gnark:",public"` // Hash(gov_token_id, token_blind)
	DaoRoot       frontend.Variable    `gnark:",public"` // registry tree root
	ProposalBulla frontend.Variable    `gnark:",public"`
	FundsCommit   sw_bls12377.G1Affine `gnark:",public"` // commit(total_funds, funds_blind)

	// ====== PRIVATE VARIABLES ======
	// DAO parameters, re-derivable bulla
	DaoProposerLimit frontend.Variable
	DaoQuorum        frontend.Variable
	DaoApprovalNum   frontend.Variable
	DaoApprovalDenom frontend.Variable
	DaoTokenID       frontend.Variable
	DaoPublicX       frontend.Variable
	DaoPublicY       frontend.Variable
	DaoBullaBlind    frontend.Variable

	// registry membership
	LeafPosition frontend.Variable
	Path         [dao.RegistryDepth]frontend.Variable

	// proposal parameters, re-derivable bulla
	PropDestX   frontend.Variable
	PropDestY   frontend.Variable
	PropAmount  frontend.Variable
	PropSerial  frontend.Variable
	PropTokenID frontend.Variable
	PropBlind   frontend.Variable

	// prover's governance-token balance
	TotalFunds frontend.Variable
	FundsBlind frontend.Variable
	TokenBlind frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	hasher, _ := mimc.NewMiMC(api)

	// 1) token_commit = H(gov_token_id, token_blind)
	hasher.Write(c.DaoTokenID)
	hasher.Write(c.TokenBlind)
	api.AssertIsEqual(c.TokenCommit, hasher.Sum())

	// 2) Recompute the DAO bulla from the full parameter set.
	hasher.Reset()
	hasher.Write(c.DaoProposerLimit)
	hasher.Write(c.DaoQuorum)
	hasher.Write(c.DaoApprovalNum)
	hasher.Write(c.DaoApprovalDenom)
	hasher.Write(c.DaoTokenID)
	hasher.Write(c.DaoPublicX)
	hasher.Write(c.DaoPublicY)
	hasher.Write(c.DaoBullaBlind)
	daoBulla := hasher.Sum()

	// 3) The DAO bulla must be a leaf of the declared registry root.
	root := gadget.MerkleRoot(api, daoBulla, c.LeafPosition, c.Path)
	api.AssertIsEqual(c.DaoRoot, root)

	// 4) Recompute the proposal bulla, bound to the parent DAO.
	hasher.Reset()
	hasher.Write(c.PropDestX)
	hasher.Write(c.PropDestY)
	hasher.Write(c.PropAmount)
	hasher.Write(c.PropSerial)
	hasher.Write(c.PropTokenID)
	hasher.Write(daoBulla)
	hasher.Write(c.PropBlind)
	api.AssertIsEqual(c.ProposalBulla, hasher.Sum())

	// 5) funds_commit = commit(total_funds, funds_blind); the bit
	// decomposition inside the gadget bounds total_funds to 64 bits.
	funds := gadget.PedersenCommit(api, c.TotalFunds, c.FundsBlind)
	api.AssertIsEqual(c.FundsCommit.X, funds.X)
	api.AssertIsEqual(c.FundsCommit.Y, funds.Y)

	// 6) The proposal amount carries the same bounded-range constraint as a
	// committed value.
	gadget.AssertInRange(api, c.PropAmount, gadget.ValueBits)

	// 7) total_funds >= proposer_limit
	gadget.AssertInRange(api, c.DaoProposerLimit, gadget.ValueBits)
	api.AssertIsLessOrEqual(c.DaoProposerLimit, c.TotalFunds)

	return nil
}
