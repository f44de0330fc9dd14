package exec

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/sw_bls12377"
	"github.com/consensys/gnark/std/hash/mimc"

	"darkdao/internal/relations/gadget"
)

// Circuit proves a proposal execution: the externally summed tally meets the
// DAO's quorum and approval ratio, and the two output coins conserve the
// treasury input value. Coin 0 pays the proposal amount to the destination,
// coin 1 returns the change to the DAO key with the proposal bulla in its
// user-data slot so the treasury spend is traceable to this execution.
//
// Public instance, in order:
// [proposal_bulla, coin_0, coin_1, win_votes_commit_x, win_votes_commit_y,
// total_votes_commit_x, total_votes_commit_y, input_value_commit_x,
// input_value_commit_y, dao_spend_hook, user_spend_hook, user_data]
type Circuit struct {
	// ====== PUBLIC VARIABLES ======
	ProposalBulla    frontend.Variable    `gnark:",public"`
	Coin0            frontend.Variable    `gnark:",public"`
	Coin1            frontend.Variable    `gnark:",public"`
	WinVotesCommit   sw_bls12377.G1Affine `gnark:",public"`
	TotalVotesCommit sw_bls12377.G1Affine `gnark:",public"`
	InputValueCommit sw_bls12377.G1Affine `gnark:",public"`
	DaoSpendHook     frontend.Variable    `gnark:",public"`
	UserSpendHook    frontend.Variable    `gnark:",public"`
	UserData         frontend.Variable    `gnark:",public"`

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

	// externally summed tally, with the blind sums
	WinVotes        frontend.Variable
	TotalVotes      frontend.Variable
	WinVotesBlind   frontend.Variable
	TotalVotesBlind frontend.Variable

	// treasury input
	InputValue      frontend.Variable
	InputValueBlind frontend.Variable

	// output coin fields
	UserSerial    frontend.Variable
	UserCoinBlind frontend.Variable
	DaoSerial     frontend.Variable
	DaoCoinBlind  frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	hasher, _ := mimc.NewMiMC(api)

	// 1) Recompute both bullas from the full parameter sets.
	hasher.Write(c.DaoProposerLimit)
	hasher.Write(c.DaoQuorum)
	hasher.Write(c.DaoApprovalNum)
	hasher.Write(c.DaoApprovalDenom)
	hasher.Write(c.DaoTokenID)
	hasher.Write(c.DaoPublicX)
	hasher.Write(c.DaoPublicY)
	hasher.Write(c.DaoBullaBlind)
	daoBulla := hasher.Sum()

	hasher.Reset()
	hasher.Write(c.PropDestX)
	hasher.Write(c.PropDestY)
	hasher.Write(c.PropAmount)
	hasher.Write(c.PropSerial)
	hasher.Write(c.PropTokenID)
	hasher.Write(daoBulla)
	hasher.Write(c.PropBlind)
	proposalBulla := hasher.Sum()
	api.AssertIsEqual(c.ProposalBulla, proposalBulla)

	// 2) change = input_value - proposal_amount, explicitly range-bound so
	// the subtraction cannot wrap: conservation coin_0 + coin_1 = input.
	gadget.AssertInRange(api, c.PropAmount, gadget.ValueBits)
	change := api.Sub(c.InputValue, c.PropAmount)
	gadget.AssertInRange(api, change, gadget.ValueBits)

	// 3) coin_0 pays the proposal destination.
	hasher.Reset()
	hasher.Write(c.PropDestX)
	hasher.Write(c.PropDestY)
	hasher.Write(c.PropAmount)
	hasher.Write(c.PropTokenID)
	hasher.Write(c.UserSerial)
	hasher.Write(c.UserSpendHook)
	hasher.Write(c.UserData)
	hasher.Write(c.UserCoinBlind)
	api.AssertIsEqual(c.Coin0, hasher.Sum())

	// 4) coin_1 returns the change to the DAO treasury, tagged with the
	// proposal bulla.
	hasher.Reset()
	hasher.Write(c.DaoPublicX)
	hasher.Write(c.DaoPublicY)
	hasher.Write(change)
	hasher.Write(c.PropTokenID)
	hasher.Write(c.DaoSerial)
	hasher.Write(c.DaoSpendHook)
	hasher.Write(proposalBulla)
	hasher.Write(c.DaoCoinBlind)
	api.AssertIsEqual(c.Coin1, hasher.Sum())

	// 5) Tally commitments must open to the declared sums.
	winCommit := gadget.PedersenCommit(api, c.WinVotes, c.WinVotesBlind)
	api.AssertIsEqual(c.WinVotesCommit.X, winCommit.X)
	api.AssertIsEqual(c.WinVotesCommit.Y, winCommit.Y)

	totalCommit := gadget.PedersenCommit(api, c.TotalVotes, c.TotalVotesBlind)
	api.AssertIsEqual(c.TotalVotesCommit.X, totalCommit.X)
	api.AssertIsEqual(c.TotalVotesCommit.Y, totalCommit.Y)

	inputCommit := gadget.PedersenCommit(api, c.InputValue, c.InputValueBlind)
	api.AssertIsEqual(c.InputValueCommit.X, inputCommit.X)
	api.AssertIsEqual(c.InputValueCommit.Y, inputCommit.Y)

	// 6) total_votes >= quorum
	gadget.AssertInRange(api, c.DaoQuorum, gadget.ValueBits)
	api.AssertIsLessOrEqual(c.DaoQuorum, c.TotalVotes)

	// 7) Approval ratio, cross-multiplied to avoid field division:
	// win_votes * denom >= total_votes * num.
	gadget.AssertInRange(api, c.DaoApprovalNum, gadget.ValueBits)
	gadget.AssertInRange(api, c.DaoApprovalDenom, gadget.ValueBits)
	lhs := api.Mul(c.TotalVotes, c.DaoApprovalNum)
	rhs := api.Mul(c.WinVotes, c.DaoApprovalDenom)
	api.AssertIsLessOrEqual(lhs, rhs)

	return nil
}
