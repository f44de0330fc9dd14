// exec.go - Proof generation and verification for the exec relation.
//
// The exec proof must be generated from a tally snapshot taken after all
// votes intended to count; the voting window itself belongs to the external
// ledger layer.

package exec

import (
	"bytes"
	"fmt"
	"math/big"

	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/sw_bls12377"

	"darkdao/internal/dao"
)

// Witness collects the private inputs of an exec proof. WinVotes and
// TotalVotes are the externally summed tally openings; their blinds are the
// sums of the individual vote blinds.
type Witness struct {
	Dao      *dao.DaoParams
	Proposal *dao.ProposalParams

	WinVotes        uint64
	TotalVotes      uint64
	WinVotesBlind   *bls12377_fr.Element
	TotalVotesBlind *bls12377_fr.Element

	InputValue      uint64 // treasury input released by this execution
	InputValueBlind *bls12377_fr.Element

	UserSerial    *big.Int
	UserCoinBlind *big.Int
	DaoSerial     *big.Int
	DaoCoinBlind  *big.Int
	DaoSpendHook  *big.Int
	UserSpendHook *big.Int
	UserData      *big.Int
}

// ExecTx carries an exec proof with its public instance.
type ExecTx struct {
	Proof []byte

	ProposalBulla    string
	Coin0            string
	Coin1            string
	WinVotesCommit   sw_bls12377.G1Affine
	TotalVotesCommit sw_bls12377.G1Affine
	InputValueCommit sw_bls12377.G1Affine
	DaoSpendHook     string
	UserSpendHook    string
	UserData         string
}

// OutputCoins reconstructs the two coins this witness creates: coin 0 pays
// the proposal amount to the destination, coin 1 returns the change to the
// DAO treasury tagged with the proposal bulla.
func (w *Witness) OutputCoins() (*dao.Coin, *dao.Coin, error) {
	if w.InputValue < w.Proposal.Amount {
		return nil, nil, fmt.Errorf("%w: input value below proposal amount", dao.ErrConstraintViolation)
	}
	daoBulla, err := w.Dao.Bulla()
	if err != nil {
		return nil, nil, err
	}
	proposalBulla, err := w.Proposal.Bulla(daoBulla)
	if err != nil {
		return nil, nil, err
	}
	coin0 := &dao.Coin{
		OwnerX:    w.Proposal.DestX,
		OwnerY:    w.Proposal.DestY,
		Value:     w.Proposal.Amount,
		TokenID:   w.Proposal.TokenID,
		Serial:    w.UserSerial,
		SpendHook: w.UserSpendHook,
		UserData:  w.UserData,
		Blind:     w.UserCoinBlind,
	}
	coin1 := &dao.Coin{
		OwnerX:    w.Dao.PublicKeyX,
		OwnerY:    w.Dao.PublicKeyY,
		Value:     w.InputValue - w.Proposal.Amount,
		TokenID:   w.Proposal.TokenID,
		Serial:    w.DaoSerial,
		SpendHook: w.DaoSpendHook,
		UserData:  proposalBulla,
		Blind:     w.DaoCoinBlind,
	}
	return coin0, coin1, nil
}

// Prove evaluates the relation on the witness and generates a Groth16 proof.
func Prove(w *Witness, ccs constraint.ConstraintSystem, pk groth16.ProvingKey) (*ExecTx, error) {
	daoBulla, err := w.Dao.Bulla()
	if err != nil {
		return nil, err
	}
	proposalBulla, err := w.Proposal.Bulla(daoBulla)
	if err != nil {
		return nil, err
	}
	coin0, coin1, err := w.OutputCoins()
	if err != nil {
		return nil, err
	}
	coin0Commit, err := coin0.Commitment()
	if err != nil {
		return nil, err
	}
	coin1Commit, err := coin1.Commitment()
	if err != nil {
		return nil, err
	}
	winCommit := dao.ValueCommit(w.WinVotes, w.WinVotesBlind)
	totalCommit := dao.ValueCommit(w.TotalVotes, w.TotalVotesBlind)
	inputCommit := dao.ValueCommit(w.InputValue, w.InputValueBlind)

	assignment := &Circuit{
		ProposalBulla:    proposalBulla,
		Coin0:            coin0Commit,
		Coin1:            coin1Commit,
		WinVotesCommit:   dao.ToGnarkPoint(winCommit),
		TotalVotesCommit: dao.ToGnarkPoint(totalCommit),
		InputValueCommit: dao.ToGnarkPoint(inputCommit),
		DaoSpendHook:     w.DaoSpendHook,
		UserSpendHook:    w.UserSpendHook,
		UserData:         w.UserData,

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

		WinVotes:        w.WinVotes,
		TotalVotes:      w.TotalVotes,
		WinVotesBlind:   w.WinVotesBlind.BigInt(new(big.Int)),
		TotalVotesBlind: w.TotalVotesBlind.BigInt(new(big.Int)),

		InputValue:      w.InputValue,
		InputValueBlind: w.InputValueBlind.BigInt(new(big.Int)),

		UserSerial:    w.UserSerial,
		UserCoinBlind: w.UserCoinBlind,
		DaoSerial:     w.DaoSerial,
		DaoCoinBlind:  w.DaoCoinBlind,
	}

	witness, err := frontend.NewWitness(assignment, dao.Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dao.ErrConstraintViolation, err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof marshaling failed: %w", err)
	}

	return &ExecTx{
		Proof:            buf.Bytes(),
		ProposalBulla:    proposalBulla.String(),
		Coin0:            coin0Commit.String(),
		Coin1:            coin1Commit.String(),
		WinVotesCommit:   dao.ToGnarkPoint(winCommit),
		TotalVotesCommit: dao.ToGnarkPoint(totalCommit),
		InputValueCommit: dao.ToGnarkPoint(inputCommit),
		DaoSpendHook:     w.DaoSpendHook.String(),
		UserSpendHook:    w.UserSpendHook.String(),
		UserData:         w.UserData.String(),
	}, nil
}

// PublicInputs returns the public instance in its wire order:
// [proposal_bulla, coin_0, coin_1, win_votes_commit_x, win_votes_commit_y,
// total_votes_commit_x, total_votes_commit_y, input_value_commit_x,
// input_value_commit_y, dao_spend_hook, user_spend_hook, user_data].
func (tx *ExecTx) PublicInputs() ([]*big.Int, error) {
	fields := []interface{}{
		tx.ProposalBulla, tx.Coin0, tx.Coin1,
		tx.WinVotesCommit.X, tx.WinVotesCommit.Y,
		tx.TotalVotesCommit.X, tx.TotalVotesCommit.Y,
		tx.InputValueCommit.X, tx.InputValueCommit.Y,
		tx.DaoSpendHook, tx.UserSpendHook, tx.UserData,
	}
	out := make([]*big.Int, 0, len(fields))
	for _, f := range fields {
		v, err := publicBig(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func publicBig(v interface{}) (*big.Int, error) {
	switch s := v.(type) {
	case string:
		out, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("%w: not a decimal field element", dao.ErrMalformedPublicInput)
		}
		return out, dao.ValidateFieldElement(out)
	case *big.Int:
		return s, dao.ValidateFieldElement(s)
	default:
		return nil, fmt.Errorf("%w: unsupported public input type %T", dao.ErrMalformedPublicInput, v)
	}
}

// MatchesTally reports whether the transaction's declared tally commitments
// equal the homomorphic sums of the accepted vote records. The outer
// verifier must reject an exec whose declared tally differs from the sums.
func MatchesTally(tx *ExecTx, t *dao.Tally) bool {
	win := dao.ToGnarkPoint(t.WinVotes)
	total := dao.ToGnarkPoint(t.TotalVotes)
	return sameVariable(tx.WinVotesCommit.X, win.X) &&
		sameVariable(tx.WinVotesCommit.Y, win.Y) &&
		sameVariable(tx.TotalVotesCommit.X, total.X) &&
		sameVariable(tx.TotalVotesCommit.Y, total.Y)
}

func sameVariable(a, b interface{}) bool {
	av, errA := publicBig(a)
	bv, errB := publicBig(b)
	return errA == nil && errB == nil && av.Cmp(bv) == 0
}

// Verify checks the proof against the transaction's declared public
// instance: quorum, approval ratio and conservation failures all surface as
// constraint violations here, since they are relation constraints.
func Verify(tx *ExecTx, vk groth16.VerifyingKey) error {
	if _, err := tx.PublicInputs(); err != nil {
		return dao.RejectProof(dao.ErrMalformedPublicInput, err)
	}
	public := &Circuit{
		ProposalBulla:    tx.ProposalBulla,
		Coin0:            tx.Coin0,
		Coin1:            tx.Coin1,
		WinVotesCommit:   tx.WinVotesCommit,
		TotalVotesCommit: tx.TotalVotesCommit,
		InputValueCommit: tx.InputValueCommit,
		DaoSpendHook:     tx.DaoSpendHook,
		UserSpendHook:    tx.UserSpendHook,
		UserData:         tx.UserData,
	}
	w, err := frontend.NewWitness(public, dao.Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return dao.RejectProof(dao.ErrMalformedPublicInput, err)
	}
	proof := groth16.NewProof(dao.Curve)
	if _, err := proof.ReadFrom(bytes.NewReader(tx.Proof)); err != nil {
		return dao.RejectProof(dao.ErrMalformedPublicInput, err)
	}
	if err := groth16.Verify(proof, vk, w); err != nil {
		return dao.RejectProof(dao.ErrConstraintViolation, err)
	}
	return nil
}
