// vote.go - Proof generation and verification for the vote relation.
//
// Any number of vote proofs are generated independently and in parallel by
// different voters; each needs only the public parameters and the voter's own
// value and blinds.

package vote

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

// Witness collects the private inputs of a vote proof.
type Witness struct {
	Dao        *dao.DaoParams
	Proposal   *dao.ProposalParams
	VoteOption uint64 // MUST be 0 or 1
	VoteBlind  *bls12377_fr.Element
	Value      uint64 // voter's governance-token weight
	ValueBlind *bls12377_fr.Element
	TokenBlind *big.Int
}

// VoteTx carries a vote proof with its public instance.
type VoteTx struct {
	Proof []byte

	TokenCommit   string
	ProposalBulla string
	VoteCommit    sw_bls12377.G1Affine
	ValueCommit   sw_bls12377.G1Affine
}

// Prove evaluates the relation on the witness and generates a Groth16 proof.
// It also returns the VoteRecord fed into the external tally.
func Prove(w *Witness, ccs constraint.ConstraintSystem, pk groth16.ProvingKey) (*VoteTx, *dao.VoteRecord, error) {
	daoBulla, err := w.Dao.Bulla()
	if err != nil {
		return nil, nil, err
	}
	proposalBulla, err := w.Proposal.Bulla(daoBulla)
	if err != nil {
		return nil, nil, err
	}
	tokenCommit, err := dao.TokenCommit(w.Dao.GovTokenID, w.TokenBlind)
	if err != nil {
		return nil, nil, err
	}
	weighted := w.VoteOption * w.Value
	voteCommit := dao.ValueCommit(weighted, w.VoteBlind)
	valueCommit := dao.ValueCommit(w.Value, w.ValueBlind)

	assignment := &Circuit{
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

	witness, err := frontend.NewWitness(assignment, dao.Curve.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", dao.ErrConstraintViolation, err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("proof marshaling failed: %w", err)
	}

	tx := &VoteTx{
		Proof:         buf.Bytes(),
		TokenCommit:   tokenCommit.String(),
		ProposalBulla: proposalBulla.String(),
		VoteCommit:    dao.ToGnarkPoint(voteCommit),
		ValueCommit:   dao.ToGnarkPoint(valueCommit),
	}
	rec := &dao.VoteRecord{
		ProposalBulla: proposalBulla,
		TokenCommit:   tokenCommit,
		VoteCommit:    voteCommit,
		ValueCommit:   valueCommit,
	}
	return tx, rec, nil
}

// PublicInputs returns the public instance in its wire order:
// [token_commit, proposal_bulla, vote_commit_x, vote_commit_y,
// value_commit_x, value_commit_y].
func (tx *VoteTx) PublicInputs() ([]*big.Int, error) {
	fields := []interface{}{
		tx.TokenCommit, tx.ProposalBulla,
		tx.VoteCommit.X, tx.VoteCommit.Y,
		tx.ValueCommit.X, tx.ValueCommit.Y,
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

// Verify checks the proof against the transaction's declared public instance.
func Verify(tx *VoteTx, vk groth16.VerifyingKey) error {
	if _, err := tx.PublicInputs(); err != nil {
		return dao.RejectProof(dao.ErrMalformedPublicInput, err)
	}
	public := &Circuit{
		TokenCommit:   tx.TokenCommit,
		ProposalBulla: tx.ProposalBulla,
		VoteCommit:    tx.VoteCommit,
		ValueCommit:   tx.ValueCommit,
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
