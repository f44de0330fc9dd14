// propose.go - Proof generation and verification for the propose relation.

package propose

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

// Witness collects the private inputs of a propose proof.
type Witness struct {
	Dao          *dao.DaoParams
	LeafPosition int
	Path         [dao.RegistryDepth]*big.Int
	Proposal     *dao.ProposalParams
	TotalFunds   uint64 // prover's current governance-token balance
	FundsBlind   *bls12377_fr.Element
	TokenBlind   *big.Int
}

// ProposeTx carries a propose proof with its public instance.
type ProposeTx struct {
	Proof []byte

	TokenCommit   string
	DaoRoot       string
	ProposalBulla string
	FundsCommit   sw_bls12377.G1Affine
}

// Prove evaluates the relation on the witness and generates a Groth16 proof.
// A witness that fails the relation aborts locally with a constraint
// violation; no partial proof is ever emitted.
func Prove(w *Witness, root *big.Int, ccs constraint.ConstraintSystem, pk groth16.ProvingKey) (*ProposeTx, error) {
	daoBulla, err := w.Dao.Bulla()
	if err != nil {
		return nil, err
	}
	proposalBulla, err := w.Proposal.Bulla(daoBulla)
	if err != nil {
		return nil, err
	}
	tokenCommit, err := dao.TokenCommit(w.Dao.GovTokenID, w.TokenBlind)
	if err != nil {
		return nil, err
	}
	fundsCommit := dao.ValueCommit(w.TotalFunds, w.FundsBlind)

	assignment := &Circuit{
		TokenCommit:   tokenCommit,
		DaoRoot:       root,
		ProposalBulla: proposalBulla,
		FundsCommit:   dao.ToGnarkPoint(fundsCommit),

		DaoProposerLimit: w.Dao.ProposerLimit,
		DaoQuorum:        w.Dao.Quorum,
		DaoApprovalNum:   w.Dao.ApprovalRatio.Num,
		DaoApprovalDenom: w.Dao.ApprovalRatio.Denom,
		DaoTokenID:       w.Dao.GovTokenID,
		DaoPublicX:       w.Dao.PublicKeyX,
		DaoPublicY:       w.Dao.PublicKeyY,
		DaoBullaBlind:    w.Dao.BullaBlind,

		LeafPosition: w.LeafPosition,

		PropDestX:   w.Proposal.DestX,
		PropDestY:   w.Proposal.DestY,
		PropAmount:  w.Proposal.Amount,
		PropSerial:  w.Proposal.Serial,
		PropTokenID: w.Proposal.TokenID,
		PropBlind:   w.Proposal.Blind,

		TotalFunds: w.TotalFunds,
		FundsBlind: w.FundsBlind.BigInt(new(big.Int)),
		TokenBlind: w.TokenBlind,
	}
	for i := 0; i < dao.RegistryDepth; i++ {
		assignment.Path[i] = w.Path[i]
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

	return &ProposeTx{
		Proof:         buf.Bytes(),
		TokenCommit:   tokenCommit.String(),
		DaoRoot:       root.String(),
		ProposalBulla: proposalBulla.String(),
		FundsCommit:   dao.ToGnarkPoint(fundsCommit),
	}, nil
}

// PublicInputs returns the public instance in its wire order:
// [token_commit, dao_root, proposal_bulla, funds_commit_x, funds_commit_y].
// Verifiers match positionally; the ordering is part of the contract.
func (tx *ProposeTx) PublicInputs() ([]*big.Int, error) {
	out := make([]*big.Int, 0, 5)
	for _, s := range []interface{}{tx.TokenCommit, tx.DaoRoot, tx.ProposalBulla, tx.FundsCommit.X, tx.FundsCommit.Y} {
		v, err := publicBig(s)
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
// Failures surface as classified, deterministic rejections.
func Verify(tx *ProposeTx, vk groth16.VerifyingKey) error {
	if _, err := tx.PublicInputs(); err != nil {
		return dao.RejectProof(dao.ErrMalformedPublicInput, err)
	}
	public := &Circuit{
		TokenCommit:   tx.TokenCommit,
		DaoRoot:       tx.DaoRoot,
		ProposalBulla: tx.ProposalBulla,
		FundsCommit:   tx.FundsCommit,
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

// CheckRoot rejects proposals whose declared root is absent from the known
// registry snapshot. This is an application-level check, outside the
// relation.
func CheckRoot(tx *ProposeTx, reg *dao.Registry) error {
	root, ok := new(big.Int).SetString(tx.DaoRoot, 10)
	if !ok {
		return dao.RejectProof(dao.ErrMalformedPublicInput, nil)
	}
	if !reg.HasRoot(root) {
		return dao.RejectProof(dao.ErrMembershipFailure, nil)
	}
	return nil
}
