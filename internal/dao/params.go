// params.go - DAO and proposal parameter records and their bullas.
//
// A bulla is a binding, hiding commitment (MiMC hash) uniquely representing a
// structured parameter record. Relations never accept a bulla as an unchecked
// witness: they always recompute it from the full parameter set.

package dao

import (
	"math/big"
)

// ApprovalRatio is the fraction of yes votes required for a proposal to pass,
// kept as a numerator/denominator pair so relations can compare tallies by
// cross-multiplication instead of field division.
type ApprovalRatio struct {
	Num   uint64 `json:"num"`
	Denom uint64 `json:"denom"`
}

// DaoParams are the governance parameters of a DAO. All fields are finite
// field elements over the proof system's scalar field; the public key enters
// the bulla through its affine coordinates.
type DaoParams struct {
	ProposerLimit uint64        // minimum governance-token balance to propose
	Quorum        uint64        // minimum total vote value for execution
	ApprovalRatio ApprovalRatio // required yes/total fraction
	GovTokenID    *big.Int      // governance token identifier
	PublicKeyX    *big.Int      // DAO public key, affine x
	PublicKeyY    *big.Int      // DAO public key, affine y
	BullaBlind    *big.Int      // binding blind
}

// Bulla derives the commitment uniquely representing this DAO.
// Identical params and blind always yield an identical bulla.
func (p *DaoParams) Bulla() (*big.Int, error) {
	return BindHash(
		new(big.Int).SetUint64(p.ProposerLimit),
		new(big.Int).SetUint64(p.Quorum),
		new(big.Int).SetUint64(p.ApprovalRatio.Num),
		new(big.Int).SetUint64(p.ApprovalRatio.Denom),
		p.GovTokenID,
		p.PublicKeyX,
		p.PublicKeyY,
		p.BullaBlind,
	)
}

// ProposalParams describe a single funding proposal. The bulla binds the
// proposal irrevocably to its parent DAO: any mutation of amount, destination
// or token changes the bulla.
type ProposalParams struct {
	DestX   *big.Int // destination public key, affine x
	DestY   *big.Int // destination public key, affine y
	Amount  uint64   // amount released on execution
	Serial  *big.Int // uniqueness serial
	TokenID *big.Int
	Blind   *big.Int // proposal blind
}

// Bulla derives the commitment representing this proposal under the given
// parent DAO bulla.
func (p *ProposalParams) Bulla(daoBulla *big.Int) (*big.Int, error) {
	return BindHash(
		p.DestX,
		p.DestY,
		new(big.Int).SetUint64(p.Amount),
		p.Serial,
		p.TokenID,
		daoBulla,
		p.Blind,
	)
}

// TokenCommit computes token_commit = Hash(token_id, token_blind).
//
// Its role is cross-proof binding: when the same blind is reused as a shared
// witness across two independently generated proofs in one transaction,
// equality of their declared token commitments is how an outer transaction
// verifier confirms both proofs reference the same token without revealing
// it. The relations only emit the commitment; the equality check is the
// outer verifier's responsibility.
func TokenCommit(tokenID, tokenBlind *big.Int) (*big.Int, error) {
	return BindHash(tokenID, tokenBlind)
}
