// crypto.go - Cryptographic primitives for the governance protocol.
//
// Implements the MiMC binding hash, Pedersen value commitments over
// BLS12-377 G1, secure randomness, and BLS12-377 DH key exchange.
// The binding hash and the value commitment are the two primitives every
// relation is built from: the hash binds structured records (bullas, coins,
// token commitments), the value commitment hides amounts while staying
// additively homomorphic so tallies can be aggregated outside the circuits.

package dao

import (
	"fmt"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	bw6761_fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// Domain separation tags for the Pedersen generators. Hash-to-curve keeps the
// relative discrete log of the two generators unknown, which the binding
// property of the commitment depends on.
const (
	genValueTag = "darkdao:value-commit:value"
	genBlindTag = "darkdao:value-commit:blind"
	genDST      = "darkdao-v1-pedersen"
)

var (
	genValue bls12377.G1Affine
	genBlind bls12377.G1Affine
)

func init() {
	var err error
	genValue, err = bls12377.HashToG1([]byte(genValueTag), []byte(genDST))
	if err != nil {
		panic(fmt.Sprintf("pedersen generator derivation failed: %v", err))
	}
	genBlind, err = bls12377.HashToG1([]byte(genBlindTag), []byte(genDST))
	if err != nil {
		panic(fmt.Sprintf("pedersen generator derivation failed: %v", err))
	}
}

// GeneratorValue returns the Pedersen generator for committed values.
func GeneratorValue() bls12377.G1Affine { return genValue }

// GeneratorBlind returns the Pedersen generator for blinding factors.
func GeneratorBlind() bls12377.G1Affine { return genBlind }

// BindHash computes the collision-resistant binding hash of an ordered list
// of field elements using MiMC over the proof system's scalar field
// (BW6-761 fr). Out-of-field inputs are rejected before any relation sees
// them.
func BindHash(fields ...*big.Int) (*big.Int, error) {
	h := mimcNative.NewMiMC()
	for i, f := range fields {
		if f == nil || f.Sign() < 0 || f.Cmp(bw6761_fr.Modulus()) >= 0 {
			return nil, fmt.Errorf("%w: field %d out of range", ErrMalformedPublicInput, i)
		}
		var e bw6761_fr.Element
		e.SetBigInt(f)
		b := e.Bytes()
		h.Write(b[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

// ValidateFieldElement rejects values outside the proof system's scalar
// field. Public instances are validated before verification so that a
// malformed input is a classified rejection, not a silent reduction.
func ValidateFieldElement(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(bw6761_fr.Modulus()) >= 0 {
		return ErrMalformedPublicInput
	}
	return nil
}

// MustBindHash is BindHash for inputs already known to be canonical field
// elements. It panics on out-of-field inputs.
func MustBindHash(fields ...*big.Int) *big.Int {
	out, err := BindHash(fields...)
	if err != nil {
		panic(err)
	}
	return out
}

// ValueCommit computes the Pedersen commitment
//
//	commit(v, r) = v*G_value + r*G_blind
//
// over BLS12-377 G1. The commitment is additively homomorphic:
// commit(v1,r1) + commit(v2,r2) = commit(v1+v2, r1+r2).
func ValueCommit(value uint64, blind *bls12377_fr.Element) bls12377.G1Affine {
	var vPart, rPart bls12377.G1Affine
	vPart.ScalarMultiplication(&genValue, new(big.Int).SetUint64(value))
	rPart.ScalarMultiplication(&genBlind, blind.BigInt(new(big.Int)))
	var out bls12377.G1Affine
	out.Add(&vPart, &rPart)
	return out
}

// AddCommitments sums value commitments. The reduction is commutative and
// associative, so it may run incrementally as votes arrive or in one batch.
func AddCommitments(points ...bls12377.G1Affine) bls12377.G1Affine {
	var acc bls12377.G1Affine
	for i := range points {
		if i == 0 {
			acc = points[0]
			continue
		}
		acc.Add(&acc, &points[i])
	}
	return acc
}

// PointCoords returns the affine coordinates of a commitment as big integers,
// the form in which curve points enter a public instance.
func PointCoords(p bls12377.G1Affine) (x, y *big.Int) {
	return p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int))
}

// RandomField samples a uniform element of the binding-hash field (BW6-761
// fr), used for bulla and coin blinds.
func RandomField() *big.Int {
	var e bw6761_fr.Element
	if _, err := e.SetRandom(); err != nil {
		panic(err)
	}
	return e.BigInt(new(big.Int))
}

// RandomScalar samples a uniform BLS12-377 scalar, used for Pedersen blinds.
func RandomScalar() *bls12377_fr.Element {
	var e bls12377_fr.Element
	if _, err := e.SetRandom(); err != nil {
		panic(err)
	}
	return &e
}

// Keypair is a BLS12-377 keypair. The public point doubles as the DAO (or
// proposal destination) public key inside bullas, via its affine coordinates,
// and as a DH key for note encryption.
type Keypair struct {
	Sk *bls12377_fr.Element
	Pk *bls12377.G1Affine
}

// GenerateKeypair generates a random BLS12-377 keypair.
func GenerateKeypair() (*Keypair, error) {
	var sk bls12377_fr.Element
	if _, err := sk.SetRandom(); err != nil {
		return nil, err
	}
	_, _, g1Aff, _ := bls12377.Generators()
	var pk bls12377.G1Affine
	pk.ScalarMultiplication(&g1Aff, sk.BigInt(new(big.Int)))
	return &Keypair{Sk: &sk, Pk: &pk}, nil
}

// ComputeDHShared computes the shared secret given our sk and their pk.
func ComputeDHShared(sk *bls12377_fr.Element, pk *bls12377.G1Affine) *bls12377.G1Affine {
	var shared bls12377.G1Affine
	shared.ScalarMultiplication(pk, sk.BigInt(new(big.Int)))
	return &shared
}

// PublicCoords returns the affine coordinates of a public key.
func (kp *Keypair) PublicCoords() (x, y *big.Int) {
	return PointCoords(*kp.Pk)
}
