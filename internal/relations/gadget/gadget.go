// Package gadget holds the in-circuit building blocks shared by the three
// governance relations: the Pedersen value commitment over BLS12-377 G1 and
// the registry Merkle membership verifier. Each gadget mirrors its native
// counterpart in internal/dao exactly.
package gadget

import (
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/sw_bls12377"
	"github.com/consensys/gnark/std/hash/mimc"

	"darkdao/internal/dao"
)

// ValueBits bounds every committed amount. The bit decomposition inside
// PedersenCommit doubles as the range constraint on the value, so any
// quantity that flows through a value commitment is proven to lie in
// [0, 2^64).
const ValueBits = 64

var (
	genValue   sw_bls12377.G1Affine
	genBlind   sw_bls12377.G1Affine
	correction sw_bls12377.G1Affine
)

func init() {
	gv := dao.GeneratorValue()
	gb := dao.GeneratorBlind()
	genValue = constPoint(gv)
	genBlind = constPoint(gb)
	// -(G_value + G_blind), cancels the scalar shifts in PedersenCommit.
	var sum bls12377.G1Affine
	sum.Add(&gv, &gb)
	sum.Neg(&sum)
	correction = constPoint(sum)
}

func constPoint(p bls12377.G1Affine) sw_bls12377.G1Affine {
	x := p.X.Bytes()
	y := p.Y.Bytes()
	return sw_bls12377.G1Affine{
		X: new(big.Int).SetBytes(x[:]),
		Y: new(big.Int).SetBytes(y[:]),
	}
}

// PedersenCommit computes commit(value, blind) = value*G_value + blind*G_blind.
//
// The value is decomposed into ValueBits bits first, which both bounds it and
// keeps the scalar short. Both scalars are shifted by one before the fixed
// multiplications so that neither hits the zero scalar, and the constant
// correction point cancels the shifts, so the result equals the native
// dao.ValueCommit on the same inputs.
func PedersenCommit(api frontend.API, value, blind frontend.Variable) sw_bls12377.G1Affine {
	api.ToBinary(value, ValueBits)

	var vPart, rPart sw_bls12377.G1Affine
	vPart.ScalarMul(api, genValue, api.Add(value, 1))
	rPart.ScalarMul(api, genBlind, api.Add(blind, 1))
	vPart.AddAssign(api, rPart)
	vPart.AddAssign(api, correction)
	return vPart
}

// MerkleRoot recomputes a registry root from a leaf, its position and the
// sibling path, ordering each compression by the position's bit pattern.
func MerkleRoot(api frontend.API, leaf, position frontend.Variable, siblings [dao.RegistryDepth]frontend.Variable) frontend.Variable {
	bits := api.ToBinary(position, dao.RegistryDepth)
	hasher, _ := mimc.NewMiMC(api)
	cur := leaf
	for i := 0; i < dao.RegistryDepth; i++ {
		left := api.Select(bits[i], siblings[i], cur)
		right := api.Select(bits[i], cur, siblings[i])
		hasher.Reset()
		hasher.Write(left)
		hasher.Write(right)
		cur = hasher.Sum()
	}
	return cur
}

// AssertInRange binds v to n bits, the explicit non-negativity / bounded
// range constraint used where no value commitment covers a quantity.
func AssertInRange(api frontend.API, v frontend.Variable, n int) {
	api.ToBinary(v, n)
}
