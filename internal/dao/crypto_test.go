package dao

import (
	"math/big"
	"testing"

	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	bw6761_fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	"github.com/stretchr/testify/require"
)

func TestBindHashDeterminism(t *testing.T) {
	a, b := big.NewInt(7), big.NewInt(11)

	h1, err := BindHash(a, b)
	require.NoError(t, err)
	h2, err := BindHash(a, b)
	require.NoError(t, err)
	require.Zero(t, h1.Cmp(h2), "bind hash must be deterministic")
}

func TestBindHashOrderSensitive(t *testing.T) {
	a, b := big.NewInt(7), big.NewInt(11)

	ab, err := BindHash(a, b)
	require.NoError(t, err)
	ba, err := BindHash(b, a)
	require.NoError(t, err)
	require.NotZero(t, ab.Cmp(ba), "bind hash must be order-sensitive")
}

func TestBindHashRejectsOutOfField(t *testing.T) {
	_, err := BindHash(bw6761_fr.Modulus())
	require.ErrorIs(t, err, ErrMalformedPublicInput)

	_, err = BindHash(big.NewInt(-1))
	require.ErrorIs(t, err, ErrMalformedPublicInput)

	_, err = BindHash(nil)
	require.ErrorIs(t, err, ErrMalformedPublicInput)
}

func TestValueCommitHomomorphism(t *testing.T) {
	ra, rb := RandomScalar(), RandomScalar()
	var rSum bls12377_fr.Element
	rSum.Add(ra, rb)

	ca := ValueCommit(123, ra)
	cb := ValueCommit(456, rb)
	sum := AddCommitments(ca, cb)

	combined := ValueCommit(579, &rSum)
	require.True(t, sum.Equal(&combined),
		"commit(a,ra)+commit(b,rb) must equal commit(a+b,ra+rb)")
}

func TestValueCommitHiding(t *testing.T) {
	// Same value, fresh blinds: distinct commitments.
	c1 := ValueCommit(42, RandomScalar())
	c2 := ValueCommit(42, RandomScalar())
	require.False(t, c1.Equal(&c2))
}

func TestGeneratorsDistinct(t *testing.T) {
	gv, gb := GeneratorValue(), GeneratorBlind()
	require.False(t, gv.Equal(&gb))
	require.True(t, gv.IsOnCurve())
	require.True(t, gb.IsOnCurve())
}

func TestDHSharedSecret(t *testing.T) {
	kp1, err := GenerateKeypair()
	require.NoError(t, err)
	kp2, err := GenerateKeypair()
	require.NoError(t, err)

	s1 := ComputeDHShared(kp1.Sk, kp2.Pk)
	s2 := ComputeDHShared(kp2.Sk, kp1.Pk)
	require.True(t, s1.Equal(s2))
}

func TestValidateFieldElement(t *testing.T) {
	require.NoError(t, ValidateFieldElement(big.NewInt(0)))
	require.Error(t, ValidateFieldElement(bw6761_fr.Modulus()))
	require.Error(t, ValidateFieldElement(nil))
}
