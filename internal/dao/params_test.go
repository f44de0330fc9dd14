package dao

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testDaoParams(t *testing.T) *DaoParams {
	t.Helper()
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	x, y := kp.PublicCoords()
	return &DaoParams{
		ProposerLimit: 10,
		Quorum:        3,
		ApprovalRatio: ApprovalRatio{Num: 1, Denom: 2},
		GovTokenID:    big.NewInt(777),
		PublicKeyX:    x,
		PublicKeyY:    y,
		BullaBlind:    RandomField(),
	}
}

func testProposalParams(t *testing.T) *ProposalParams {
	t.Helper()
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	x, y := kp.PublicCoords()
	return &ProposalParams{
		DestX:   x,
		DestY:   y,
		Amount:  250,
		Serial:  RandomField(),
		TokenID: big.NewInt(888),
		Blind:   RandomField(),
	}
}

func TestDaoBullaStable(t *testing.T) {
	p := testDaoParams(t)
	b1, err := p.Bulla()
	require.NoError(t, err)
	b2, err := p.Bulla()
	require.NoError(t, err)
	require.Zero(t, b1.Cmp(b2))
}

func TestDaoBullaBindsEveryField(t *testing.T) {
	base := testDaoParams(t)
	baseBulla, err := base.Bulla()
	require.NoError(t, err)

	mutations := map[string]func(*DaoParams){
		"proposer_limit": func(p *DaoParams) { p.ProposerLimit++ },
		"quorum":         func(p *DaoParams) { p.Quorum++ },
		"approval_num":   func(p *DaoParams) { p.ApprovalRatio.Num++ },
		"approval_denom": func(p *DaoParams) { p.ApprovalRatio.Denom++ },
		"token_id":       func(p *DaoParams) { p.GovTokenID = big.NewInt(1234) },
		"blind":          func(p *DaoParams) { p.BullaBlind = RandomField() },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			mutated := *base
			mutate(&mutated)
			bulla, err := mutated.Bulla()
			require.NoError(t, err)
			require.NotZero(t, bulla.Cmp(baseBulla), "mutation must change the bulla")
		})
	}
}

func TestProposalBullaBindsParentDao(t *testing.T) {
	prop := testProposalParams(t)
	dao1, err := testDaoParams(t).Bulla()
	require.NoError(t, err)
	dao2, err := testDaoParams(t).Bulla()
	require.NoError(t, err)

	b1, err := prop.Bulla(dao1)
	require.NoError(t, err)
	b2, err := prop.Bulla(dao2)
	require.NoError(t, err)
	require.NotZero(t, b1.Cmp(b2), "same proposal under different DAO must differ")
}

func TestProposalBullaBindsAmount(t *testing.T) {
	prop := testProposalParams(t)
	parent, err := testDaoParams(t).Bulla()
	require.NoError(t, err)

	b1, err := prop.Bulla(parent)
	require.NoError(t, err)
	prop.Amount++
	b2, err := prop.Bulla(parent)
	require.NoError(t, err)
	require.NotZero(t, b1.Cmp(b2))
}

func TestTokenCommit(t *testing.T) {
	blind := RandomField()
	c1, err := TokenCommit(big.NewInt(777), blind)
	require.NoError(t, err)
	c2, err := TokenCommit(big.NewInt(777), blind)
	require.NoError(t, err)
	require.Zero(t, c1.Cmp(c2), "same token and blind must commit identically across proofs")

	c3, err := TokenCommit(big.NewInt(778), blind)
	require.NoError(t, err)
	require.NotZero(t, c1.Cmp(c3))
}

func TestCoinCommitmentBindsValue(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	x, y := kp.PublicCoords()
	coin := &Coin{
		OwnerX: x, OwnerY: y,
		Value:     100,
		TokenID:   big.NewInt(888),
		Serial:    RandomField(),
		SpendHook: big.NewInt(0),
		UserData:  big.NewInt(0),
		Blind:     RandomField(),
	}
	c1, err := coin.Commitment()
	require.NoError(t, err)
	coin.Value++
	c2, err := coin.Commitment()
	require.NoError(t, err)
	require.NotZero(t, c1.Cmp(c2))
}
