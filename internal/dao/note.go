// note.go - Encrypted governance notes.
//
// Proposal parameters (and vote receipts) are delivered to DAO members as
// notes sealed to the DAO public key: an ephemeral BLS12-377 DH exchange
// derives a shared point, and a MiMC mask chain encrypts each field.
// Encryption happens entirely outside the circuits.

package dao

import (
	"errors"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// noteFields is the number of encrypted slots in a proposal note:
// dest_x, dest_y, amount, serial, token_id, blind.
const noteFields = 6

// EncryptedNote carries the sealed proposal parameters together with the
// ephemeral public point the recipient needs to derive the shared key.
type EncryptedNote struct {
	Ephemeral bls12377.G1Affine
	Cipher    [noteFields]*big.Int
}

// maskChain derives n MiMC masks from a shared point.
func maskChain(shared *bls12377.G1Affine, n int) []*big.Int {
	h := mimcNative.NewMiMC()
	x := shared.X.Bytes()
	y := shared.Y.Bytes()
	h.Write(x[:])
	h.Write(y[:])
	masks := make([]*big.Int, n)
	prev := h.Sum(nil)
	masks[0] = new(big.Int).SetBytes(prev)
	for i := 1; i < n; i++ {
		h.Reset()
		h.Write(prev)
		prev = h.Sum(nil)
		masks[i] = new(big.Int).SetBytes(prev)
	}
	return masks
}

// EncryptNote seals proposal parameters to the recipient public key using a
// fresh ephemeral keypair.
func EncryptNote(prop *ProposalParams, recipient *bls12377.G1Affine) (*EncryptedNote, error) {
	eph, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}
	shared := ComputeDHShared(eph.Sk, recipient)
	masks := maskChain(shared, noteFields)
	fields := [noteFields]*big.Int{
		prop.DestX,
		prop.DestY,
		new(big.Int).SetUint64(prop.Amount),
		prop.Serial,
		prop.TokenID,
		prop.Blind,
	}
	note := &EncryptedNote{Ephemeral: *eph.Pk}
	for i := 0; i < noteFields; i++ {
		note.Cipher[i] = new(big.Int).Add(fields[i], masks[i])
	}
	return note, nil
}

// DecryptNote recovers proposal parameters with the recipient secret key.
func DecryptNote(note *EncryptedNote, kp *Keypair) (*ProposalParams, error) {
	shared := ComputeDHShared(kp.Sk, &note.Ephemeral)
	masks := maskChain(shared, noteFields)
	var fields [noteFields]*big.Int
	for i := 0; i < noteFields; i++ {
		if note.Cipher[i] == nil {
			return nil, errors.New("truncated note")
		}
		fields[i] = new(big.Int).Sub(note.Cipher[i], masks[i])
	}
	if !fields[2].IsUint64() {
		return nil, errors.New("note does not decrypt under this key")
	}
	return &ProposalParams{
		DestX:   fields[0],
		DestY:   fields[1],
		Amount:  fields[2].Uint64(),
		Serial:  fields[3],
		TokenID: fields[4],
		Blind:   fields[5],
	}, nil
}

// TryDecryptNote decrypts and checks the recovered parameters against a known
// parent DAO bulla and proposal bulla, the recipient-side scan used when
// matching incoming notes to on-ledger proposals.
func TryDecryptNote(note *EncryptedNote, kp *Keypair, daoBulla, proposalBulla *big.Int) (*ProposalParams, bool) {
	prop, err := DecryptNote(note, kp)
	if err != nil {
		return nil, false
	}
	bulla, err := prop.Bulla(daoBulla)
	if err != nil {
		return nil, false
	}
	if bulla.Cmp(proposalBulla) != 0 {
		return nil, false
	}
	return prop, true
}
