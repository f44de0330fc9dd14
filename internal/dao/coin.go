// coin.go - Output note commitments emitted by the exec relation.

package dao

import "math/big"

// Coin is an output note created when a proposal executes. Exec emits exactly
// two: coin 0 pays the proposal amount to the proposal destination, coin 1
// returns the treasury change to the DAO key with the proposal bulla in its
// user data slot, so the treasury spend is traceable to the execution.
type Coin struct {
	OwnerX    *big.Int
	OwnerY    *big.Int
	Value     uint64
	TokenID   *big.Int
	Serial    *big.Int
	SpendHook *big.Int // directs how later consumption of the coin is interpreted
	UserData  *big.Int // opaque to this layer, defined by the note subsystem
	Blind     *big.Int
}

// Commitment derives the coin commitment appended to the ledger on exec
// acceptance. Ownership of the coin afterwards belongs to the external
// payment subsystem.
func (c *Coin) Commitment() (*big.Int, error) {
	return BindHash(
		c.OwnerX,
		c.OwnerY,
		new(big.Int).SetUint64(c.Value),
		c.TokenID,
		c.Serial,
		c.SpendHook,
		c.UserData,
		c.Blind,
	)
}
