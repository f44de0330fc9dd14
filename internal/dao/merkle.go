// merkle.go - Fixed-depth MiMC Merkle tree for the DAO registry.
//
// The tree is append-only and owned by the ledger boundary; the relations
// only ever consume a (leaf, position, path, root) triple. VerifyMembership
// mirrors the in-circuit gadget bit for bit so a path produced here satisfies
// the propose relation against the same root.

package dao

import (
	"errors"
	"math/big"
)

// RegistryDepth is the depth of the registry tree, fixed at compile time
// because the circuit path arrays are sized by it.
const RegistryDepth = 16

// RegistryTree is an append-only Merkle tree of DaoBulla leaves. Empty slots
// hold the zero leaf.
type RegistryTree struct {
	leaves []*big.Int
	zeros  [RegistryDepth + 1]*big.Int
}

// NewRegistryTree creates an empty registry tree.
func NewRegistryTree() *RegistryTree {
	t := &RegistryTree{}
	t.zeros[0] = new(big.Int)
	for i := 1; i <= RegistryDepth; i++ {
		t.zeros[i] = MustBindHash(t.zeros[i-1], t.zeros[i-1])
	}
	return t
}

// Append adds a leaf and returns its position.
func (t *RegistryTree) Append(leaf *big.Int) (int, error) {
	if len(t.leaves) >= 1<<RegistryDepth {
		return 0, errors.New("registry tree full")
	}
	if leaf == nil || leaf.Sign() < 0 {
		return 0, ErrMalformedPublicInput
	}
	t.leaves = append(t.leaves, new(big.Int).Set(leaf))
	return len(t.leaves) - 1, nil
}

// Root recomputes the current root.
func (t *RegistryTree) Root() *big.Int {
	level := make([]*big.Int, len(t.leaves))
	copy(level, t.leaves)
	for d := 0; d < RegistryDepth; d++ {
		next := make([]*big.Int, (len(level)+1)/2)
		for i := range next {
			left := t.nodeAt(level, 2*i, d)
			right := t.nodeAt(level, 2*i+1, d)
			next[i] = MustBindHash(left, right)
		}
		if len(next) == 0 {
			next = []*big.Int{t.zeros[d+1]}
		}
		level = next
	}
	return level[0]
}

// MembershipPath returns the sibling hashes from the leaf at position up to
// the root.
func (t *RegistryTree) MembershipPath(position int) ([RegistryDepth]*big.Int, error) {
	var path [RegistryDepth]*big.Int
	if position < 0 || position >= len(t.leaves) {
		return path, errors.New("position outside tree")
	}
	level := make([]*big.Int, len(t.leaves))
	copy(level, t.leaves)
	idx := position
	for d := 0; d < RegistryDepth; d++ {
		path[d] = t.nodeAt(level, idx^1, d)
		next := make([]*big.Int, (len(level)+1)/2)
		for i := range next {
			next[i] = MustBindHash(t.nodeAt(level, 2*i, d), t.nodeAt(level, 2*i+1, d))
		}
		level = next
		idx >>= 1
	}
	return path, nil
}

func (t *RegistryTree) nodeAt(level []*big.Int, i, depth int) *big.Int {
	if i < len(level) {
		return level[i]
	}
	return t.zeros[depth]
}

// VerifyMembership recomputes the root from a leaf and its sibling path
// according to the position's bit pattern and compares it to the claimed
// root. A mismatch is a relation-level rejection, not an exception.
func VerifyMembership(leaf *big.Int, position int, path [RegistryDepth]*big.Int, claimedRoot *big.Int) bool {
	cur := new(big.Int).Set(leaf)
	for d := 0; d < RegistryDepth; d++ {
		if path[d] == nil {
			return false
		}
		if position>>d&1 == 1 {
			cur = MustBindHash(path[d], cur)
		} else {
			cur = MustBindHash(cur, path[d])
		}
	}
	return cur.Cmp(claimedRoot) == 0
}
