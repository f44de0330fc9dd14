// registry.go - Append-only registry state at the ledger boundary.
//
// The registry owns the authenticated tree of DAO bullas, the proposal table
// and the coins emitted by accepted executions. The relations never mutate
// it; they consume a (root, path, leaf) triple and their acceptance results
// are applied here by whoever drives the ledger. Persisted as a single JSON
// file.
//
// NOTE: Registry is not thread-safe by itself; serialize access externally.

package dao

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
)

// ProposalStatus tracks a proposal on the ledger side.
type ProposalStatus struct {
	Bulla    string `json:"bulla"`
	Executed bool   `json:"executed"`
}

// Registry is the append-only governance state.
type Registry struct {
	DaoBullas []string          `json:"dao_bullas"`
	Proposals []*ProposalStatus `json:"proposals"`
	Coins     []string          `json:"coins"`

	tree *RegistryTree
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tree: NewRegistryTree()}
}

// RegisterDao appends a DAO bulla to the registry tree and returns its leaf
// position.
func (r *Registry) RegisterDao(bulla *big.Int) (int, error) {
	pos, err := r.tree.Append(bulla)
	if err != nil {
		return 0, err
	}
	r.DaoBullas = append(r.DaoBullas, bulla.String())
	return pos, nil
}

// Root returns the current registry tree root.
func (r *Registry) Root() *big.Int { return r.tree.Root() }

// MembershipPath returns the sibling path for the DAO bulla at position.
func (r *Registry) MembershipPath(position int) ([RegistryDepth]*big.Int, error) {
	return r.tree.MembershipPath(position)
}

// HasRoot reports whether root matches the current registry snapshot.
// A mismatch surfaces to callers as ErrMembershipFailure.
func (r *Registry) HasRoot(root *big.Int) bool {
	return r.tree.Root().Cmp(root) == 0
}

// OpenProposal records an accepted proposal bulla.
func (r *Registry) OpenProposal(bulla *big.Int) error {
	if r.findProposal(bulla.String()) != nil {
		return errors.New("proposal already open")
	}
	r.Proposals = append(r.Proposals, &ProposalStatus{Bulla: bulla.String()})
	return nil
}

// ExecuteProposal marks a proposal consumed and appends its two output coin
// commitments. Re-execution is rejected.
func (r *Registry) ExecuteProposal(bulla, coin0, coin1 *big.Int) error {
	p := r.findProposal(bulla.String())
	if p == nil {
		return errors.New("unknown proposal")
	}
	if p.Executed {
		return ErrProposalExecuted
	}
	p.Executed = true
	r.Coins = append(r.Coins, coin0.String(), coin1.String())
	return nil
}

func (r *Registry) findProposal(bulla string) *ProposalStatus {
	for _, p := range r.Proposals {
		if p.Bulla == bulla {
			return p
		}
	}
	return nil
}

// SaveToFile persists the registry as JSON.
func (r *Registry) SaveToFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRegistryFromFile loads a registry and rebuilds its tree from the
// recorded bullas.
func LoadRegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := &Registry{tree: NewRegistryTree()}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	for i, s := range r.DaoBullas {
		leaf, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("registry entry %d: bad bulla %q", i, s)
		}
		if _, err := r.tree.Append(leaf); err != nil {
			return nil, err
		}
	}
	return r, nil
}
