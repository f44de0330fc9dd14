// Package dao implements the shared primitives of a privacy-preserving
// governance protocol for decentralized organizations: binding commitments
// (bullas), homomorphic Pedersen value commitments, the registry Merkle tree,
// vote tally aggregation, and the ledger-boundary registry state.
//
// The three constraint relations built on these primitives live in
// internal/relations: propose proves a legitimate proposal creation by a DAO
// member with sufficient governance tokens, vote proves a single weighted
// vote commitment without revealing the choice, and exec verifies the
// aggregate tally and emits the two value-conserving output coins.
//
// Security model:
//   - MiMC over the BW6-761 scalar field for all binding hashes
//   - Pedersen commitments over BLS12-377 G1, generators via hash-to-curve
//   - Groth16 proofs over BW6-761 via gnark
//   - all randomness from crypto/rand
//
// Known gap: no nullifier or voter-identity mechanism exists at this layer,
// so double-voting is not prevented here. A complete system must layer a
// nullifier scheme on top; callers must not assume protection.
package dao
