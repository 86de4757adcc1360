package binary_tree

import "github.com/eigerco/erarewards/internal/crypto"

// Proof proves that Leaf sits at LeafIndex in a tree of NumberOfLeaves leaves
// committing to Root.
type Proof struct {
	Root           crypto.Hash   `json:"root"`
	Proof          []crypto.Hash `json:"proof"`
	NumberOfLeaves uint64        `json:"number_of_leaves"`
	LeafIndex      uint64        `json:"leaf_index"`
	Leaf           crypto.Hash   `json:"leaf"`
}

// GenerateProof builds an inclusion proof for the leaf at index.
func GenerateProof(leaves []crypto.Hash, index int, hashFunc crypto.Hasher) (Proof, bool) {
	if index < 0 || index >= len(leaves) {
		return Proof{}, false
	}
	return Proof{
		Root:           ComputeRoot(leaves, hashFunc),
		Proof:          ComputeTrace(leaves, index, hashFunc),
		NumberOfLeaves: uint64(len(leaves)),
		LeafIndex:      uint64(index),
		Leaf:           leaves[index],
	}, true
}

// VerifyProof recomputes the root from the proof path and compares it to the claimed root.
func VerifyProof(p Proof, hashFunc crypto.Hasher) bool {
	root, ok := ComputeRootFromTrace(p.Leaf, p.LeafIndex, p.NumberOfLeaves, p.Proof, hashFunc)
	return ok && root == p.Root
}
