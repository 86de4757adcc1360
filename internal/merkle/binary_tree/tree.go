package binary_tree

import (
	"github.com/eigerco/erarewards/internal/crypto"
)

// ComputeRoot computes the root of a binary Merkle tree over already hashed leaves.
//
// Internal nodes are H(left ‖ right). When a level has an odd number of nodes
// the last one is promoted to the next level as is, without duplication or
// padding. A single leaf is its own root and an empty tree has the zero hash.
func ComputeRoot(leaves []crypto.Hash, hashFunc crypto.Hasher) crypto.Hash {
	if len(leaves) == 0 {
		return crypto.Hash{}
	}

	level := leaves
	for len(level) > 1 {
		level = nextLevel(level, hashFunc)
	}
	return level[0]
}
