package binary_tree

import (
	"github.com/eigerco/erarewards/internal/crypto"
)

// ComputeNode hashes the concatenation of two child nodes.
func ComputeNode(left, right crypto.Hash, hashFunc crypto.Hasher) crypto.Hash {
	combined := make([]byte, 0, 2*crypto.HashSize)
	combined = append(combined, left[:]...)
	combined = append(combined, right[:]...)
	return hashFunc(combined)
}

// nextLevel folds one tree level into its parent level. A trailing odd node
// is promoted unchanged.
func nextLevel(level []crypto.Hash, hashFunc crypto.Hasher) []crypto.Hash {
	parents := make([]crypto.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 == len(level) {
			parents = append(parents, level[i])
			break
		}
		parents = append(parents, ComputeNode(level[i], level[i+1], hashFunc))
	}
	return parents
}
