package binary_tree

import (
	"github.com/eigerco/erarewards/internal/crypto"
)

// ComputeTrace returns the sibling hashes on the path from leaf index to the
// root, ordered bottom-up. Levels where the node on the path is promoted
// contribute no sibling.
func ComputeTrace(leaves []crypto.Hash, index int, hashFunc crypto.Hasher) []crypto.Hash {
	if index < 0 || index >= len(leaves) {
		return nil
	}

	trace := []crypto.Hash{}
	level := leaves
	for len(level) > 1 {
		if index%2 == 1 {
			trace = append(trace, level[index-1])
		} else if index+1 < len(level) {
			trace = append(trace, level[index+1])
		}
		level = nextLevel(level, hashFunc)
		index /= 2
	}
	return trace
}

// ComputeRootFromTrace recomputes the root for a leaf at index in a tree of
// leafCount leaves. ok is false if the trace does not have exactly the shape
// the tree requires.
func ComputeRootFromTrace(leaf crypto.Hash, index, leafCount uint64, trace []crypto.Hash, hashFunc crypto.Hasher) (root crypto.Hash, ok bool) {
	if leafCount == 0 || index >= leafCount {
		return crypto.Hash{}, false
	}

	computed := leaf
	used := 0
	for width := leafCount; width > 1; width = (width + 1) / 2 {
		switch {
		case index%2 == 1:
			if used == len(trace) {
				return crypto.Hash{}, false
			}
			computed = ComputeNode(trace[used], computed, hashFunc)
			used++
		case index+1 < width:
			if used == len(trace) {
				return crypto.Hash{}, false
			}
			computed = ComputeNode(computed, trace[used], hashFunc)
			used++
		}
		index /= 2
	}
	return computed, used == len(trace)
}
