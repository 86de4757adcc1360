package binary_tree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eigerco/erarewards/internal/crypto"
)

func makeLeaves(n int) []crypto.Hash {
	leaves := make([]crypto.Hash, n)
	for i := range leaves {
		leaves[i] = crypto.KeccakData([]byte{byte(i)})
	}
	return leaves
}

func TestComputeRoot(t *testing.T) {
	h := crypto.KeccakData
	l := makeLeaves(5)

	tests := []struct {
		name     string
		leaves   []crypto.Hash
		expected crypto.Hash
	}{
		{
			name:     "empty_leaves",
			leaves:   nil,
			expected: crypto.Hash{},
		},
		{
			name:     "single_leaf",
			leaves:   l[:1],
			expected: l[0],
		},
		{
			name:     "two_leaves",
			leaves:   l[:2],
			expected: ComputeNode(l[0], l[1], h),
		},
		{
			name:     "three_leaves_promotes_last",
			leaves:   l[:3],
			expected: ComputeNode(ComputeNode(l[0], l[1], h), l[2], h),
		},
		{
			name:     "four_leaves",
			leaves:   l[:4],
			expected: ComputeNode(ComputeNode(l[0], l[1], h), ComputeNode(l[2], l[3], h), h),
		},
		{
			name:   "five_leaves",
			leaves: l,
			expected: ComputeNode(
				ComputeNode(ComputeNode(l[0], l[1], h), ComputeNode(l[2], l[3], h), h),
				l[4],
				h,
			),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ComputeRoot(tc.leaves, h))
		})
	}
}

func TestComputeRootProperties(t *testing.T) {
	t.Run("deterministic_output", func(t *testing.T) {
		leaves := makeLeaves(7)
		assert.Equal(t, ComputeRoot(leaves, crypto.KeccakData), ComputeRoot(leaves, crypto.KeccakData))
	})

	t.Run("order_matters", func(t *testing.T) {
		leaves := makeLeaves(2)
		swapped := []crypto.Hash{leaves[1], leaves[0]}
		assert.NotEqual(t, ComputeRoot(leaves, crypto.KeccakData), ComputeRoot(swapped, crypto.KeccakData))
	})

	t.Run("hasher_matters", func(t *testing.T) {
		leaves := makeLeaves(3)
		assert.NotEqual(t, ComputeRoot(leaves, crypto.KeccakData), ComputeRoot(leaves, crypto.HashData))
	})

	t.Run("input_not_mutated", func(t *testing.T) {
		leaves := makeLeaves(6)
		original := append([]crypto.Hash(nil), leaves...)
		ComputeRoot(leaves, crypto.KeccakData)
		assert.Equal(t, original, leaves)
	})
}
