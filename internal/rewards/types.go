package rewards

import (
	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/merkle/binary_tree"
)

type (
	EraIndex     uint32
	SessionIndex uint32
)

// ValidatorPoints pairs a validator with a number of reward points.
type ValidatorPoints struct {
	Validator crypto.ValidatorID
	Points    uint32
}

// EraRewardPoints is the ledger entry of one era. Individual is sorted by
// validator id and Total always equals the sum of its points.
type EraRewardPoints struct {
	Total      *uint256.Int
	Individual []ValidatorPoints
}

// Points returns the points of a validator in the era.
func (p EraRewardPoints) Points(validator crypto.ValidatorID) (uint32, bool) {
	for _, entry := range p.Individual {
		if entry.Validator == validator {
			return entry.Points, true
		}
	}
	return 0, false
}

// ActiveEraInfo describes the era currently accruing rewards.
type ActiveEraInfo struct {
	Index EraIndex
	// Start is the era start timestamp in milliseconds, nil until the
	// first block of the era is produced.
	Start *uint64
}

// EraRewardsUtils is the Merkle commitment over an era's reward points.
type EraRewardsUtils struct {
	MerkleRoot  crypto.Hash
	Leaves      []crypto.Hash
	LeafIndex   *uint64
	TotalPoints *uint256.Int
}

// MerkleProof proves the reward points of one validator in an era.
type MerkleProof = binary_tree.Proof
