package rewards

import (
	"encoding/binary"
	"slices"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/merkle/binary_tree"
	"github.com/eigerco/erarewards/pkg/log"
)

// LeafSize is the length of an encoded reward leaf.
const LeafSize = crypto.ValidatorIDSize + 4

// EncodeLeaf encodes a reward entry as the validator id followed by the
// points as a little-endian uint32.
func EncodeLeaf(validator crypto.ValidatorID, points uint32) []byte {
	leaf := make([]byte, 0, LeafSize)
	leaf = append(leaf, validator[:]...)
	return binary.LittleEndian.AppendUint32(leaf, points)
}

// LeafHash hashes an encoded reward entry.
func LeafHash(hash crypto.Hasher, validator crypto.ValidatorID, points uint32) crypto.Hash {
	return hash(EncodeLeaf(validator, points))
}

// GenerateEraRewardsUtils builds the Merkle commitment of era. When locate is
// set the returned LeafIndex points at its leaf. found is false when the era
// has no ledger entry or locate is not part of it.
func (e *Engine) GenerateEraRewardsUtils(era EraIndex, locate *crypto.ValidatorID) (EraRewardsUtils, bool, error) {
	points, found, err := e.EraRewardPoints(era)
	if err != nil {
		return EraRewardsUtils{}, false, err
	}
	if !found {
		log.Rewards.Debug().Uint32("era", uint32(era)).Msg("no reward points recorded for era")
		return EraRewardsUtils{}, false, nil
	}

	utils, ok := buildRewardsUtils(e.hash, points, locate)
	if !ok {
		log.Rewards.Warn().Uint32("era", uint32(era)).Stringer("validator", locate).
			Msg("validator has no reward points in era")
		return EraRewardsUtils{}, false, nil
	}
	return utils, true, nil
}

func buildRewardsUtils(hash crypto.Hasher, points EraRewardPoints, locate *crypto.ValidatorID) (EraRewardsUtils, bool) {
	// Individual is already sorted; sorting again keeps the commitment
	// canonical for entries built by hand.
	individual := slices.Clone(points.Individual)
	slices.SortFunc(individual, func(a, b ValidatorPoints) int {
		return a.Validator.Compare(b.Validator)
	})

	utils := EraRewardsUtils{
		Leaves:      make([]crypto.Hash, len(individual)),
		TotalPoints: points.Total,
	}
	for i, entry := range individual {
		utils.Leaves[i] = LeafHash(hash, entry.Validator, entry.Points)
		if locate != nil && entry.Validator == *locate {
			index := uint64(i)
			utils.LeafIndex = &index
		}
	}
	if locate != nil && utils.LeafIndex == nil {
		return EraRewardsUtils{}, false
	}
	utils.MerkleRoot = binary_tree.ComputeRoot(utils.Leaves, hash)
	return utils, true
}

// GenerateRewardsMerkleProof proves the points of validator in era. found is
// false when the validator has no points recorded for the era.
func (e *Engine) GenerateRewardsMerkleProof(validator crypto.ValidatorID, era EraIndex) (MerkleProof, bool, error) {
	utils, found, err := e.GenerateEraRewardsUtils(era, &validator)
	if err != nil || !found {
		return MerkleProof{}, false, err
	}
	proof, ok := binary_tree.GenerateProof(utils.Leaves, int(*utils.LeafIndex), e.hash)
	return proof, ok, nil
}

// VerifyRewardsMerkleProof checks a proof with the engine's hasher.
func (e *Engine) VerifyRewardsMerkleProof(proof MerkleProof) bool {
	return VerifyRewardsMerkleProof(proof, e.hash)
}

// VerifyRewardsMerkleProof recomputes the root from the proof path and
// compares it with the claimed root.
func VerifyRewardsMerkleProof(proof MerkleProof, hash crypto.Hasher) bool {
	return binary_tree.VerifyProof(proof, hash)
}
