package rewards

import (
	"fmt"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/safemath"
	"github.com/eigerco/erarewards/pkg/log"
)

// sessionWeights splits the session point pool. The three fractions sum to
// at most PerbillOne.
type sessionWeights struct {
	block    safemath.Perbill
	liveness safemath.Perbill
	base     safemath.Perbill
}

// normalizeWeights derives the base weight from the configured block and
// liveness weights. When the two exceed 100% they are rescaled so that they
// sum to exactly 100% and the base weight is zero.
func normalizeWeights(block, liveness safemath.Perbill) (w sessionWeights, rescaled bool) {
	sum := uint64(block) + uint64(liveness)
	if sum <= uint64(safemath.PerbillOne) {
		return sessionWeights{
			block:    block,
			liveness: liveness,
			base:     safemath.PerbillOne.SaturatingSub(block).SaturatingSub(liveness),
		}, false
	}

	scaledBlock := safemath.PerbillFromRational(uint64(block), sum)
	return sessionWeights{
		block:    scaledBlock,
		liveness: safemath.PerbillOne.SaturatingSub(scaledBlock),
	}, true
}

// scoreParams are the inputs of one session score.
type scoreParams struct {
	weights            sessionWeights
	basePointsPerBlock uint32
	fairShareCap       safemath.Perbill
}

// scoreSession computes the points of every non-whitelisted validator.
// validators must be free of duplicates and non-empty.
func scoreSession(
	p scoreParams,
	blocks map[crypto.ValidatorID]uint32,
	validators []crypto.ValidatorID,
	whitelisted crypto.ValidatorSet,
	online func(crypto.ValidatorID) bool,
) []ValidatorPoints {
	var totalBlocks uint64
	for _, b := range blocks {
		totalBlocks += uint64(b)
	}
	validatorCount := uint64(len(validators))
	base := uint64(p.basePointsPerBlock)

	fairShare := max(1, totalBlocks/validatorCount)
	maxCredited := safemath.SaturatingAdd(fairShare, p.fairShareCap.MulFloor(fairShare))

	// the liveness and base pool is shared across all validators
	effectiveTotal := max(totalBlocks, validatorCount)
	pool := safemath.SaturatingMul(effectiveTotal, base)

	var out []ValidatorPoints
	for _, v := range validators {
		if whitelisted.Has(v) {
			continue
		}

		credited := min(uint64(blocks[v]), maxCredited)
		blockContribution := p.weights.block.MulFloor(safemath.SaturatingMul(credited, base))

		otherWeight := p.weights.base
		if online(v) {
			otherWeight = otherWeight.SaturatingAdd(p.weights.liveness)
		}
		livenessBase := otherWeight.MulFloor(pool) / validatorCount

		points := safemath.SaturatingUint32(safemath.SaturatingAdd(blockContribution, livenessBase))
		if points > 0 {
			out = append(out, ValidatorPoints{Validator: v, Points: points})
		}
	}
	return out
}

// SessionEnded scores the session that just ended using the current
// validator set and whitelist.
func (e *Engine) SessionEnded(session SessionIndex) error {
	return e.AwardSessionPerformancePoints(session,
		e.deps.Validators.Validators(),
		e.deps.Whitelist.WhitelistedValidators())
}

// AwardSessionPerformancePoints converts the session block counters into
// reward points for the active era. The session counters are cleared in the
// same write, whatever the outcome of scoring.
func (e *Engine) AwardSessionPerformancePoints(
	session SessionIndex,
	validators []crypto.ValidatorID,
	whitelisted []crypto.ValidatorID,
) error {
	logger := log.Rewards.With().Uint32("session", uint32(session)).Logger()

	unique := dedupe(validators)
	if len(unique) == 0 {
		if err := e.store.ClearSessionBlocks(); err != nil {
			return err
		}
		return fmt.Errorf("session %d: %w", session, ErrNoValidators)
	}

	whitelist := crypto.NewValidatorSet(whitelisted)
	nonWhitelisted := 0
	for _, v := range unique {
		if !whitelist.Has(v) {
			nonWhitelisted++
		}
	}
	if nonWhitelisted == 0 {
		logger.Warn().Int("validators", len(unique)).Msg("every validator is whitelisted, no session points awarded")
		return e.store.ClearSessionBlocks()
	}

	counters, err := e.store.AllSessionBlocks()
	if err != nil {
		return err
	}
	blocks := make(map[crypto.ValidatorID]uint32, len(counters))
	for _, c := range counters {
		blocks[c.Validator] = c.Blocks
	}

	points := scoreSession(scoreParams{
		weights:            e.weights,
		basePointsPerBlock: e.cfg.BasePointsPerBlock,
		fairShareCap:       e.cfg.FairShareCap,
	}, blocks, unique, whitelist, e.deps.Liveness.IsOnline)

	era := e.activeEra()
	update, err := e.accumulate(era, points)
	if err != nil {
		return err
	}
	if update == nil {
		logger.Debug().Msg("no session points awarded")
		return e.store.ClearSessionBlocks()
	}
	if err := e.store.PutSessionPoints(uint32(era), update.total, update.changed); err != nil {
		return err
	}
	update.record()

	logger.Info().
		Uint32("era", uint32(era)).
		Int("rewarded", len(points)).
		Int("validators", len(unique)).
		Msg("session performance points awarded")
	return nil
}

// dedupe keeps the first occurrence of every validator.
func dedupe(validators []crypto.ValidatorID) []crypto.ValidatorID {
	seen := make(crypto.ValidatorSet, len(validators))
	out := make([]crypto.ValidatorID, 0, len(validators))
	for _, v := range validators {
		if seen.Has(v) {
			continue
		}
		seen.Add(v)
		out = append(out, v)
	}
	return out
}
