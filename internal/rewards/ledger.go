package rewards

import (
	"slices"

	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/safemath"
	"github.com/eigerco/erarewards/internal/store"
	"github.com/eigerco/erarewards/pkg/log"
)

// ledgerUpdate is the pending change of one era's ledger entry.
type ledgerUpdate struct {
	era     EraIndex
	total   *uint256.Int
	changed []store.ValidatorPoints
	awarded uint64
}

// RewardByIDs adds points to the active era's ledger entry. It is the only
// way the ledger is mutated. Zero-point entries are ignored.
func (e *Engine) RewardByIDs(points []ValidatorPoints) error {
	update, err := e.accumulate(e.activeEra(), points)
	if err != nil || update == nil {
		return err
	}
	if err := e.store.PutEraPoints(uint32(update.era), update.total, update.changed); err != nil {
		return err
	}
	update.record()
	return nil
}

// RewardBacking awards BackingPoints to every validator that backed a candidate.
func (e *Engine) RewardBacking(validators []crypto.ValidatorID) error {
	return e.RewardByIDs(uniformPoints(validators, e.cfg.BackingPoints))
}

// RewardDisputeStatements awards DisputeStatementPoints to every validator
// that submitted a valid dispute statement.
func (e *Engine) RewardDisputeStatements(validators []crypto.ValidatorID) error {
	return e.RewardByIDs(uniformPoints(validators, e.cfg.DisputeStatementPoints))
}

func uniformPoints(validators []crypto.ValidatorID, points uint32) []ValidatorPoints {
	out := make([]ValidatorPoints, len(validators))
	for i, v := range validators {
		out[i] = ValidatorPoints{Validator: v, Points: points}
	}
	return out
}

// accumulate computes the ledger entry of era after adding points. The total
// grows by the amount each individual entry actually grew, so it stays equal
// to the sum of the individual entries when they saturate. A nil update
// means there is nothing to write.
func (e *Engine) accumulate(era EraIndex, points []ValidatorPoints) (*ledgerUpdate, error) {
	if len(points) == 0 {
		return nil, nil
	}

	total, _, err := e.store.EraTotal(uint32(era))
	if err != nil {
		return nil, err
	}

	current := make(map[crypto.ValidatorID]uint32, len(points))
	var awarded uint64
	for _, p := range points {
		if p.Points == 0 {
			continue
		}
		old, ok := current[p.Validator]
		if !ok {
			old, err = e.store.EraValidatorPoints(uint32(era), p.Validator)
			if err != nil {
				return nil, err
			}
		}
		updated := safemath.SaturatingAdd(old, p.Points)
		delta := updated - old
		total = safemath.SaturatingAdd128(total, uint256.NewInt(uint64(delta)))
		awarded += uint64(delta)
		current[p.Validator] = updated
	}
	if len(current) == 0 {
		return nil, nil
	}

	changed := make([]store.ValidatorPoints, 0, len(current))
	for v, pts := range current {
		changed = append(changed, store.ValidatorPoints{Validator: v, Points: pts})
	}
	slices.SortFunc(changed, func(a, b store.ValidatorPoints) int {
		return a.Validator.Compare(b.Validator)
	})

	return &ledgerUpdate{era: era, total: total, changed: changed, awarded: awarded}, nil
}

func (u *ledgerUpdate) record() {
	metricPointsAwarded().Add(int64(u.awarded))
	log.Rewards.Debug().
		Uint32("era", uint32(u.era)).
		Int("validators", len(u.changed)).
		Uint64("awarded", u.awarded).
		Str("total", u.total.Dec()).
		Msg("reward points accumulated")
}

// EraRewardPoints returns the ledger entry of era. found is false when no
// points were recorded for it or it has been pruned.
func (e *Engine) EraRewardPoints(era EraIndex) (EraRewardPoints, bool, error) {
	total, found, err := e.store.EraTotal(uint32(era))
	if err != nil || !found {
		return EraRewardPoints{}, false, err
	}
	entries, err := e.store.EraPoints(uint32(era))
	if err != nil {
		return EraRewardPoints{}, false, err
	}

	individual := make([]ValidatorPoints, len(entries))
	for i, entry := range entries {
		individual[i] = ValidatorPoints(entry)
	}
	return EraRewardPoints{Total: total, Individual: individual}, true, nil
}
