package rewards

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/erarewards/internal/config"
	"github.com/eigerco/erarewards/internal/crypto"
)

func TestRewardByIDs(t *testing.T) {
	te := newTestEngine(t, config.Default(), nil)
	a, b := crypto.ValidatorID{0x0a}, crypto.ValidatorID{0x0b}

	require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: b, Points: 5}, {Validator: a, Points: 7}}))
	require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: a, Points: 3}, {Validator: a, Points: 1}}))

	points := te.eraPoints(t, 0)
	assert.Equal(t, []ValidatorPoints{{Validator: a, Points: 11}, {Validator: b, Points: 5}}, points.Individual)
	assert.Equal(t, uint64(16), points.Total.Uint64())

	t.Run("zero_points_are_ignored", func(t *testing.T) {
		require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: crypto.ValidatorID{0x0c}}}))
		require.NoError(t, te.RewardByIDs(nil))
		assert.Len(t, te.eraPoints(t, 0).Individual, 2)
	})

	t.Run("active_era_is_used", func(t *testing.T) {
		te.host.era = 1
		require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: a, Points: 2}}))
		assert.Equal(t, uint64(2), te.eraPoints(t, 1).Total.Uint64())
		assert.Equal(t, uint64(16), te.eraPoints(t, 0).Total.Uint64())
	})
}

func TestRewardByIDsSaturates(t *testing.T) {
	te := newTestEngine(t, config.Default(), nil)
	a, b := crypto.ValidatorID{0x0a}, crypto.ValidatorID{0x0b}

	require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: a, Points: math.MaxUint32 - 1}}))
	require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: a, Points: 5}, {Validator: b, Points: 5}}))

	points := te.eraPoints(t, 0)
	p, _ := points.Points(a)
	assert.Equal(t, uint32(math.MaxUint32), p)
	// the total only grows by what the individual entries absorbed
	assert.Equal(t, uint64(math.MaxUint32)+5, points.Total.Uint64())
	assert.Equal(t, sumPoints(points), points.Total)
}

func TestLedgerTotalEqualsSum(t *testing.T) {
	te := newTestEngine(t, config.Default(), nil)
	ids := validatorIDs(8)
	rng := rand.New(rand.NewSource(1))

	for range 200 {
		batch := make([]ValidatorPoints, rng.Intn(5))
		for i := range batch {
			pts := uint32(rng.Intn(1000))
			if rng.Intn(20) == 0 {
				pts = math.MaxUint32 - uint32(rng.Intn(10))
			}
			batch[i] = ValidatorPoints{Validator: ids[rng.Intn(len(ids))], Points: pts}
		}
		require.NoError(t, te.RewardByIDs(batch))
	}

	points := te.eraPoints(t, 0)
	assert.Equal(t, sumPoints(points), points.Total)
}

func TestRewardBackingAndDisputes(t *testing.T) {
	cfg := config.Default()
	cfg.BackingPoints = 20
	cfg.DisputeStatementPoints = 15
	te := newTestEngine(t, cfg, nil)
	a, b := crypto.ValidatorID{0x0a}, crypto.ValidatorID{0x0b}

	require.NoError(t, te.RewardBacking([]crypto.ValidatorID{a, b}))
	require.NoError(t, te.RewardDisputeStatements([]crypto.ValidatorID{a}))

	points := te.eraPoints(t, 0)
	pa, _ := points.Points(a)
	pb, _ := points.Points(b)
	assert.Equal(t, uint32(35), pa)
	assert.Equal(t, uint32(20), pb)
	assert.Equal(t, uint64(55), points.Total.Uint64())
}

func TestOnEraStartPrunesHistory(t *testing.T) {
	cfg := config.Default()
	cfg.HistoryDepth = 3
	te := newTestEngine(t, cfg, nil)
	v := crypto.ValidatorID{0x01}

	for era := EraIndex(0); era <= 7; era++ {
		te.host.era = era
		require.NoError(t, te.OnEraStart(era, SessionIndex(era)*6, uint32(era)))
		require.NoError(t, te.NoteBlockAuthor(v))
		require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: v, Points: 1}}))

		for past := EraIndex(0); past <= era; past++ {
			_, found, err := te.EraRewardPoints(past)
			require.NoError(t, err)
			retained := past+EraIndex(cfg.HistoryDepth) > era
			assert.Equal(t, retained, found, "era %d after start of era %d", past, era)

			blocks, err := te.BlocksProducedInEra(past)
			require.NoError(t, err)
			assert.Equal(t, retained, blocks > 0, "blocks of era %d after start of era %d", past, era)
		}
	}
}

func TestOnEraStartPrunesSkippedEras(t *testing.T) {
	cfg := config.Default()
	cfg.HistoryDepth = 2
	te := newTestEngine(t, cfg, nil)
	v := crypto.ValidatorID{0x01}

	for _, era := range []EraIndex{0, 1, 2} {
		te.host.era = era
		require.NoError(t, te.RewardByIDs([]ValidatorPoints{{Validator: v, Points: 1}}))
	}

	// a jump over several eras evicts everything out of the window at once
	require.NoError(t, te.OnEraStart(10, 60, 10))
	for _, era := range []EraIndex{0, 1, 2} {
		_, found, err := te.EraRewardPoints(era)
		require.NoError(t, err)
		assert.False(t, found)
	}
}
