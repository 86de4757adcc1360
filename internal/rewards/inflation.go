package rewards

import (
	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/safemath"
	"github.com/eigerco/erarewards/pkg/log"
)

// InflationPercent maps the blocks produced in an era to a whole inflation
// percentage between minPercent and maxPercent. The performance ratio
// min(blocks, expected)/expected is applied exactly and rounded down; an
// expected count of zero counts as full performance.
func InflationPercent(blocks, expected, minPercent, maxPercent uint32) uint32 {
	span := safemath.SaturatingSub(maxPercent, minPercent)
	if expected == 0 {
		return minPercent + span
	}
	bonus := uint64(min(blocks, expected)) * uint64(span) / uint64(expected)
	return minPercent + uint32(bonus)
}

// ScaleInflation returns floor(base * InflationPercent(...) / 100), bounded to
// 128 bits.
func ScaleInflation(base *uint256.Int, blocks, expected, minPercent, maxPercent uint32) *uint256.Int {
	percent := InflationPercent(blocks, expected, minPercent, maxPercent)
	return safemath.MulDiv128(base, uint256.NewInt(uint64(percent)), uint256.NewInt(100))
}

// CalculateScaledInflation scales base by the block production of era.
func (e *Engine) CalculateScaledInflation(era EraIndex, base *uint256.Int) (*uint256.Int, error) {
	blocks, err := e.store.EraBlocks(uint32(era))
	if err != nil {
		return nil, err
	}
	scaled := ScaleInflation(base, blocks, e.cfg.ExpectedBlocksPerEra,
		e.cfg.MinInflationPercent, e.cfg.MaxInflationPercent)

	log.Inflation.Debug().
		Uint32("era", uint32(era)).
		Uint32("blocks", blocks).
		Uint32("expected", e.cfg.ExpectedBlocksPerEra).
		Uint32("percent", InflationPercent(blocks, e.cfg.ExpectedBlocksPerEra,
			e.cfg.MinInflationPercent, e.cfg.MaxInflationPercent)).
		Str("base", safemath.Clamp128(base).Dec()).
		Str("scaled", scaled.Dec()).
		Msg("scaled era inflation")
	return scaled, nil
}
