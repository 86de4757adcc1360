package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/safemath"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable the reward engine reads. It is passed by value
// into the engine and never mutated after validation.
type Config struct {
	// HistoryDepth is the number of eras the reward ledger retains.
	HistoryDepth uint32
	// BasePointsPerBlock is the point value of one authored block.
	BasePointsPerBlock uint32
	// BlockAuthoringWeight is the share of session points driven by authored blocks.
	BlockAuthoringWeight safemath.Perbill
	// LivenessWeight is the share of session points driven by being online.
	LivenessWeight safemath.Perbill
	// FairShareCap is the fraction above the fair share of blocks that is still credited.
	FairShareCap safemath.Perbill
	// ExpectedBlocksPerEra is the block count at which inflation reaches its maximum.
	ExpectedBlocksPerEra uint32
	MinInflationPercent  uint32
	MaxInflationPercent  uint32

	BackingPoints          uint32
	DisputeStatementPoints uint32

	// EraInflation is the base amount scaled and minted at every era end.
	EraInflation    *uint256.Int
	TreasuryAccount crypto.AccountID

	// DestinationContract receives the rewards message. The zero address
	// disables dispatch.
	DestinationContract common.Address
	GasLimit            uint64

	// Hasher names the hash used for Merkle leaves and nodes.
	Hasher string
}

// Default returns the production configuration.
func Default() Config {
	return Config{
		HistoryDepth:           64,
		BasePointsPerBlock:     320,
		BlockAuthoringWeight:   safemath.PerbillFromPercent(60),
		LivenessWeight:         safemath.PerbillFromPercent(30),
		FairShareCap:           safemath.PerbillFromPercent(50),
		ExpectedBlocksPerEra:   600,
		MinInflationPercent:    20,
		MaxInflationPercent:    100,
		BackingPoints:          20,
		DisputeStatementPoints: 20,
		EraInflation:           uint256.NewInt(1_000_000),
		GasLimit:               1_000_000,
		Hasher:                 crypto.HasherKeccak,
	}
}

// Validate rejects values the engine cannot operate on. Weights whose sum
// exceeds 100% are accepted here and rescaled by the scorer.
func (c Config) Validate() error {
	if c.HistoryDepth == 0 {
		return fmt.Errorf("%w: history depth must be positive", ErrInvalidConfig)
	}
	if c.BlockAuthoringWeight > safemath.PerbillOne {
		return fmt.Errorf("%w: block authoring weight above 100%%", ErrInvalidConfig)
	}
	if c.LivenessWeight > safemath.PerbillOne {
		return fmt.Errorf("%w: liveness weight above 100%%", ErrInvalidConfig)
	}
	if c.FairShareCap > safemath.PerbillOne {
		return fmt.Errorf("%w: fair share cap above 100%%", ErrInvalidConfig)
	}
	if c.MaxInflationPercent > 100 {
		return fmt.Errorf("%w: max inflation percent %d above 100", ErrInvalidConfig, c.MaxInflationPercent)
	}
	if c.MinInflationPercent > c.MaxInflationPercent {
		return fmt.Errorf("%w: min inflation percent %d above max %d", ErrInvalidConfig,
			c.MinInflationPercent, c.MaxInflationPercent)
	}
	if c.EraInflation == nil {
		return fmt.Errorf("%w: era inflation not set", ErrInvalidConfig)
	}
	if c.EraInflation.Gt(safemath.MaxUint128) {
		return fmt.Errorf("%w: era inflation exceeds 128 bits", ErrInvalidConfig)
	}
	if c.GasLimit == 0 {
		return fmt.Errorf("%w: gas limit must be positive", ErrInvalidConfig)
	}
	if _, err := crypto.HasherByName(c.Hasher); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HashFunc resolves the configured hasher. It must only be called on a
// validated config.
func (c Config) HashFunc() crypto.Hasher {
	h, err := crypto.HasherByName(c.Hasher)
	if err != nil {
		return crypto.KeccakData
	}
	return h
}
