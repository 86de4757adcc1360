package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/safemath"
)

// fileConfig is the on-disk shape of Config. Absent fields keep their
// default value. Weights are whole percentages.
type fileConfig struct {
	HistoryDepth           *uint32 `toml:"history_depth" yaml:"history_depth"`
	BasePointsPerBlock     *uint32 `toml:"base_points_per_block" yaml:"base_points_per_block"`
	BlockAuthoringWeight   *uint32 `toml:"block_authoring_weight_percent" yaml:"block_authoring_weight_percent"`
	LivenessWeight         *uint32 `toml:"liveness_weight_percent" yaml:"liveness_weight_percent"`
	FairShareCap           *uint32 `toml:"fair_share_cap_percent" yaml:"fair_share_cap_percent"`
	ExpectedBlocksPerEra   *uint32 `toml:"expected_blocks_per_era" yaml:"expected_blocks_per_era"`
	MinInflationPercent    *uint32 `toml:"min_inflation_percent" yaml:"min_inflation_percent"`
	MaxInflationPercent    *uint32 `toml:"max_inflation_percent" yaml:"max_inflation_percent"`
	BackingPoints          *uint32 `toml:"backing_points" yaml:"backing_points"`
	DisputeStatementPoints *uint32 `toml:"dispute_statement_points" yaml:"dispute_statement_points"`
	EraInflation           *string `toml:"era_inflation" yaml:"era_inflation"`
	TreasuryAccount        *string `toml:"treasury_account" yaml:"treasury_account"`
	DestinationContract    *string `toml:"destination_contract" yaml:"destination_contract"`
	GasLimit               *uint64 `toml:"gas_limit" yaml:"gas_limit"`
	Hasher                 *string `toml:"hasher" yaml:"hasher"`
}

// Load reads a .toml, .yaml or .yml file on top of Default and validates the
// result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.Decode(string(raw), &fc)
		if err != nil {
			return Config{}, fmt.Errorf("%w: decode toml config: %v", ErrInvalidConfig, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		// an empty document leaves the defaults untouched
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%w: decode yaml config: %v", ErrInvalidConfig, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, filepath.Ext(path))
	}

	cfg, err := fc.apply(Default())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (fc fileConfig) apply(cfg Config) (Config, error) {
	setUint32 := func(dst *uint32, src *uint32) {
		if src != nil {
			*dst = *src
		}
	}
	setPercent := func(dst *safemath.Perbill, src *uint32, name string) error {
		if src == nil {
			return nil
		}
		if *src > 100 {
			return fmt.Errorf("%w: %s %d above 100", ErrInvalidConfig, name, *src)
		}
		*dst = safemath.PerbillFromPercent(*src)
		return nil
	}

	setUint32(&cfg.HistoryDepth, fc.HistoryDepth)
	setUint32(&cfg.BasePointsPerBlock, fc.BasePointsPerBlock)
	setUint32(&cfg.ExpectedBlocksPerEra, fc.ExpectedBlocksPerEra)
	setUint32(&cfg.MinInflationPercent, fc.MinInflationPercent)
	setUint32(&cfg.MaxInflationPercent, fc.MaxInflationPercent)
	setUint32(&cfg.BackingPoints, fc.BackingPoints)
	setUint32(&cfg.DisputeStatementPoints, fc.DisputeStatementPoints)

	if err := setPercent(&cfg.BlockAuthoringWeight, fc.BlockAuthoringWeight, "block authoring weight"); err != nil {
		return cfg, err
	}
	if err := setPercent(&cfg.LivenessWeight, fc.LivenessWeight, "liveness weight"); err != nil {
		return cfg, err
	}
	if err := setPercent(&cfg.FairShareCap, fc.FairShareCap, "fair share cap"); err != nil {
		return cfg, err
	}

	if fc.EraInflation != nil {
		v, err := uint256.FromDecimal(*fc.EraInflation)
		if err != nil {
			return cfg, fmt.Errorf("%w: era inflation %q: %v", ErrInvalidConfig, *fc.EraInflation, err)
		}
		cfg.EraInflation = v
	}
	if fc.TreasuryAccount != nil {
		acc, err := crypto.ParseAccountID(*fc.TreasuryAccount)
		if err != nil {
			return cfg, fmt.Errorf("%w: treasury account: %v", ErrInvalidConfig, err)
		}
		cfg.TreasuryAccount = acc
	}
	if fc.DestinationContract != nil {
		if !common.IsHexAddress(*fc.DestinationContract) {
			return cfg, fmt.Errorf("%w: destination contract %q is not an address", ErrInvalidConfig, *fc.DestinationContract)
		}
		cfg.DestinationContract = common.HexToAddress(*fc.DestinationContract)
	}
	if fc.GasLimit != nil {
		cfg.GasLimit = *fc.GasLimit
	}
	if fc.Hasher != nil {
		cfg.Hasher = *fc.Hasher
	}
	return cfg, nil
}
