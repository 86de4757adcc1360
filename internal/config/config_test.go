package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/safemath"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(64), cfg.HistoryDepth)
	assert.Equal(t, safemath.Perbill(600_000_000), cfg.BlockAuthoringWeight)
	assert.Equal(t, uint64(1_000_000), cfg.EraInflation.Uint64())
	assert.True(t, cfg.TreasuryAccount.IsZero())
	assert.Equal(t, common.Address{}, cfg.DestinationContract)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero_history_depth", func(c *Config) { c.HistoryDepth = 0 }},
		{"min_above_max", func(c *Config) { c.MinInflationPercent = 50; c.MaxInflationPercent = 40 }},
		{"max_above_hundred", func(c *Config) { c.MaxInflationPercent = 101 }},
		{"block_weight_above_one", func(c *Config) { c.BlockAuthoringWeight = safemath.PerbillOne + 1 }},
		{"liveness_weight_above_one", func(c *Config) { c.LivenessWeight = safemath.PerbillOne + 1 }},
		{"fair_share_cap_above_one", func(c *Config) { c.FairShareCap = safemath.PerbillOne + 1 }},
		{"missing_inflation", func(c *Config) { c.EraInflation = nil }},
		{"inflation_above_u128", func(c *Config) { c.EraInflation = new(uint256.Int).AddUint64(safemath.MaxUint128, 1) }},
		{"zero_gas_limit", func(c *Config) { c.GasLimit = 0 }},
		{"unknown_hasher", func(c *Config) { c.Hasher = "md5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("weights_summing_above_one_are_accepted", func(t *testing.T) {
		cfg := Default()
		cfg.BlockAuthoringWeight = safemath.PerbillFromPercent(80)
		cfg.LivenessWeight = safemath.PerbillFromPercent(40)
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "rewards.toml", `
history_depth = 8
block_authoring_weight_percent = 50
liveness_weight_percent = 25
era_inflation = "340282366920938463463374607431768211455"
treasury_account = "0x0101010101010101010101010101010101010101010101010101010101010101"
destination_contract = "0x00000000000000000000000000000000000000aa"
hasher = "blake2b"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(8), cfg.HistoryDepth)
	assert.Equal(t, safemath.PerbillFromPercent(50), cfg.BlockAuthoringWeight)
	assert.Equal(t, safemath.PerbillFromPercent(25), cfg.LivenessWeight)
	assert.Equal(t, safemath.MaxUint128, cfg.EraInflation)
	assert.Equal(t, crypto.AccountID{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, cfg.TreasuryAccount)
	assert.Equal(t, common.HexToAddress("0xaa"), cfg.DestinationContract)
	assert.Equal(t, crypto.HasherBlake2b, cfg.Hasher)

	// untouched fields keep their defaults
	assert.Equal(t, uint32(320), cfg.BasePointsPerBlock)
	assert.Equal(t, uint32(600), cfg.ExpectedBlocksPerEra)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "rewards.yaml", `
expected_blocks_per_era: 100
min_inflation_percent: 10
max_inflation_percent: 90
gas_limit: 250000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), cfg.ExpectedBlocksPerEra)
	assert.Equal(t, uint32(10), cfg.MinInflationPercent)
	assert.Equal(t, uint32(90), cfg.MaxInflationPercent)
	assert.Equal(t, uint64(250000), cfg.GasLimit)
}

func TestLoadEmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default().HistoryDepth, cfg.HistoryDepth)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"unknown_toml_key", "c.toml", "history_dept = 3\n"},
		{"unknown_yaml_key", "c.yaml", "history_dept: 3\n"},
		{"percent_above_hundred", "c.toml", "liveness_weight_percent = 120\n"},
		{"bad_inflation", "c.toml", "era_inflation = \"-5\"\n"},
		{"bad_account", "c.toml", "treasury_account = \"0x01\"\n"},
		{"bad_address", "c.toml", "destination_contract = \"nope\"\n"},
		{"min_above_max", "c.yaml", "min_inflation_percent: 60\nmax_inflation_percent: 50\n"},
		{"unsupported_extension", "c.json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
