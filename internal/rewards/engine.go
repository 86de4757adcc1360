package rewards

import (
	"fmt"

	"github.com/eigerco/erarewards/internal/config"
	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/store"
	"github.com/eigerco/erarewards/pkg/log"
	"github.com/eigerco/erarewards/pkg/metrics"
)

var (
	metricPointsAwarded   = metrics.LazyLoadCounter("points_awarded")
	metricErasFinalized   = metrics.LazyLoadCounterVec("eras_finalized", []string{"outcome"})
	metricInflationMinted = metrics.LazyLoadCounter("inflation_minted")
	metricErasPruned      = metrics.LazyLoadCounter("eras_pruned")
	metricMessages        = metrics.LazyLoadCounterVec("messages", []string{"status"})
	metricActiveEra       = metrics.LazyLoadGauge("active_era")
)

// Dependencies are the host collaborators of the engine. Sender and Weights
// are optional: without a sender era results are minted but not dispatched.
type Dependencies struct {
	Eras       EraSource
	Validators ValidatorSource
	Liveness   LivenessOracle
	Whitelist  WhitelistSource
	Minter     Minter
	Events     EventSink
	Sender     RewardsSender
	Weights    WeightMeter
}

// Engine turns block authorship into era reward points, commits them to a
// Merkle root and finalizes eras by minting scaled inflation.
//
// Engine is not safe for concurrent use; the host drives it one block at a
// time.
type Engine struct {
	cfg     config.Config
	store   *store.Rewards
	deps    Dependencies
	hash    crypto.Hasher
	weights sessionWeights
}

func NewEngine(cfg config.Config, rewards *store.Rewards, deps Dependencies) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rewards == nil {
		return nil, fmt.Errorf("%w: rewards store", ErrMissingDependency)
	}
	required := []struct {
		name string
		ok   bool
	}{
		{"era source", deps.Eras != nil},
		{"validator source", deps.Validators != nil},
		{"liveness oracle", deps.Liveness != nil},
		{"whitelist source", deps.Whitelist != nil},
		{"minter", deps.Minter != nil},
		{"event sink", deps.Events != nil},
	}
	for _, r := range required {
		if !r.ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingDependency, r.name)
		}
	}
	if deps.Weights == nil {
		deps.Weights = NoopWeightMeter{}
	}

	weights, rescaled := normalizeWeights(cfg.BlockAuthoringWeight, cfg.LivenessWeight)
	if rescaled {
		log.Rewards.Warn().
			Uint32("block_weight", uint32(cfg.BlockAuthoringWeight)).
			Uint32("liveness_weight", uint32(cfg.LivenessWeight)).
			Uint32("rescaled_block_weight", uint32(weights.block)).
			Uint32("rescaled_liveness_weight", uint32(weights.liveness)).
			Msg("block and liveness weights exceed 100%, rescaled proportionally")
	}

	return &Engine{
		cfg:     cfg,
		store:   rewards,
		deps:    deps,
		hash:    cfg.HashFunc(),
		weights: weights,
	}, nil
}

// Config returns the configuration the engine runs with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

func (e *Engine) activeEra() EraIndex {
	return e.deps.Eras.ActiveEra().Index
}
