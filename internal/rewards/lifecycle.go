package rewards

import (
	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/safemath"
	"github.com/eigerco/erarewards/pkg/log"
)

// EraOutcome is the result of finalizing an era.
type EraOutcome uint8

const (
	// EraSkipped means the era had no reward points: nothing was minted.
	EraSkipped EraOutcome = iota
	// EraMintFailed means minting failed and no message was sent.
	EraMintFailed
	// EraDispatchSkipped means inflation was minted but no message was built.
	EraDispatchSkipped
	// EraDispatchFailed means inflation was minted but the message was rejected.
	EraDispatchFailed
	// EraRewardsSent means inflation was minted and the message delivered.
	EraRewardsSent
)

func (o EraOutcome) String() string {
	switch o {
	case EraSkipped:
		return "skipped"
	case EraMintFailed:
		return "mint_failed"
	case EraDispatchSkipped:
		return "dispatch_skipped"
	case EraDispatchFailed:
		return "dispatch_failed"
	case EraRewardsSent:
		return "sent"
	default:
		return "unknown"
	}
}

const (
	eraEndBaseWeight    = 100_000
	eraEndPerLeafWeight = 2_500
)

// OnEraStart evicts ledger history that falls out of the retention window:
// every era at or below era-HistoryDepth.
func (e *Engine) OnEraStart(era EraIndex, sessionStart SessionIndex, externalIndex uint32) error {
	logger := log.Rewards.With().
		Uint32("era", uint32(era)).
		Uint32("session_start", uint32(sessionStart)).
		Uint32("external_index", externalIndex).
		Logger()
	metricActiveEra().Set(int64(era))

	evictable, ok := safemath.Sub32(uint32(era), e.cfg.HistoryDepth)
	if !ok {
		logger.Debug().Msg("era started, nothing to evict")
		return nil
	}
	pruned, err := e.store.PruneErasUpTo(evictable)
	if err != nil {
		return err
	}
	metricErasPruned().Add(int64(len(pruned)))
	logger.Debug().Uint32("evictable", evictable).Int("pruned", len(pruned)).Msg("era started")
	return nil
}

// OnEraEnd finalizes era: it mints the performance scaled inflation to the
// treasury and sends the rewards Merkle root across the bridge. Inflation is
// minted before the message is sent and a failed dispatch does not undo it.
// Mint, enqueue and event deposit commit separately; once inflation is minted
// later failures are logged, not returned. Only storage failures before the
// mint are returned as errors.
func (e *Engine) OnEraEnd(era EraIndex) (outcome EraOutcome, err error) {
	logger := log.Rewards.With().Uint32("era", uint32(era)).Logger()
	if session, ok := e.deps.Eras.EraToSessionStart(era); ok {
		logger = logger.With().Uint32("session_start", uint32(session)).Logger()
	}
	defer func() {
		if err == nil {
			metricErasFinalized().AddWithLabel(1, map[string]string{"outcome": outcome.String()})
		}
	}()

	utils, found, err := e.GenerateEraRewardsUtils(era, nil)
	if err != nil {
		return EraSkipped, err
	}
	if !found || utils.TotalPoints.IsZero() {
		logger.Warn().Msg("no reward points in era, skipping inflation and dispatch")
		return EraSkipped, nil
	}

	inflation, err := e.CalculateScaledInflation(era, e.cfg.EraInflation)
	if err != nil {
		return EraSkipped, err
	}
	if err := e.deps.Minter.Mint(e.cfg.TreasuryAccount, inflation); err != nil {
		logger.Error().Err(err).
			Str("amount", inflation.Dec()).
			Stringer("treasury", e.cfg.TreasuryAccount).
			Msg("failed to mint era inflation, rewards message not sent")
		return EraMintFailed, nil
	}
	metricInflationMinted().Add(int64(min(inflation.Uint64(), uint64(1<<63-1))))
	logger.Info().Str("amount", inflation.Dec()).Str("total_points", utils.TotalPoints.Dec()).Msg("era inflation minted")

	e.deps.Weights.RegisterExtraWeight(eraEndWeight(len(utils.Leaves)))

	return e.dispatch(era, utils, inflation)
}

func (e *Engine) dispatch(era EraIndex, utils EraRewardsUtils, inflation *uint256.Int) (EraOutcome, error) {
	logger := log.Rewards.With().Uint32("era", uint32(era)).Stringer("root", utils.MerkleRoot).Logger()

	if e.deps.Sender == nil {
		logger.Warn().Msg("no rewards sender configured, message not sent")
		return EraDispatchSkipped, nil
	}
	msg, ok := e.deps.Sender.Build(utils.MerkleRoot)
	if !ok {
		return EraDispatchSkipped, nil
	}

	ticket, err := e.deps.Sender.Validate(msg)
	if err != nil {
		metricMessages().AddWithLabel(1, map[string]string{"status": "invalid"})
		logger.Error().Err(err).Str("destination", msg.Destination.Hex()).Msg("rewards message failed validation")
		return EraDispatchFailed, nil
	}
	id, err := e.deps.Sender.Deliver(ticket)
	if err != nil {
		metricMessages().AddWithLabel(1, map[string]string{"status": "failed"})
		logger.Error().Err(err).Str("destination", msg.Destination.Hex()).Msg("rewards message delivery failed")
		return EraDispatchFailed, nil
	}
	metricMessages().AddWithLabel(1, map[string]string{"status": "sent"})

	event := RewardsMessageSent{
		MessageID:         id,
		EraIndex:          era,
		TotalPoints:       utils.TotalPoints,
		InflationAmount:   inflation,
		RewardsMerkleRoot: utils.MerkleRoot,
	}
	if err := e.deps.Events.Deposit(event); err != nil {
		logger.Error().Err(err).Stringer("message_id", id).Msg("failed to deposit rewards message event")
		return EraRewardsSent, nil
	}
	logger.Info().Stringer("message_id", id).Msg("rewards message sent")
	return EraRewardsSent, nil
}

func eraEndWeight(leaves int) uint64 {
	return safemath.SaturatingAdd(uint64(eraEndBaseWeight),
		safemath.SaturatingMul(uint64(eraEndPerLeafWeight), uint64(leaves)))
}
