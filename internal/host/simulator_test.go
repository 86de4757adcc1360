package host

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/erarewards/internal/bridge"
	"github.com/eigerco/erarewards/internal/config"
	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/mint"
	"github.com/eigerco/erarewards/internal/rewards"
	"github.com/eigerco/erarewards/internal/store"
	"github.com/eigerco/erarewards/pkg/db/pebble"
)

var treasury = crypto.AccountID{0x7e}

type chain struct {
	*Simulator
	engine   *rewards.Engine
	ledger   *mint.Ledger
	outbound *store.Outbound
	events   *store.Events
}

func engineConfig() config.Config {
	cfg := config.Default()
	cfg.TreasuryAccount = treasury
	cfg.DestinationContract = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	return cfg
}

func newChain(t *testing.T, simCfg Config, cfg config.Config) *chain {
	t.Helper()
	kv, err := pebble.NewMemKVStore()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, kv.Close()) })

	sim, err := New(simCfg)
	require.NoError(t, err)

	c := &chain{
		Simulator: sim,
		ledger:    mint.NewLedger(store.NewBalances(kv)),
		outbound:  store.NewOutbound(kv),
		events:    store.NewEvents(kv),
	}
	c.engine, err = rewards.NewEngine(cfg, store.NewRewards(kv), rewards.Dependencies{
		Eras:       sim,
		Validators: sim,
		Liveness:   sim,
		Whitelist:  sim,
		Minter:     c.ledger,
		Events:     rewards.NewStoreEventSink(c.events),
		Sender:     bridge.NewDispatcher(cfg.DestinationContract, cfg.GasLimit, bridge.NewQueueSender(c.outbound)),
	})
	require.NoError(t, err)
	sim.Attach(c.engine)
	return c
}

func schedule(sessions, blocks uint32) Config {
	cfg := DefaultConfig()
	cfg.SessionsPerEra = sessions
	cfg.BlocksPerSession = blocks
	return cfg
}

func TestRunEraLiveness(t *testing.T) {
	simCfg := schedule(1, 8)
	simCfg.Idle = []int{2}
	simCfg.Offline = []int{3}
	c := newChain(t, simCfg, engineConfig())

	report, err := c.RunEra()
	require.NoError(t, err)
	assert.Equal(t, EraReport{
		Era:          0,
		StartSession: 0,
		Sessions:     1,
		Blocks:       8,
		Outcome:      rewards.EraRewardsSent,
	}, report)

	points, found, err := c.engine.EraRewardPoints(0)
	require.NoError(t, err)
	require.True(t, found)

	// fair share 2, capped at 3 credited blocks; the 2560 point pool pays 256
	// per validator for online validators and 64 for offline ones
	expected := []uint32{832, 832, 256, 64}
	for i, want := range expected {
		got, ok := points.Points(SimulatedValidator(i))
		require.True(t, ok, "validator %d has no points", i)
		assert.Equal(t, want, got, "validator %d", i)
	}
	assert.Equal(t, uint64(1984), points.Total.Uint64())

	// 8 of 600 expected blocks: 21% of the era inflation
	balance, err := c.ledger.Balance(treasury)
	require.NoError(t, err)
	assert.Equal(t, uint64(210_000), balance.Uint64())

	pending, err := c.outbound.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	msg, err := bridge.DecodeMessage(pending[0].Data)
	require.NoError(t, err)
	root, err := bridge.DecodeSubmitRewards(msg.Payload)
	require.NoError(t, err)

	utils, _, err := c.engine.GenerateEraRewardsUtils(0, nil)
	require.NoError(t, err)
	assert.Equal(t, utils.MerkleRoot, root)

	for i := range expected {
		proof, found, err := c.engine.GenerateRewardsMerkleProof(SimulatedValidator(i), 0)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, root, proof.Root)
		assert.True(t, c.engine.VerifyRewardsMerkleProof(proof))
	}
}

func TestRunEraValidatorsWithoutSlot(t *testing.T) {
	// two blocks for four validators: only 0 and 1 get an authoring slot
	c := newChain(t, schedule(1, 2), engineConfig())

	report, err := c.RunEra()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), report.Blocks)

	points, found, err := c.engine.EraRewardPoints(0)
	require.NoError(t, err)
	require.True(t, found)

	// pool of max(2, 4) * 320 = 1280 pays 128 to every online validator,
	// authors add 60% of one credited block
	expected := []uint32{320, 320, 128, 128}
	for i, want := range expected {
		got, ok := points.Points(SimulatedValidator(i))
		require.True(t, ok, "validator %d has no points", i)
		assert.Equal(t, want, got, "validator %d", i)
	}
	assert.Equal(t, uint64(896), points.Total.Uint64())
}

func TestRunExcludesWhitelisted(t *testing.T) {
	simCfg := schedule(2, 12)
	simCfg.Whitelisted = 1
	c := newChain(t, simCfg, engineConfig())

	_, err := c.RunEra()
	require.NoError(t, err)

	points, found, err := c.engine.EraRewardPoints(0)
	require.NoError(t, err)
	require.True(t, found)

	_, ok := points.Points(SimulatedValidator(0))
	assert.False(t, ok)
	assert.Len(t, points.Individual, 3)
}

func TestRunPrunesHistory(t *testing.T) {
	cfg := engineConfig()
	cfg.HistoryDepth = 2
	c := newChain(t, schedule(1, 4), cfg)

	reports, err := c.Run(4)
	require.NoError(t, err)
	require.Len(t, reports, 4)
	for i, r := range reports {
		assert.Equal(t, rewards.EraIndex(i), r.Era)
		assert.Equal(t, rewards.SessionIndex(i), r.StartSession)
		assert.Equal(t, rewards.EraRewardsSent, r.Outcome)
	}

	for era, retained := range []bool{false, false, true, true} {
		_, found, err := c.engine.EraRewardPoints(rewards.EraIndex(era))
		require.NoError(t, err)
		assert.Equal(t, retained, found, "era %d", era)

		produced, err := c.engine.BlocksProducedInEra(rewards.EraIndex(era))
		require.NoError(t, err)
		if retained {
			assert.Equal(t, uint32(4), produced)
		} else {
			assert.Zero(t, produced)
		}
	}

	pending, err := c.outbound.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 4)

	records, err := c.events.List()
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestActiveEraStart(t *testing.T) {
	c := newChain(t, schedule(1, 2), engineConfig())

	require.NoError(t, c.StartEra())
	assert.Nil(t, c.ActiveEra().Start)

	_, ok, err := c.ProduceBlock()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, c.ActiveEra().Start)
	assert.Equal(t, DefaultGenesisTime, *c.ActiveEra().Start)

	_, _, err = c.ProduceBlock()
	require.NoError(t, err)
	assert.Equal(t, DefaultGenesisTime, *c.ActiveEra().Start)

	require.NoError(t, c.EndSession())
	_, err = c.EndEra()
	require.NoError(t, err)

	require.NoError(t, c.StartEra())
	info := c.ActiveEra()
	assert.Equal(t, rewards.EraIndex(1), info.Index)
	assert.Nil(t, info.Start)

	_, _, err = c.ProduceBlock()
	require.NoError(t, err)
	assert.Equal(t, DefaultGenesisTime+2*6000, *c.ActiveEra().Start)

	start, ok := c.EraToSessionStart(1)
	assert.True(t, ok)
	assert.Equal(t, rewards.SessionIndex(1), start)
	_, ok = c.EraToSessionStart(5)
	assert.False(t, ok)
}

func TestLiveness(t *testing.T) {
	c := newChain(t, schedule(1, 1), engineConfig())
	v0, v1 := SimulatedValidator(0), SimulatedValidator(1)

	require.NoError(t, c.StartEra())
	assert.False(t, c.IsOnline(v0))

	author, ok, err := c.ProduceBlock()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v0, author)
	assert.True(t, c.IsOnline(v0))

	assert.False(t, c.IsOnline(v1))
	require.NoError(t, c.RecordHeartbeat(v1))
	assert.True(t, c.IsOnline(v1))

	err = c.RecordHeartbeat(crypto.ValidatorID{0xff})
	assert.ErrorIs(t, err, ErrUnknownValidator)

	require.NoError(t, c.EndSession())
	assert.False(t, c.IsOnline(v0))
	assert.False(t, c.IsOnline(v1))
	assert.Equal(t, rewards.SessionIndex(1), c.Session())
}

func TestProduceBlockWithoutAuthors(t *testing.T) {
	simCfg := schedule(1, 3)
	simCfg.Validators = 2
	simCfg.Offline = []int{0}
	simCfg.Idle = []int{1}
	c := newChain(t, simCfg, engineConfig())

	report, err := c.RunEra()
	require.NoError(t, err)
	assert.Zero(t, report.Blocks)

	// the idle validator still earns liveness points
	points, found, err := c.engine.EraRewardPoints(0)
	require.NoError(t, err)
	require.True(t, found)
	got, ok := points.Points(SimulatedValidator(1))
	require.True(t, ok)
	// pool of max(0, 2) * 320 = 640; 40% split over two validators
	assert.Equal(t, uint32(128), got)
}

func TestSimulatorErrors(t *testing.T) {
	sim, err := New(schedule(1, 1))
	require.NoError(t, err)

	assert.ErrorIs(t, sim.StartEra(), ErrNoEngine)
	_, _, err = sim.ProduceBlock()
	assert.ErrorIs(t, err, ErrNoEngine)

	c := newChain(t, schedule(1, 1), engineConfig())
	_, _, err = c.ProduceBlock()
	assert.ErrorIs(t, err, ErrNoActiveEra)
	_, err = c.EndEra()
	assert.ErrorIs(t, err, ErrNoActiveEra)

	require.NoError(t, c.StartEra())
	assert.ErrorIs(t, c.StartEra(), ErrEraInProgress)
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no_validators", func(c *Config) { c.Validators = 0 }},
		{"too_many_whitelisted", func(c *Config) { c.Whitelisted = 5 }},
		{"no_sessions", func(c *Config) { c.SessionsPerEra = 0 }},
		{"no_blocks", func(c *Config) { c.BlocksPerSession = 0 }},
		{"offline_out_of_range", func(c *Config) { c.Offline = []int{4} }},
		{"idle_negative", func(c *Config) { c.Idle = []int{-1} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidSetup)
		})
	}
}

func TestSimulatedValidatorsAreDistinct(t *testing.T) {
	sim, err := New(DefaultConfig())
	require.NoError(t, err)
	set := crypto.NewValidatorSet(sim.Validators())
	assert.Len(t, set, 4)
	assert.Equal(t, SimulatedValidator(2), sim.Validators()[2])
}
