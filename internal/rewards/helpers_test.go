package rewards

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/erarewards/internal/bridge"
	"github.com/eigerco/erarewards/internal/config"
	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/store"
	"github.com/eigerco/erarewards/pkg/db"
	"github.com/eigerco/erarewards/pkg/db/pebble"
)

// fakeHost is a static host for engine tests.
type fakeHost struct {
	era         EraIndex
	validators  []crypto.ValidatorID
	whitelisted []crypto.ValidatorID
	offline     crypto.ValidatorSet
}

func (h *fakeHost) ActiveEra() ActiveEraInfo { return ActiveEraInfo{Index: h.era} }

func (h *fakeHost) EraToSessionStart(era EraIndex) (SessionIndex, bool) {
	return SessionIndex(era) * 6, true
}

func (h *fakeHost) Validators() []crypto.ValidatorID { return h.validators }

func (h *fakeHost) WhitelistedValidators() []crypto.ValidatorID { return h.whitelisted }

func (h *fakeHost) IsOnline(v crypto.ValidatorID) bool { return !h.offline.Has(v) }

type mockMinter struct {
	mock.Mock
}

func (m *mockMinter) Mint(account crypto.AccountID, amount *uint256.Int) error {
	return m.Called(account, amount).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Build(root crypto.Hash) (bridge.Message, bool) {
	args := m.Called(root)
	return args.Get(0).(bridge.Message), args.Bool(1)
}

func (m *mockSender) Validate(msg bridge.Message) (bridge.Ticket, error) {
	args := m.Called(msg)
	return args.Get(0).(bridge.Ticket), args.Error(1)
}

func (m *mockSender) Deliver(t bridge.Ticket) (bridge.MessageID, error) {
	args := m.Called(t)
	return args.Get(0).(bridge.MessageID), args.Error(1)
}

type testEngine struct {
	*Engine
	host   *fakeHost
	kv     db.KVStore
	minter *mockMinter
	events *store.Events
	weight *MeteredWeightMeter
}

func validatorIDs(n int) []crypto.ValidatorID {
	ids := make([]crypto.ValidatorID, n)
	for i := range ids {
		ids[i] = crypto.ValidatorID{byte(i + 1)}
	}
	return ids
}

func newTestEngine(t *testing.T, cfg config.Config, sender RewardsSender) *testEngine {
	t.Helper()
	kv, err := pebble.NewMemKVStore()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, kv.Close()) })

	te := &testEngine{
		host:   &fakeHost{validators: validatorIDs(4), offline: crypto.ValidatorSet{}},
		kv:     kv,
		minter: new(mockMinter),
		events: store.NewEvents(kv),
		weight: &MeteredWeightMeter{},
	}
	deps := Dependencies{
		Eras:       te.host,
		Validators: te.host,
		Liveness:   te.host,
		Whitelist:  te.host,
		Minter:     te.minter,
		Events:     NewStoreEventSink(te.events),
		Weights:    te.weight,
	}
	if sender != nil {
		deps.Sender = sender
	}
	te.Engine, err = NewEngine(cfg, store.NewRewards(kv), deps)
	require.NoError(t, err)
	return te
}

func (te *testEngine) authorBlocks(t *testing.T, v crypto.ValidatorID, n int) {
	t.Helper()
	for range n {
		require.NoError(t, te.NoteBlockAuthor(v))
	}
}

func (te *testEngine) eraPoints(t *testing.T, era EraIndex) EraRewardPoints {
	t.Helper()
	points, found, err := te.EraRewardPoints(era)
	require.NoError(t, err)
	require.True(t, found, "era %d has no ledger entry", era)
	return points
}

func sumPoints(p EraRewardPoints) *uint256.Int {
	sum := new(uint256.Int)
	for _, entry := range p.Individual {
		sum.AddUint64(sum, uint64(entry.Points))
	}
	return sum
}
