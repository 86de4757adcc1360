package rewards

import (
	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/bridge"
	"github.com/eigerco/erarewards/internal/crypto"
)

// EraSource reports the era and session schedule of the host.
type EraSource interface {
	ActiveEra() ActiveEraInfo
	EraToSessionStart(era EraIndex) (SessionIndex, bool)
}

// ValidatorSource returns the validator set of the current session.
type ValidatorSource interface {
	Validators() []crypto.ValidatorID
}

// LivenessOracle reports whether a validator was online in the current
// session, either by authoring a block or by sending a heartbeat.
type LivenessOracle interface {
	IsOnline(validator crypto.ValidatorID) bool
}

// WhitelistSource returns the validators excluded from rewards.
type WhitelistSource interface {
	WhitelistedValidators() []crypto.ValidatorID
}

// Minter credits newly issued tokens to an account.
type Minter interface {
	Mint(account crypto.AccountID, amount *uint256.Int) error
}

// RewardsSender builds and sends the cross-chain rewards message.
// *bridge.Dispatcher implements it.
type RewardsSender interface {
	Build(root crypto.Hash) (bridge.Message, bool)
	Validate(bridge.Message) (bridge.Ticket, error)
	Deliver(bridge.Ticket) (bridge.MessageID, error)
}

// EventSink records engine events for indexers.
type EventSink interface {
	Deposit(Event) error
}

// WeightMeter accounts the extra execution weight of era finalization.
type WeightMeter interface {
	RegisterExtraWeight(units uint64)
}

// EraObserver is notified by the era manager at era boundaries.
type EraObserver interface {
	OnEraStart(era EraIndex, sessionStart SessionIndex, externalIndex uint32) error
	OnEraEnd(era EraIndex) (EraOutcome, error)
}

var _ EraObserver = (*Engine)(nil)
