package rewards

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/bridge"
	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/store"
)

// Event is emitted by the engine for indexers.
type Event interface {
	EventName() string
}

// RewardsMessageSent is emitted once the rewards root of an era was handed
// to the bridge.
type RewardsMessageSent struct {
	MessageID         bridge.MessageID
	EraIndex          EraIndex
	TotalPoints       *uint256.Int
	InflationAmount   *uint256.Int
	RewardsMerkleRoot crypto.Hash
}

func (RewardsMessageSent) EventName() string { return "RewardsMessageSent" }

// StoreEventSink persists events in the event log of the store.
type StoreEventSink struct {
	events *store.Events
}

func NewStoreEventSink(events *store.Events) *StoreEventSink {
	return &StoreEventSink{events: events}
}

func (s *StoreEventSink) Deposit(ev Event) error {
	data, err := rlp.EncodeToBytes(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.EventName(), err)
	}
	if _, err := s.events.Append(ev.EventName(), data); err != nil {
		return fmt.Errorf("store %s event: %w", ev.EventName(), err)
	}
	return nil
}

// DecodeEvent restores an event from its stored record.
func DecodeEvent(record store.EventRecord) (Event, error) {
	switch record.Name {
	case RewardsMessageSent{}.EventName():
		var ev RewardsMessageSent
		if err := rlp.DecodeBytes(record.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s event: %w", record.Name, err)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, record.Name)
	}
}
