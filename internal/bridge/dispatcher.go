package bridge

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/pkg/log"
)

// Sender validates and delivers messages over some transport.
type Sender interface {
	Validate(Message) (Ticket, error)
	Deliver(Ticket) (MessageID, error)
}

// Dispatcher turns an era's Merkle root into a submitRewards call on the
// destination contract and hands it to a Sender.
type Dispatcher struct {
	destination common.Address
	gasLimit    uint64
	sender      Sender
}

func NewDispatcher(destination common.Address, gasLimit uint64, sender Sender) *Dispatcher {
	return &Dispatcher{destination: destination, gasLimit: gasLimit, sender: sender}
}

// Build returns false when no destination contract is configured.
func (d *Dispatcher) Build(root crypto.Hash) (Message, bool) {
	if d.destination == (common.Address{}) {
		log.Bridge.Warn().Msg("no destination contract configured, rewards message not built")
		return Message{}, false
	}
	payload, err := EncodeSubmitRewards(root)
	if err != nil {
		log.Bridge.Error().Err(err).Msg("failed to encode rewards payload")
		return Message{}, false
	}
	return Message{
		Destination: d.destination,
		Payload:     payload,
		GasLimit:    d.gasLimit,
	}, true
}

func (d *Dispatcher) Validate(m Message) (Ticket, error) {
	return d.sender.Validate(m)
}

func (d *Dispatcher) Deliver(t Ticket) (MessageID, error) {
	return d.sender.Deliver(t)
}
