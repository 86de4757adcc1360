package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/pkg/log"
)

// DefaultRelayTimeout bounds one delivery to the relayer.
const DefaultRelayTimeout = 10 * time.Second

// RelayClient is the transport used by RelaySender. *relay.Client satisfies it.
type RelayClient interface {
	Send(ctx context.Context, payload []byte) ([]byte, error)
}

// RelaySender delivers messages straight to an external relayer, which
// answers with the id it assigned to the message.
type RelaySender struct {
	client  RelayClient
	timeout time.Duration
}

func NewRelaySender(client RelayClient, timeout time.Duration) *RelaySender {
	if timeout <= 0 {
		timeout = DefaultRelayTimeout
	}
	return &RelaySender{client: client, timeout: timeout}
}

func (r *RelaySender) Validate(m Message) (Ticket, error) {
	if err := validateMessage(m); err != nil {
		return Ticket{}, err
	}
	encoded, err := m.Encode()
	if err != nil {
		return Ticket{}, fmt.Errorf("encode message: %w", err)
	}
	return Ticket{Message: m, Encoded: encoded}, nil
}

func (r *RelaySender) Deliver(t Ticket) (MessageID, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	resp, err := r.client.Send(ctx, t.Encoded)
	if err != nil {
		return MessageID{}, fmt.Errorf("relay message: %w", err)
	}
	if len(resp) != crypto.HashSize {
		return MessageID{}, fmt.Errorf("%w: %d bytes", ErrInvalidResponse, len(resp))
	}
	var id MessageID
	copy(id[:], resp)
	log.Bridge.Debug().Stringer("id", id).Msg("message relayed")
	return id, nil
}

// RelayHandler is the relayer side of RelaySender: it validates incoming
// messages and queues them through the wrapped sender, answering with the
// resulting message id. The relay server calls it from one goroutine per
// stream, so a ticket is validated and delivered under one lock.
type RelayHandler struct {
	mu     sync.Mutex
	sender Sender
}

func NewRelayHandler(sender Sender) *RelayHandler {
	return &RelayHandler{sender: sender}
}

func (h *RelayHandler) HandleMessage(_ context.Context, payload []byte) ([]byte, error) {
	m, err := DecodeMessage(payload)
	if err != nil {
		return nil, err
	}
	id, err := h.submit(m)
	if err != nil {
		return nil, err
	}

	event := log.Relay.Info().Stringer("id", id).Str("destination", m.Destination.Hex())
	if root, err := DecodeSubmitRewards(m.Payload); err == nil {
		event = event.Stringer("root", root)
	}
	event.Msg("message accepted")
	return id[:], nil
}

func (h *RelayHandler) submit(m Message) (MessageID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ticket, err := h.sender.Validate(m)
	if err != nil {
		return MessageID{}, err
	}
	return h.sender.Deliver(ticket)
}
