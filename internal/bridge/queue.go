package bridge

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/store"
	"github.com/eigerco/erarewards/pkg/log"
)

// QueueSender appends messages to the persistent outbound queue, from which
// an external relayer picks them up. Deliver is safe for concurrent use.
type QueueSender struct {
	mu       sync.Mutex
	outbound *store.Outbound
}

func NewQueueSender(outbound *store.Outbound) *QueueSender {
	return &QueueSender{outbound: outbound}
}

func (q *QueueSender) Validate(m Message) (Ticket, error) {
	if err := validateMessage(m); err != nil {
		return Ticket{}, err
	}
	encoded, err := m.Encode()
	if err != nil {
		return Ticket{}, fmt.Errorf("encode message: %w", err)
	}
	nonce, err := q.outbound.NextNonce()
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{Message: m, Nonce: nonce, Encoded: encoded}, nil
}

// Deliver enqueues the ticket. A ticket issued before another message was
// enqueued is rejected with ErrStaleTicket.
func (q *QueueSender) Deliver(t Ticket) (MessageID, error) {
	// the nonce check and the enqueue must not interleave with another
	// delivery, or both would write the same queue slot
	q.mu.Lock()
	defer q.mu.Unlock()

	nonce, err := q.outbound.NextNonce()
	if err != nil {
		return MessageID{}, err
	}
	if nonce != t.Nonce {
		return MessageID{}, fmt.Errorf("%w: nonce %d, next %d", ErrStaleTicket, t.Nonce, nonce)
	}

	id := messageID(t.Nonce, t.Encoded)
	if err := q.outbound.Enqueue(store.OutboundMessage{Nonce: t.Nonce, ID: id, Data: t.Encoded}); err != nil {
		return MessageID{}, err
	}
	log.Bridge.Debug().Uint64("nonce", t.Nonce).Stringer("id", id).Msg("message queued")
	return id, nil
}

func messageID(nonce uint64, encoded []byte) MessageID {
	buf := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(encoded)), nonce)
	return crypto.HashData(append(buf, encoded...))
}
