package store

import (
	"fmt"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/pkg/db"
)

// OutboundMessage is a queued cross-chain message awaiting pickup by a relayer.
type OutboundMessage struct {
	Nonce uint64
	ID    crypto.Hash
	Data  []byte
}

// Outbound is the persistent queue of outgoing messages.
type Outbound struct {
	db db.KVStore
}

func NewOutbound(db db.KVStore) *Outbound {
	return &Outbound{db: db}
}

// NextNonce returns the nonce the next enqueued message receives.
func (o *Outbound) NextNonce() (uint64, error) {
	var nonce uint64
	if _, err := getRLP(o.db, []byte{prefixOutboundNonce}, &nonce); err != nil {
		return 0, fmt.Errorf("get outbound nonce: %w", err)
	}
	return nonce, nil
}

// Enqueue stores msg and advances the nonce past msg.Nonce.
func (o *Outbound) Enqueue(msg OutboundMessage) error {
	batch := o.db.NewBatch()
	defer batch.Close()

	if err := putRLP(batch, makeKey(prefixOutbound, be64(msg.Nonce)), msg); err != nil {
		return fmt.Errorf("store outbound message %d: %w", msg.Nonce, err)
	}
	if err := putRLP(batch, []byte{prefixOutboundNonce}, msg.Nonce+1); err != nil {
		return fmt.Errorf("store outbound nonce: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return nil
}

// Pending lists queued messages in nonce order.
func (o *Outbound) Pending() ([]OutboundMessage, error) {
	var msgs []OutboundMessage
	err := forEachPrefix(o.db, []byte{prefixOutbound}, func(_, value []byte) error {
		var msg OutboundMessage
		if err := rlpDecode(value, &msg); err != nil {
			return err
		}
		msgs = append(msgs, msg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list outbound messages: %w", err)
	}
	return msgs, nil
}

// Remove drops a message once a relayer has picked it up.
func (o *Outbound) Remove(nonce uint64) error {
	return o.db.Delete(makeKey(prefixOutbound, be64(nonce)))
}
