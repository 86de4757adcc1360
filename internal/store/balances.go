package store

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/pkg/db"
)

// Balances stores account balances and the total issuance of the mint sink.
type Balances struct {
	db db.KVStore
}

func NewBalances(db db.KVStore) *Balances {
	return &Balances{db: db}
}

// Balance returns the balance of an account, zero if never credited.
func (b *Balances) Balance(account crypto.AccountID) (*uint256.Int, error) {
	balance := new(uint256.Int)
	if _, err := getRLP(b.db, makeKey(prefixBalance, account[:]), balance); err != nil {
		return nil, fmt.Errorf("get balance of %s: %w", account, err)
	}
	return balance, nil
}

// TotalIssuance returns the sum of every minted amount.
func (b *Balances) TotalIssuance() (*uint256.Int, error) {
	issuance := new(uint256.Int)
	if _, err := getRLP(b.db, []byte{prefixIssuance}, issuance); err != nil {
		return nil, fmt.Errorf("get total issuance: %w", err)
	}
	return issuance, nil
}

// PutBalance atomically stores an account balance and the total issuance.
func (b *Balances) PutBalance(account crypto.AccountID, balance, issuance *uint256.Int) error {
	batch := b.db.NewBatch()
	defer batch.Close()

	if err := putRLP(batch, makeKey(prefixBalance, account[:]), balance); err != nil {
		return fmt.Errorf("store balance of %s: %w", account, err)
	}
	if err := putRLP(batch, []byte{prefixIssuance}, issuance); err != nil {
		return fmt.Errorf("store total issuance: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return nil
}
