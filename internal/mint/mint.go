package mint

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/safemath"
	"github.com/eigerco/erarewards/internal/store"
)

var ErrIssuanceOverflow = errors.New("mint: total issuance overflows 128 bits")

// Ledger credits minted tokens to accounts and tracks total issuance.
type Ledger struct {
	balances *store.Balances
}

func NewLedger(balances *store.Balances) *Ledger {
	return &Ledger{balances: balances}
}

// Mint credits amount to account. Nothing is written when either the
// balance or the total issuance would exceed 128 bits.
func (l *Ledger) Mint(account crypto.AccountID, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}

	balance, err := l.balances.Balance(account)
	if err != nil {
		return err
	}
	issuance, err := l.balances.TotalIssuance()
	if err != nil {
		return err
	}

	newIssuance, overflow := new(uint256.Int).AddOverflow(issuance, amount)
	if overflow || newIssuance.Gt(safemath.MaxUint128) {
		return fmt.Errorf("%w: issuance %s plus %s", ErrIssuanceOverflow, issuance.Dec(), amount.Dec())
	}
	// a balance never exceeds the issuance it is part of
	newBalance := new(uint256.Int).Add(balance, amount)

	return l.balances.PutBalance(account, newBalance, newIssuance)
}

func (l *Ledger) Balance(account crypto.AccountID) (*uint256.Int, error) {
	return l.balances.Balance(account)
}

func (l *Ledger) TotalIssuance() (*uint256.Int, error) {
	return l.balances.TotalIssuance()
}
