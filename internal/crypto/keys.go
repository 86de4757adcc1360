package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// ValidatorID identifies a validator by its 32 byte account key.
type ValidatorID [ValidatorIDSize]byte

// AccountID identifies an account able to hold minted tokens.
type AccountID [AccountIDSize]byte

// Compare orders validator ids by their raw bytes. It is the canonical
// ordering for ledger iteration and Merkle leaves.
func (v ValidatorID) Compare(other ValidatorID) int {
	return bytes.Compare(v[:], other[:])
}

func (v ValidatorID) String() string {
	return "0x" + hex.EncodeToString(v[:])
}

func (v ValidatorID) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *ValidatorID) UnmarshalText(text []byte) error {
	id, err := ParseValidatorID(string(text))
	if err != nil {
		return err
	}
	*v = id
	return nil
}

func ParseValidatorID(s string) (ValidatorID, error) {
	var id ValidatorID
	b, err := StringToHex(s)
	if err != nil {
		return id, err
	}
	if len(b) != ValidatorIDSize {
		return id, fmt.Errorf("invalid validator id length %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	b, err := StringToHex(s)
	if err != nil {
		return id, err
	}
	if len(b) != AccountIDSize {
		return id, fmt.Errorf("invalid account id length %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ValidatorSet is a membership set of validator ids.
type ValidatorSet map[ValidatorID]struct{}

func NewValidatorSet(ids []ValidatorID) ValidatorSet {
	set := make(ValidatorSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (set ValidatorSet) Add(id ValidatorID) {
	set[id] = struct{}{}
}

func (set ValidatorSet) Has(id ValidatorID) bool {
	_, ok := set[id]
	return ok
}
