package rewards

import (
	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/safemath"
)

// NoteBlockAuthor records one block authored by validator in the current
// session and active era. Both counters saturate.
func (e *Engine) NoteBlockAuthor(validator crypto.ValidatorID) error {
	era := e.activeEra()

	session, err := e.store.SessionBlocks(validator)
	if err != nil {
		return err
	}
	produced, err := e.store.EraBlocks(uint32(era))
	if err != nil {
		return err
	}
	return e.store.PutBlockCounts(uint32(era), validator,
		safemath.SaturatingAdd[uint32](session, 1),
		safemath.SaturatingAdd[uint32](produced, 1))
}

// SessionBlocks returns the blocks validator authored in the current session.
func (e *Engine) SessionBlocks(validator crypto.ValidatorID) (uint32, error) {
	return e.store.SessionBlocks(validator)
}

// BlocksProducedInEra returns the blocks produced during era.
func (e *Engine) BlocksProducedInEra(era EraIndex) (uint32, error) {
	return e.store.EraBlocks(uint32(era))
}
