package crypto

const (
	HashSize        = 32
	ValidatorIDSize = 32
	AccountIDSize   = 32
)
