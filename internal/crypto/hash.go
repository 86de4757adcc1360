package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

type Hash [HashSize]byte

// Hasher is the 256-bit hashing primitive shared by leaf and node hashing.
type Hasher func(data []byte) Hash

const (
	HasherKeccak  = "keccak"
	HasherBlake2b = "blake2b"
)

func HashData(data []byte) Hash {
	hash := blake2b.Sum256(data)
	return hash
}

// KeccakData hashes the input data using Keccak-256
func KeccakData(data []byte) Hash {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	hashed := hash.Sum(nil)

	var result Hash
	copy(result[:], hashed)
	return result
}

// HasherByName resolves a configured hasher name.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case HasherKeccak, "keccak256":
		return KeccakData, nil
	case HasherBlake2b, "blake2b256":
		return HashData, nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", name)
	}
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// MarshalText encodes the hash as 0x-prefixed hex.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	b, err := StringToHex(string(text))
	if err != nil {
		return err
	}
	if len(b) != HashSize {
		return fmt.Errorf("invalid hash length %d", len(b))
	}
	copy(h[:], b)
	return nil
}

// StringToHex converts a hex string to a byte slice
func StringToHex(s string) ([]byte, error) {
	// Remove 0x prefix if present
	s = strings.TrimPrefix(s, "0x")

	bytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex string %q: %w", s, err)
	}
	return bytes, nil
}
