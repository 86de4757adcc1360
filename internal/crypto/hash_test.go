package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccakData(t *testing.T) {
	// keccak256("") as used by Ethereum
	expected := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	h := KeccakData(nil)
	assert.Equal(t, expected, hex.EncodeToString(h[:]))
}

func TestHashData(t *testing.T) {
	// blake2b-256("")
	expected := "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"
	h := HashData(nil)
	assert.Equal(t, expected, hex.EncodeToString(h[:]))
}

func TestHasherByName(t *testing.T) {
	h, err := HasherByName("Keccak")
	require.NoError(t, err)
	assert.Equal(t, KeccakData([]byte("x")), h([]byte("x")))

	h, err = HasherByName("blake2b")
	require.NoError(t, err)
	assert.Equal(t, HashData([]byte("x")), h([]byte("x")))

	_, err = HasherByName("sha1")
	assert.Error(t, err)
}

func TestHashTextRoundTrip(t *testing.T) {
	h := KeccakData([]byte("rewards"))
	text, err := h.MarshalText()
	require.NoError(t, err)

	var decoded Hash
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, h, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("0x1234")))
}

func TestValidatorIDOrdering(t *testing.T) {
	a := ValidatorID{1}
	b := ValidatorID{2}
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Zero(t, a.Compare(a))
}

func TestParseIDs(t *testing.T) {
	id := ValidatorID{0xaa, 0xbb}
	parsed, err := ParseValidatorID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseValidatorID("0xzz")
	assert.Error(t, err)

	acc, err := ParseAccountID("0x" + hex.EncodeToString(make([]byte, 32)))
	require.NoError(t, err)
	assert.True(t, acc.IsZero())

	_, err = ParseAccountID("0x01")
	assert.Error(t, err)
}

func TestValidatorSet(t *testing.T) {
	set := NewValidatorSet([]ValidatorID{{1}, {2}})
	assert.True(t, set.Has(ValidatorID{1}))
	assert.False(t, set.Has(ValidatorID{3}))
}
