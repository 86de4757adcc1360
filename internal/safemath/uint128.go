package safemath

import "github.com/holiman/uint256"

// MaxUint128 is the largest value an unsigned 128-bit quantity may hold.
var MaxUint128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// Clamp128 returns a copy of v bounded to MaxUint128. A nil v is zero.
func Clamp128(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	if v.Gt(MaxUint128) {
		return MaxUint128.Clone()
	}
	return v.Clone()
}

// SaturatingAdd128 returns a+b clamped to MaxUint128.
func SaturatingAdd128(a, b *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(Clamp128(a), Clamp128(b))
	if overflow {
		return MaxUint128.Clone()
	}
	return Clamp128(sum)
}

// MulDiv128 returns floor(x*y/d) clamped to MaxUint128. A zero divisor yields zero.
func MulDiv128(x, y, d *uint256.Int) *uint256.Int {
	if d == nil || d.IsZero() {
		return new(uint256.Int)
	}
	q, overflow := new(uint256.Int).MulDivOverflow(Clamp128(x), Clamp128(y), d)
	if overflow {
		return MaxUint128.Clone()
	}
	return Clamp128(q)
}
