package safemath

import "math/bits"

// Perbill is a fraction in parts per billion. Values above PerbillOne are
// treated as PerbillOne by every operation.
type Perbill uint32

const PerbillOne Perbill = 1_000_000_000

// PerbillFromPercent converts a whole percentage, saturating at 100%.
func PerbillFromPercent(percent uint32) Perbill {
	if percent >= 100 {
		return PerbillOne
	}
	return Perbill(percent * 10_000_000)
}

// PerbillFromRational returns floor(num/den) as a Perbill, clamped to [0, 1].
// A zero denominator yields PerbillOne.
func PerbillFromRational(num, den uint64) Perbill {
	if den == 0 || num >= den {
		return PerbillOne
	}
	hi, lo := bits.Mul64(num, uint64(PerbillOne))
	// num < den, so the quotient is below PerbillOne and hi < den.
	q, _ := bits.Div64(hi, lo, den)
	return Perbill(q)
}

func (p Perbill) clamp() Perbill {
	if p > PerbillOne {
		return PerbillOne
	}
	return p
}

// MulFloor returns floor(p * n).
func (p Perbill) MulFloor(n uint64) uint64 {
	hi, lo := bits.Mul64(uint64(p.clamp()), n)
	// p <= 10^9 keeps hi below the divisor.
	q, _ := bits.Div64(hi, lo, uint64(PerbillOne))
	return q
}

// SaturatingAdd returns p+q clamped to PerbillOne.
func (p Perbill) SaturatingAdd(q Perbill) Perbill {
	s := uint64(p.clamp()) + uint64(q.clamp())
	if s > uint64(PerbillOne) {
		return PerbillOne
	}
	return Perbill(s)
}

// SaturatingSub returns p-q clamped at zero.
func (p Perbill) SaturatingSub(q Perbill) Perbill {
	return SaturatingSub(p.clamp(), q.clamp())
}
