package rational

import (
	"fmt"
	"math/bits"
)

// Rational is an exact non-negative fraction. Durations in this module
// only ever have denominators of the form L*2^D, so sums stay small.
type Rational struct {
	Num uint64 `json:"num"`
	Den uint64 `json:"den"`
}

var Zero = Rational{Num: 0, Den: 1}

// New panics on a zero denominator; callers pass constants or validated values.
func New(num, den uint64) Rational {
	if den == 0 {
		panic("rational: zero denominator")
	}
	return Rational{Num: num, Den: den}
}

func Int(n uint64) Rational {
	return Rational{Num: n, Den: 1}
}

func (r Rational) IsZero() bool {
	return r.Num == 0
}

// Add sums two fractions. When one denominator is a multiple of the
// other the smaller fraction is scaled up; otherwise it falls back to the
// least common denominator.
func (r Rational) Add(o Rational) Rational {
	r, o = r.norm(), o.norm()
	switch {
	case r.Den == o.Den:
		return Rational{Num: r.Num + o.Num, Den: r.Den}
	case r.Den%o.Den == 0:
		return Rational{Num: r.Num + o.Num*(r.Den/o.Den), Den: r.Den}
	case o.Den%r.Den == 0:
		return Rational{Num: r.Num*(o.Den/r.Den) + o.Num, Den: o.Den}
	}
	l := lcm(r.Den, o.Den)
	return Rational{Num: r.Num*(l/r.Den) + o.Num*(l/o.Den), Den: l}
}

// Sub returns r-o. ok is false when o > r, since Rational cannot go negative.
func (r Rational) Sub(o Rational) (res Rational, ok bool) {
	if r.Cmp(o) < 0 {
		return Zero, false
	}
	r, o = r.norm(), o.norm()
	l := lcm(r.Den, o.Den)
	return Rational{Num: r.Num*(l/r.Den) - o.Num*(l/o.Den), Den: l}.Reduce(), true
}

func (r Rational) Mul(o Rational) Rational {
	return Rational{Num: r.Num * o.Num, Den: r.norm().Den * o.norm().Den}.Reduce()
}

// Cmp compares by cross multiplication in 128 bits.
func (r Rational) Cmp(o Rational) int {
	r, o = r.norm(), o.norm()
	lhi, llo := bits.Mul64(r.Num, o.Den)
	rhi, rlo := bits.Mul64(o.Num, r.Den)
	switch {
	case lhi < rhi, lhi == rhi && llo < rlo:
		return -1
	case lhi == rhi && llo == rlo:
		return 0
	}
	return 1
}

func (r Rational) Equal(o Rational) bool {
	return r.Cmp(o) == 0
}

// Reduce divides out the gcd. Not needed for correctness, only readability.
func (r Rational) Reduce() Rational {
	r = r.norm()
	if r.Num == 0 {
		return Zero
	}
	g := gcd(r.Num, r.Den)
	return Rational{Num: r.Num / g, Den: r.Den / g}
}

func (r Rational) Float64() float64 {
	r = r.norm()
	return float64(r.Num) / float64(r.Den)
}

// IsInt reports whether the fraction has no remainder.
func (r Rational) IsInt() bool {
	r = r.norm()
	return r.Num%r.Den == 0
}

func (r Rational) String() string {
	r = r.norm()
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// the zero value Rational{} reads as 0/1
func (r Rational) norm() Rational {
	if r.Den == 0 {
		return Rational{Num: r.Num, Den: 1}
	}
	return r
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b uint64) uint64 {
	return a / gcd(a, b) * b
}
