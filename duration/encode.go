package duration

import (
	"math/bits"

	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/rational"
	"github.com/pkg/errors"
)

// Encode returns the exact length of a written note in ticks:
// ticksPerBeat * 4/L * (2 - 2^-D), kept as the fraction
// ticksPerBeat*4*(2^(D+1)-1) / (L*2^D).
func Encode(n model.SymbolicNote, ticksPerBeat uint64) (rational.Rational, error) {
	if err := n.ValidateValue(); err != nil {
		return rational.Zero, err
	}
	if ticksPerBeat == 0 {
		return rational.Zero, errors.Wrap(model.ErrInvalidNote, "ticks per beat must be positive")
	}
	dots := uint64(1) << uint(n.Dot)
	hi, num := bits.Mul64(ticksPerBeat, 4*(dots*2-1))
	if hi != 0 {
		return rational.Zero, errors.Wrapf(model.ErrUnrepresentableDuration, "%d ticks per beat overflows %v", ticksPerBeat, n)
	}
	den := n.Length * dots
	return rational.New(num, den), nil
}

// Beats is Encode in quarter note beats.
func Beats(n model.SymbolicNote) (rational.Rational, error) {
	return Encode(n, 1)
}
