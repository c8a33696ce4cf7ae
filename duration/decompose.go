package duration

import (
	"math"

	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/rational"
	"github.com/pkg/errors"
)

// Epsilon is how close a floating point remainder must get to zero.
const Epsilon = 1e-6

// MaxBeats bounds the durations the decomposer accepts, and with it the
// number of components it can return.
const MaxBeats = 1 << 16

// Decompose splits a beat duration into alphabet values, largest first.
// For a binary ladder the greedy choice is the minimal one.
func Decompose(beats rational.Rational, a Alphabet) ([]rational.Rational, error) {
	if beats.IsZero() {
		return nil, errors.Wrap(model.ErrUnrepresentableDuration, "duration must be positive")
	}
	if beats.Cmp(rational.Int(MaxBeats)) > 0 {
		return nil, errors.Wrapf(model.ErrUnrepresentableDuration, "%v beats is longer than %d", beats, MaxBeats)
	}
	if len(a) == 0 {
		return nil, errors.Wrap(model.ErrUnrepresentableDuration, "empty alphabet")
	}

	var res []rational.Rational
	remainder := beats
	for !remainder.IsZero() {
		v, ok := largestFit(a, remainder)
		if !ok {
			return nil, errors.Wrapf(model.ErrUnrepresentableDuration,
				"%v beats leaves %v below the smallest value %v", beats, remainder, a.Smallest())
		}
		res = append(res, v)
		remainder, _ = remainder.Sub(v)
	}
	return res, nil
}

// DecomposeFloat is Decompose for measured durations. The remainder only
// has to come within Epsilon of zero.
func DecomposeFloat(beats float64, a Alphabet) ([]rational.Rational, error) {
	if math.IsNaN(beats) || math.IsInf(beats, 0) || beats <= Epsilon {
		return nil, errors.Wrapf(model.ErrUnrepresentableDuration, "duration %v must be positive", beats)
	}
	if beats > MaxBeats {
		return nil, errors.Wrapf(model.ErrUnrepresentableDuration, "%v beats is longer than %d", beats, MaxBeats)
	}
	if len(a) == 0 {
		return nil, errors.Wrap(model.ErrUnrepresentableDuration, "empty alphabet")
	}

	var res []rational.Rational
	remainder := beats
	for remainder > Epsilon {
		found := false
		for _, v := range a {
			if v.Float64() <= remainder+Epsilon {
				next := remainder - v.Float64()
				if next == remainder {
					return nil, errors.Wrapf(model.ErrUnrepresentableDuration, "%v beats is too coarse to subtract %v", beats, v)
				}
				res = append(res, v)
				remainder = next
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Wrapf(model.ErrUnrepresentableDuration,
				"%v beats leaves %v below the smallest value %v", beats, remainder, a.Smallest())
		}
	}
	return res, nil
}

func largestFit(a Alphabet, remainder rational.Rational) (rational.Rational, bool) {
	for _, v := range a {
		if v.Cmp(remainder) <= 0 {
			return v, true
		}
	}
	return rational.Zero, false
}

// Sum adds components back up.
func Sum(components []rational.Rational) rational.Rational {
	total := rational.Zero
	for _, c := range components {
		total = total.Add(c)
	}
	return total
}
