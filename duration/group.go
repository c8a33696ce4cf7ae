package duration

import (
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/pitch"
	"github.com/jsphweid/tieline/rational"
	"github.com/pkg/errors"
)

// Group turns decomposed components into written notes. A run of values
// that each halve the one before is a dotted note; anything else starts a
// new note tied to the previous one. Rests are never tied.
func Group(components []rational.Rational, name string) ([]model.SymbolicNote, error) {
	if len(components) == 0 {
		return nil, errors.Wrap(model.ErrUnrepresentableDuration, "nothing to group")
	}
	rest := pitch.IsRest(name)
	half := rational.New(1, 2)

	var res []model.SymbolicNote
	var cur model.SymbolicNote
	var prev rational.Rational
	for i, c := range components {
		if i > 0 && c.Equal(prev.Mul(half)) && cur.Dot < model.MaxDots {
			cur.Dot++
			prev = c
			continue
		}
		if i > 0 {
			cur.TiedToNext = !rest
			res = append(res, cur)
		}
		length, err := lengthOf(c)
		if err != nil {
			return nil, err
		}
		cur = model.SymbolicNote{Pitch: name, Length: length}
		prev = c
	}
	res = append(res, cur)

	for _, n := range res {
		if err := n.Validate(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// lengthOf is 4/beats, which must land on a supported note value.
func lengthOf(beats rational.Rational) (uint64, error) {
	b := beats.Reduce()
	if b.IsZero() || (4*b.Den)%b.Num != 0 {
		return 0, errors.Wrapf(model.ErrUnrepresentableDuration, "%v beats is not a note value", beats)
	}
	l := 4 * b.Den / b.Num
	if !model.ValidLength(l) {
		return 0, errors.Wrapf(model.ErrUnrepresentableDuration, "%v beats is not a note value", beats)
	}
	return l, nil
}

// Notate decomposes a measured duration and groups it in one step.
func Notate(p model.PerformanceNote, ts model.TimeSignature) ([]model.SymbolicNote, error) {
	components, err := DecomposeFloat(p.BeatDuration, AlphabetFor(ts.Denominator))
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", p.Pitch)
	}
	return Group(components, p.Pitch)
}
