package tie

import (
	"github.com/jsphweid/tieline/duration"
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/rational"
	"github.com/pkg/errors"
)

// HasTie reports whether chain[i] is tied to the note after it.
type HasTie func(i int) bool

// Flags reads ties straight off the notes.
func Flags(chain []model.SymbolicNote) HasTie {
	return func(i int) bool {
		return chain[i].TiedToNext
	}
}

// Reduce contracts the tie chain at the front of chain into one playable
// note and returns how many notes it consumed. The sum is exact. A tie on
// the last note of chain is treated as the end of the line.
func Reduce(chain []model.SymbolicNote, hasTie HasTie, ticksPerBeat uint64) (model.PlayableNote, int, error) {
	if len(chain) == 0 {
		return model.PlayableNote{}, 0, model.ErrEmptyTieChain
	}

	first := chain[0].Pitch
	total := rational.Zero
	for i, n := range chain {
		if err := n.Validate(); err != nil {
			return model.PlayableNote{}, 0, errors.WithMessagef(err, "note %d", i)
		}
		if n.Pitch != first {
			return model.PlayableNote{}, 0, errors.Wrapf(model.ErrTiePitchMismatch, "note %d is %s, chain started on %s", i, n.Pitch, first)
		}
		tied := hasTie(i)
		if tied && n.IsRest() {
			return model.PlayableNote{}, 0, errors.Wrapf(model.ErrInvalidNote, "note %d: rests cannot be tied", i)
		}

		d, err := duration.Encode(n, ticksPerBeat)
		if err != nil {
			return model.PlayableNote{}, 0, errors.WithMessagef(err, "note %d", i)
		}
		total = total.Add(d)

		if !tied {
			return model.PlayableNote{Pitch: first, Duration: total}, i + 1, nil
		}
	}
	return model.PlayableNote{Pitch: first, Duration: total}, len(chain), nil
}

// ReduceAll resolves every tie chain of a line.
func ReduceAll(notes []model.SymbolicNote, ticksPerBeat uint64) ([]model.PlayableNote, error) {
	var res []model.PlayableNote
	for start := 0; start < len(notes); {
		chain := notes[start:]
		p, n, err := Reduce(chain, Flags(chain), ticksPerBeat)
		if err != nil {
			return nil, errors.WithMessagef(err, "chain at note %d", start)
		}
		res = append(res, p)
		start += n
	}
	return res, nil
}
