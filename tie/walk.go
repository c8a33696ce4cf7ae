package tie

import (
	"context"

	"github.com/jsphweid/tieline/model"
	"github.com/pkg/errors"
)

// LineQuery is the part of a line store the reducer reads from.
type LineQuery interface {
	FirstNote(ctx context.Context, line string) (model.StoredNote, bool, error)
	NextNote(ctx context.Context, n model.StoredNote) (model.StoredNote, bool, error)
	HasOutgoingTie(ctx context.Context, n model.StoredNote) (bool, error)
}

// Walk follows a stored line from its first note and calls yield with each
// resolved playable note until the line ends or yield returns false.
func Walk(ctx context.Context, q LineQuery, line string, ticksPerBeat uint64, yield func(model.PlayableNote) bool) error {
	cur, ok, err := q.FirstNote(ctx, line)
	if err != nil {
		return err
	}

	var chain []model.SymbolicNote
	var ties []bool
	hasTie := func(i int) bool { return ties[i] }
	flush := func() (bool, error) {
		p, _, err := Reduce(chain, hasTie, ticksPerBeat)
		if err != nil {
			return false, err
		}
		chain, ties = chain[:0], ties[:0]
		return yield(p), nil
	}

	for ok {
		tied, err := q.HasOutgoingTie(ctx, cur)
		if err != nil {
			return err
		}
		chain = append(chain, cur.Note)
		ties = append(ties, tied)

		if !tied {
			more, err := flush()
			if err != nil {
				return errors.WithMessagef(err, "line %s note %d", line, cur.Index)
			}
			if !more {
				return nil
			}
		}

		if cur, ok, err = q.NextNote(ctx, cur); err != nil {
			return err
		}
	}

	if len(chain) > 0 {
		if _, err := flush(); err != nil {
			return errors.WithMessagef(err, "line %s", line)
		}
	}
	return nil
}
