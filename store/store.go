package store

import (
	"context"

	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/tie"
	"github.com/pkg/errors"
)

// Store persists lines as ordered notes with tie links between them.
type Store interface {
	tie.LineQuery

	AddLine(ctx context.Context, name string, header model.Header, notes []model.SymbolicNote) (model.Line, error)
	FindLine(ctx context.Context, name string) (model.Line, error)
	Notes(ctx context.Context, name string) ([]model.SymbolicNote, error)
	DropLine(ctx context.Context, name string) error
	Lines(ctx context.Context) ([]model.Line, error)
	Close() error
}

// CheckLine validates notes before they are stored. Ties must join notes
// of the same pitch; a tie on the final note is dropped later by readers.
func CheckLine(notes []model.SymbolicNote) error {
	for i, n := range notes {
		if err := n.Validate(); err != nil {
			return errors.WithMessagef(err, "note %d", i)
		}
		if n.TiedToNext && i+1 < len(notes) && notes[i+1].Pitch != n.Pitch {
			return errors.Wrapf(model.ErrTiePitchMismatch, "note %d %s tied to %s", i, n.Pitch, notes[i+1].Pitch)
		}
	}
	return nil
}
