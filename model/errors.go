package model

import (
	"github.com/jsphweid/tieline/pitch"
	"github.com/pkg/errors"
)

// Error kinds returned by the codec. Callers match with errors.Is.
var (
	ErrInvalidNote             = pitch.ErrInvalidNote
	ErrUnrepresentableDuration = errors.New("unrepresentable duration")
	ErrEmptyTieChain           = errors.New("empty tie chain")

	// ErrTiePitchMismatch also matches ErrInvalidNote.
	ErrTiePitchMismatch = &kindError{msg: "tie chain mixes pitches", kind: ErrInvalidNote}

	ErrLineExists       = errors.New("line already exists")
	ErrLineDoesNotExist = errors.New("line does not exist")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
