package model

import (
	"github.com/jsphweid/tieline/pitch"
	"github.com/jsphweid/tieline/rational"
	"github.com/pkg/errors"
)

type Label string

const (
	LabelNote         Label = "Note"
	LabelRest         Label = "Rest"
	LabelPlayableNote Label = "PlayableNote"
)

// Element is the closed set of values a Record decodes into.
type Element interface {
	element()
}

func (SymbolicNote) element() {}
func (PlayableNote) element() {}

// RestMarker is a stored rest. It carries a written length like a note.
type RestMarker struct {
	Length uint64
	Dot    int
}

func (RestMarker) element() {}

func (r RestMarker) Note() SymbolicNote {
	return SymbolicNote{Pitch: pitch.Rest, Length: r.Length, Dot: r.Dot}
}

// Record is the flat persisted form of an Element.
type Record struct {
	Label  Label  `json:"label" dynamodbav:"label"`
	Name   string `json:"name,omitempty" dynamodbav:"name,omitempty"`
	Length uint64 `json:"length,omitempty" dynamodbav:"length,omitempty"`
	Dot    int    `json:"dot,omitempty" dynamodbav:"dot,omitempty"`
	Tied   bool   `json:"tied,omitempty" dynamodbav:"tied,omitempty"`
	Num    uint64 `json:"num,omitempty" dynamodbav:"num,omitempty"`
	Den    uint64 `json:"den,omitempty" dynamodbav:"den,omitempty"`
}

func RecordOf(e Element) Record {
	switch v := e.(type) {
	case SymbolicNote:
		if v.IsRest() {
			return Record{Label: LabelRest, Length: v.Length, Dot: v.Dot}
		}
		return Record{Label: LabelNote, Name: v.Pitch, Length: v.Length, Dot: v.Dot, Tied: v.TiedToNext}
	case RestMarker:
		return Record{Label: LabelRest, Length: v.Length, Dot: v.Dot}
	case PlayableNote:
		return Record{Label: LabelPlayableNote, Name: v.Pitch, Num: v.Duration.Num, Den: v.Duration.Den}
	}
	panic("model: unknown element")
}

func (r Record) Element() (Element, error) {
	switch r.Label {
	case LabelNote:
		n := SymbolicNote{Pitch: r.Name, Length: r.Length, Dot: r.Dot, TiedToNext: r.Tied}
		return n, n.Validate()
	case LabelRest:
		m := RestMarker{Length: r.Length, Dot: r.Dot}
		return m, m.Note().Validate()
	case LabelPlayableNote:
		if r.Den == 0 {
			return nil, errors.Wrap(ErrInvalidNote, "playable note without duration")
		}
		return PlayableNote{Pitch: r.Name, Duration: rational.New(r.Num, r.Den)}, nil
	}
	return nil, errors.Wrapf(ErrInvalidNote, "unknown label %q", r.Label)
}

// SymbolicNote decodes records that belong in a notation line.
func (r Record) SymbolicNote() (SymbolicNote, error) {
	e, err := r.Element()
	if err != nil {
		return SymbolicNote{}, err
	}
	switch v := e.(type) {
	case SymbolicNote:
		return v, nil
	case RestMarker:
		return v.Note(), nil
	}
	return SymbolicNote{}, errors.Wrapf(ErrInvalidNote, "%s record in a notation line", r.Label)
}
