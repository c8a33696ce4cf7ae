package musicxml

import (
	"math"

	"github.com/jsphweid/tieline/duration"
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/pitch"
	"github.com/jsphweid/tieline/rational"
	"github.com/pkg/errors"
)

// Lengths maps note type names to length denominators. A breve (0.5) is
// read but cannot become a SymbolicNote.
var Lengths = map[string]float64{
	"1024th":  1024,
	"512th":   512,
	"256th":   256,
	"128th":   128,
	"64th":    64,
	"32nd":    32,
	"16th":    16,
	"eighth":  8,
	"quarter": 4,
	"half":    2,
	"whole":   1,
	"breve":   0.5,
}

// PartNotes is one part flattened into a monophonic line.
type PartNotes struct {
	ID    string
	Name  string
	Notes []model.SymbolicNote
}

// Lines extracts the notes of every part in document order.
func (s *Score) Lines() ([]PartNotes, error) {
	var res []PartNotes
	for _, p := range s.Parts {
		notes, err := p.SymbolicNotes()
		if err != nil {
			return nil, errors.WithMessagef(err, "part %s", p.ID)
		}
		res = append(res, PartNotes{ID: p.ID, Name: s.PartName(p.ID), Notes: notes})
	}
	return res, nil
}

func (p Part) SymbolicNotes() ([]model.SymbolicNote, error) {
	var res []model.SymbolicNote
	divisions := 0
	for _, m := range p.Measures {
		if m.Attributes != nil && m.Attributes.Divisions != 0 {
			divisions = m.Attributes.Divisions
		}
		for i, n := range m.Notes {
			notes, err := n.symbolic(divisions)
			if err != nil {
				return nil, errors.WithMessagef(err, "measure %s note %d", m.Number, i+1)
			}
			res = append(res, notes...)
		}
	}
	return res, nil
}

// symbolic applies the field extraction rules to one note. Only
// untyped rests (whole measure rests) can expand to more than one note.
func (n Note) symbolic(divisions int) ([]model.SymbolicNote, error) {
	if n.Chord != nil {
		return nil, errors.Wrap(model.ErrInvalidNote, "chords are not supported")
	}
	if n.Grace != nil {
		return nil, errors.Wrap(model.ErrInvalidNote, "grace notes are not supported")
	}

	name, err := n.pitchName()
	if err != nil {
		return nil, err
	}

	if n.Type == "" && n.Rest != nil {
		return measureRest(n.Duration, divisions)
	}

	length, ok := Lengths[n.Type]
	if !ok {
		return nil, errors.Wrapf(model.ErrInvalidNote, "unknown note type %q", n.Type)
	}
	if length < 1 {
		return nil, errors.Wrapf(model.ErrInvalidNote, "%s notes are not supported", n.Type)
	}

	res, err := model.NewNote(name, uint64(length), len(n.Dots), n.TieStart())
	if err != nil {
		return nil, err
	}
	return []model.SymbolicNote{res}, nil
}

func (n Note) pitchName() (string, error) {
	if n.Rest != nil {
		return pitch.Rest, nil
	}
	if n.Pitch == nil {
		return "", errors.Wrap(model.ErrInvalidNote, "note without pitch or rest")
	}
	alter := n.Pitch.Alter
	if alter != math.Trunc(alter) {
		return "", errors.Wrapf(model.ErrInvalidNote, "microtonal alteration %v", alter)
	}
	return pitch.Assemble(n.Pitch.Step, int(alter), n.Pitch.Octave)
}

func measureRest(ticks, divisions int) ([]model.SymbolicNote, error) {
	if divisions <= 0 || ticks <= 0 {
		return nil, errors.Wrap(model.ErrInvalidNote, "rest has neither a type nor a usable duration")
	}
	beats := rational.New(uint64(ticks), uint64(divisions))
	components, err := duration.Decompose(beats, duration.Simple)
	if err != nil {
		return nil, err
	}
	return duration.Group(components, pitch.Rest)
}
