package model

import (
	"fmt"

	"github.com/jsphweid/tieline/pitch"
	"github.com/jsphweid/tieline/rational"
	"github.com/pkg/errors"
)

const MaxDots = 2

// Lengths is every supported note value, as a denominator of a whole note.
var Lengths = []uint64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024}

// SymbolicNote is a note as written: a power of two length (4 = quarter),
// a dot count and whether it is tied to the note after it.
type SymbolicNote struct {
	Pitch      string `json:"pitch"`
	Length     uint64 `json:"length"`
	Dot        int    `json:"dot"`
	TiedToNext bool   `json:"tied_to_next"`
}

func NewNote(pitch string, length uint64, dot int, tied bool) (SymbolicNote, error) {
	n := SymbolicNote{Pitch: pitch, Length: length, Dot: dot, TiedToNext: tied}
	if err := n.Validate(); err != nil {
		return SymbolicNote{}, err
	}
	return n, nil
}

func (n SymbolicNote) IsRest() bool {
	return pitch.IsRest(n.Pitch)
}

// Validate checks length, dot and the rest/tie combination. Higher dot
// counts are real notation but unsupported here.
func (n SymbolicNote) Validate() error {
	if err := n.ValidateValue(); err != nil {
		return err
	}
	if n.IsRest() {
		if n.TiedToNext {
			return errors.Wrap(ErrInvalidNote, "rests cannot be tied")
		}
		return nil
	}
	if _, err := pitch.ToMidiNumber(n.Pitch); err != nil {
		return err
	}
	return nil
}

// ValidateValue only checks the written duration.
func (n SymbolicNote) ValidateValue() error {
	if !ValidLength(n.Length) {
		return errors.Wrapf(ErrInvalidNote, "length %d is not a supported power of two", n.Length)
	}
	if n.Dot < 0 || n.Dot > MaxDots {
		return errors.Wrapf(ErrInvalidNote, "dot count %d outside 0..%d", n.Dot, MaxDots)
	}
	return nil
}

func (n SymbolicNote) String() string {
	s := fmt.Sprintf("%s/%d", n.Pitch, n.Length)
	for i := 0; i < n.Dot; i++ {
		s += "."
	}
	if n.TiedToNext {
		s += "~"
	}
	return s
}

func ValidLength(l uint64) bool {
	for _, v := range Lengths {
		if v == l {
			return true
		}
	}
	return false
}

// PlayableNote is a note with ties resolved: a pitch and one absolute
// duration in ticks.
type PlayableNote struct {
	Pitch    string            `json:"pitch"`
	Duration rational.Rational `json:"duration"`
}

func (p PlayableNote) IsRest() bool {
	return pitch.IsRest(p.Pitch)
}

func (p PlayableNote) MidiNumber() (uint8, error) {
	key, err := pitch.ToMidiNumber(p.Pitch)
	if err != nil {
		return 0, err
	}
	return key, nil
}

// Beats converts the tick duration to quarter note beats.
func (p PlayableNote) Beats(ticksPerBeat uint64) rational.Rational {
	return p.Duration.Mul(rational.New(1, ticksPerBeat))
}

func (p PlayableNote) Seconds(ticksPerBeat uint64, bpm float64) float64 {
	return p.Beats(ticksPerBeat).Float64() * 60 / bpm
}

// PerformanceNote is what a performance source hands over: a pitch and a
// measured duration in beats.
type PerformanceNote struct {
	Pitch        string  `json:"pitch"`
	BeatDuration float64 `json:"beat_duration"`
}

type TimeSignature struct {
	Numerator   uint8 `json:"numerator"`
	Denominator uint8 `json:"denominator"`
}

var CommonTime = TimeSignature{Numerator: 4, Denominator: 4}
