package pitch

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Rest is the reserved pitch name for a rest. It never maps to a number.
const Rest = "R"

// ErrInvalidNote is the note level error kind. model re-exports it.
var ErrInvalidNote = errors.New("invalid note")

// ErrInvalidPitch also matches ErrInvalidNote.
var ErrInvalidPitch error = &pitchError{}

type pitchError struct{}

func (*pitchError) Error() string { return "invalid pitch" }

func (*pitchError) Unwrap() error { return ErrInvalidNote }

var stepSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// sharps, like pretty_midi and most MIDI tooling
var names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func IsRest(name string) bool {
	return name == Rest
}

// ToMidiNumber converts a name like "C4", "Eb3" or "F#-1" to a MIDI key
// number where C4 is 60.
func ToMidiNumber(name string) (uint8, error) {
	if IsRest(name) {
		return 0, errors.Wrap(ErrInvalidPitch, "rest has no midi number")
	}
	if len(name) < 2 {
		return 0, errors.Wrapf(ErrInvalidPitch, "%q", name)
	}

	semitone, ok := stepSemitones[strings.ToUpper(name[:1])[0]]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidPitch, "%q: unknown step", name)
	}

	i := 1
	for ; i < len(name); i++ {
		switch name[i] {
		case '#':
			semitone++
			continue
		case 'b':
			semitone--
			continue
		}
		break
	}

	octave, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPitch, "%q: bad octave", name)
	}

	n := (octave+1)*12 + semitone
	if n < 0 || n > 127 {
		return 0, errors.Wrapf(ErrInvalidPitch, "%q: out of midi range", name)
	}
	return uint8(n), nil
}

// FromMidiNumber is the inverse of ToMidiNumber, spelling accidentals as sharps.
func FromMidiNumber(n uint8) (string, error) {
	if n > 127 {
		return "", errors.Wrapf(ErrInvalidPitch, "midi number %d", n)
	}
	return names[int(n)%12] + strconv.Itoa(int(n)/12-1), nil
}

// Assemble builds a pitch name from MusicXML style parts. Only whole
// semitone alterations are accepted.
func Assemble(step string, alter int, octave int) (string, error) {
	if len(step) != 1 {
		return "", errors.Wrapf(ErrInvalidPitch, "step %q", step)
	}
	step = strings.ToUpper(step)
	if _, ok := stepSemitones[step[0]]; !ok {
		return "", errors.Wrapf(ErrInvalidPitch, "step %q", step)
	}

	var accidental string
	switch alter {
	case -1:
		accidental = "b"
	case 0:
	case 1:
		accidental = "#"
	default:
		return "", errors.Wrapf(ErrInvalidPitch, "alteration %d", alter)
	}
	return step + accidental + strconv.Itoa(octave), nil
}

// Valid reports whether name is either a rest or a convertible pitch.
func Valid(name string) bool {
	if IsRest(name) {
		return true
	}
	_, err := ToMidiNumber(name)
	return err == nil
}
