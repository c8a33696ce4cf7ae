package midi

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	return Read(bytes.NewReader(dat))
}

func Read(r io.Reader) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, errors.Errorf("error parsing midi file... %v", r)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

// resolution is the ticks per quarter note of a metric file.
func resolution(s *smf.SMF) (uint16, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return 0, errors.Errorf("unsupported time format %v", s.TimeFormat)
	}
	return ticks.Resolution(), nil
}
