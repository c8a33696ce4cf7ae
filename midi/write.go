package midi

import (
	"io"
	"math"
	"os"

	"github.com/jsphweid/tieline/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	Velocity    = 100
	OffVelocity = 127
)

type WriteOptions struct {
	TicksPerBeat  uint64
	Bpm           float64
	TimeSignature model.TimeSignature
}

// NewSMF lays out playable notes on a single track. Rests only add delta
// time; tick durations are rounded to whole ticks.
func NewSMF(notes []model.PlayableNote, opts WriteOptions) (*smf.SMF, error) {
	if opts.TicksPerBeat == 0 || opts.TicksPerBeat > math.MaxUint16 {
		return nil, errors.Errorf("ticks per beat %d does not fit a midi header", opts.TicksPerBeat)
	}
	ts := opts.TimeSignature
	if ts.Numerator == 0 || ts.Denominator == 0 {
		ts = model.CommonTime
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.TicksPerBeat)

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(ts.Numerator, ts.Denominator))
	if opts.Bpm > 0 {
		tr.Add(0, smf.MetaTempo(opts.Bpm))
	}

	var elapsed uint32
	for i, n := range notes {
		ticks := uint32(math.Round(n.Duration.Float64()))
		if !n.Duration.IsInt() {
			logrus.WithFields(logrus.Fields{"index": i, "ticks": n.Duration, "rounded": ticks}).Debug("rounding to whole ticks")
		}
		if n.IsRest() {
			elapsed += ticks
			continue
		}
		key, err := n.MidiNumber()
		if err != nil {
			return nil, errors.WithMessagef(err, "note %d", i)
		}
		tr.Add(elapsed, midi.NoteOn(0, key, Velocity))
		tr.Add(ticks, midi.NoteOffVelocity(0, key, OffVelocity))
		elapsed = 0
	}
	tr.Close(elapsed)

	if err := s.Add(tr); err != nil {
		return nil, errors.Wrap(err, "adding track")
	}
	return s, nil
}

func WriteLine(w io.Writer, notes []model.PlayableNote, opts WriteOptions) error {
	s, err := NewSMF(notes, opts)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing midi")
	}
	return nil
}

func SaveLine(path string, notes []model.PlayableNote, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "couldn't create %s", path)
	}
	if err := WriteLine(f, notes, opts); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
