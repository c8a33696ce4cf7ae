package midi

import (
	"context"
	"time"

	"github.com/jsphweid/tieline/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Program is the General MIDI patch a line is played with (marimba).
const Program = 12

type Sender func(msg midi.Message) error

// OpenOut opens an out port of the registered driver by name, or the first
// port when name is empty.
func OpenOut(name string) (Sender, func() error, error) {
	var out drivers.Out
	var err error
	if name == "" {
		out, err = midi.OutPort(0)
	} else {
		out, err = midi.FindOutPort(name)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "can't find midi out port %q", name)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "can't open midi out port %q", name)
	}
	return send, out.Close, nil
}

// Play sends the notes in real time, sleeping through each duration. It
// stops early with the context's error when ctx is done.
func Play(ctx context.Context, send Sender, notes []model.PlayableNote, ticksPerBeat uint64, bpm float64) error {
	if err := send(midi.ProgramChange(0, Program)); err != nil {
		return errors.Wrap(err, "program change")
	}
	defer send(midi.ControlChange(0, midi.AllNotesOff, midi.Off))

	for i, n := range notes {
		wait := time.Duration(n.Seconds(ticksPerBeat, bpm) * float64(time.Second))
		log := logrus.WithFields(logrus.Fields{"index": i, "pitch": n.Pitch, "wait": wait})
		if n.IsRest() {
			log.Debug("rest")
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		key, err := n.MidiNumber()
		if err != nil {
			return errors.WithMessagef(err, "note %d", i)
		}
		log.Debug("note")
		if err := send(midi.NoteOn(0, key, Velocity)); err != nil {
			return errors.Wrap(err, "note on")
		}
		err = sleep(ctx, wait)
		if offErr := send(midi.NoteOffVelocity(0, key, OffVelocity)); offErr != nil && err == nil {
			err = errors.Wrap(offErr, "note off")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
