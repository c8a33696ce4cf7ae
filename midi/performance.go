package midi

import (
	"math"

	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/pitch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Performance is a monophonic take: measured notes and rests in beats plus
// the meter they were played in.
type Performance struct {
	Notes         []model.PerformanceNote
	TimeSignature model.TimeSignature
}

// ReadPerformance takes the first track that has notes. Overlapping notes
// are cut where the next one starts and gaps become rests. The last time
// signature in the file wins, 4/4 if there is none.
func ReadPerformance(s *smf.SMF) (Performance, error) {
	res := Performance{TimeSignature: model.CommonTime}
	ticksPerBeat, err := resolution(s)
	if err != nil {
		return res, err
	}

	var track smf.Track
	for _, tr := range s.Tracks {
		for _, ev := range tr {
			var num, denom, clocks, demisemiquavers uint8
			if ev.Message.GetMetaTimeSig(&num, &denom, &clocks, &demisemiquavers) {
				res.TimeSignature = model.TimeSignature{Numerator: num, Denominator: denom}
			}
		}
		if track == nil && hasNotes(tr) {
			track = tr
		}
	}
	if track == nil {
		return res, errors.New("midi file has no notes")
	}

	beats := func(ticks int64) float64 {
		return float64(ticks) / float64(ticksPerBeat)
	}

	var absTicks, start, lastEnd int64
	var sounding bool
	var key uint8
	end := func() error {
		if absTicks > start {
			name, err := pitch.FromMidiNumber(key)
			if err != nil {
				return err
			}
			res.Notes = append(res.Notes, model.PerformanceNote{Pitch: name, BeatDuration: beats(absTicks - start)})
		}
		sounding = false
		lastEnd = absTicks
		return nil
	}

	for _, ev := range track {
		absTicks += int64(ev.Delta)
		var ch, k, vel uint8
		switch {
		case ev.Message.GetNoteOn(&ch, &k, &vel) && vel > 0:
			if sounding {
				logrus.WithFields(logrus.Fields{"key": key, "next": k}).Debug("overlapping notes, cutting the first")
				if err := end(); err != nil {
					return res, err
				}
			}
			if absTicks > lastEnd && len(res.Notes) > 0 {
				res.Notes = append(res.Notes, model.PerformanceNote{Pitch: pitch.Rest, BeatDuration: beats(absTicks - lastEnd)})
			}
			sounding, key, start = true, k, absTicks
		case ev.Message.GetNoteOff(&ch, &k, &vel), ev.Message.GetNoteOn(&ch, &k, &vel):
			if sounding && k == key {
				if err := end(); err != nil {
					return res, err
				}
			}
		}
	}
	if sounding {
		if err := end(); err != nil {
			return res, err
		}
	}
	return res, nil
}

func hasNotes(tr smf.Track) bool {
	for _, ev := range tr {
		var ch, k, vel uint8
		if ev.Message.GetNoteOn(&ch, &k, &vel) && vel > 0 {
			return true
		}
	}
	return false
}

// Quantized snaps every duration to a multiple of step. Notes that snap to
// nothing are dropped and neighbouring rests are merged.
func (p Performance) Quantized(step float64) Performance {
	res := Performance{TimeSignature: p.TimeSignature}
	for _, n := range p.Notes {
		n.BeatDuration = math.Round(n.BeatDuration/step) * step
		if n.BeatDuration == 0 {
			continue
		}
		last := len(res.Notes) - 1
		if pitch.IsRest(n.Pitch) && last >= 0 && pitch.IsRest(res.Notes[last].Pitch) {
			res.Notes[last].BeatDuration += n.BeatDuration
			continue
		}
		res.Notes = append(res.Notes, n)
	}
	return res
}
