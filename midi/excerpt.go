package midi

import (
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Excerpt cuts every track down to the first maxNotes notes starting at
// ticksOffset, or every note after it when maxNotes is not positive. Meta and controller events before the offset are kept but
// pulled to the start so the excerpt plays with the right setup.
func Excerpt(mf *smf.SMF, ticksOffset uint64, maxNotes int) *smf.SMF {
	if maxNotes <= 0 {
		maxNotes = math.MaxInt
	}
	var res smf.SMF
	res.TimeFormat = mf.TimeFormat

	for _, track := range mf.Tracks {
		var newTrack smf.Track
		var absTicks uint64
		prev := ticksOffset
		started := 0
		open := make(map[uint8]bool)
	TrackEventLoop:
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var ch, key, vel uint8
			switch {
			case evt.Message.Is(midi.NoteOnMsg), evt.Message.Is(midi.NoteOffMsg):
				if absTicks < ticksOffset {
					continue
				}
				isStart := evt.Message.GetNoteOn(&ch, &key, &vel) && vel > 0
				if isStart && started >= maxNotes {
					if len(open) == 0 {
						break TrackEventLoop
					}
					continue
				}
				if !isStart {
					evt.Message.GetNoteOff(&ch, &key, &vel)
					if !open[key] {
						continue
					}
					delete(open, key)
				} else {
					open[key] = true
					started++
				}
				evt.Delta = uint32(absTicks - prev)
				prev = absTicks
				newTrack = append(newTrack, evt)
				if started >= maxNotes && len(open) == 0 {
					break TrackEventLoop
				}
			case isEndOfTrack(evt.Message):
			default:
				if absTicks < ticksOffset {
					evt.Delta = 0
				} else {
					evt.Delta = uint32(absTicks - prev)
					prev = absTicks
				}
				newTrack = append(newTrack, evt)
			}
		}
		newTrack.Close(0)
		res.Tracks = append(res.Tracks, newTrack)
	}

	return &res
}

func isEndOfTrack(m smf.Message) bool {
	return len(m) >= 2 && m[0] == 0xFF && m[1] == 0x2F
}
