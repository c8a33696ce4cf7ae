package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/tieline/midi"
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/rational"
	"github.com/jsphweid/tieline/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

const duet = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <identification><creator type="composer">Anon</creator></identification>
  <part-list>
    <score-part id="P1"><part-name>Violin</part-name></score-part>
    <score-part id="P2"><part-name>Cello</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <note><pitch><step>C</step><octave>4</octave></pitch><type>quarter</type><tie type="start"/></note>
      <note><pitch><step>C</step><octave>4</octave></pitch><type>eighth</type><tie type="stop"/></note>
      <note><rest/><type>eighth</type></note>
      <note><pitch><step>D</step><octave>4</octave></pitch><type>half</type></note>
    </measure>
  </part>
  <part id="P2">
    <measure number="1">
      <note><pitch><step>C</step><octave>2</octave></pitch><type>whole</type></note>
    </measure>
  </part>
</score-partwise>`

func newSession(t *testing.T) (*Session, context.Context) {
	t.Helper()
	return New(store.NewMemoryStore(), 480), context.Background()
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLineName(t *testing.T) {
	assert.Equal(t, "duet", LineName("duet", "P1", 1))
	assert.Equal(t, "duet_P2", LineName("duet", "P2", 2))
}

func TestAddLinesFromXML(t *testing.T) {
	s, ctx := newSession(t)
	path := writeFile(t, "duet.xml", duet)

	lines, err := s.AddLinesFromXML(ctx, path, "duet")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "duet_P1", lines[0].Name)
	assert.Equal(t, 4, lines[0].NumNotes)
	assert.Equal(t, "Anon", lines[0].Header.Composer)
	assert.Equal(t, "duet_P2", lines[1].Name)

	notes, err := s.Store().Notes(ctx, "duet_P1")
	require.NoError(t, err)
	assert.Equal(t, model.SymbolicNote{Pitch: "C4", Length: 4, TiedToNext: true}, notes[0])

	_, err = s.AddLinesFromXML(ctx, path, "duet")
	assert.ErrorIs(t, err, model.ErrLineExists)
}

func TestAddScoreIsAllOrNothing(t *testing.T) {
	s, ctx := newSession(t)
	_, err := s.Store().AddLine(ctx, "duet_P2", model.Header{}, []model.SymbolicNote{{Pitch: "E4", Length: 4}})
	require.NoError(t, err)

	_, err = s.AddLinesFromXML(ctx, writeFile(t, "duet.xml", duet), "duet")
	assert.ErrorIs(t, err, model.ErrLineExists)

	_, err = s.Store().FindLine(ctx, "duet_P1")
	assert.ErrorIs(t, err, model.ErrLineDoesNotExist)
}

func TestPlayableLine(t *testing.T) {
	s, ctx := newSession(t)
	_, err := s.AddLinesFromXML(ctx, writeFile(t, "duet.xml", duet), "duet")
	require.NoError(t, err)

	notes, err := s.PlayableLine(ctx, "duet_P1", 120, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, "C4", notes[0].Pitch)
	assert.True(t, notes[0].Duration.Equal(rational.Int(720)))
	assert.InDelta(t, 0, notes[0].Start, 1e-9)
	assert.InDelta(t, 0.75, notes[0].End, 1e-9)

	assert.Equal(t, "D4", notes[1].Pitch)
	assert.True(t, notes[1].Duration.Equal(rational.Int(960)))
	assert.InDelta(t, 1.0, notes[1].Start, 1e-9)
	assert.InDelta(t, 2.0, notes[1].End, 1e-9)

	excerpt, err := s.PlayableLine(ctx, "duet_P1", 120, 1)
	require.NoError(t, err)
	assert.Len(t, excerpt, 1)

	_, err = s.PlayableLine(ctx, "nope", 120, 0)
	assert.ErrorIs(t, err, model.ErrLineDoesNotExist)

	_, err = s.PlayableLine(ctx, "duet_P1", 0, 0)
	assert.Error(t, err)
}

func TestPlayableNotesKeepsRests(t *testing.T) {
	s, ctx := newSession(t)
	_, err := s.AddLinesFromXML(ctx, writeFile(t, "duet.xml", duet), "duet")
	require.NoError(t, err)

	notes, err := s.PlayableNotes(ctx, "duet_P1", 0)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.True(t, notes[1].IsRest())
	assert.True(t, notes[1].Duration.Equal(rational.Int(240)))
}

func TestNotate(t *testing.T) {
	notes, err := Notate(midi.Performance{
		TimeSignature: model.CommonTime,
		Notes: []model.PerformanceNote{
			{Pitch: "C4", BeatDuration: 2.5},
			{Pitch: "R", BeatDuration: 0.497},
			{Pitch: "E4", BeatDuration: 1.005},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.SymbolicNote{
		{Pitch: "C4", Length: 2, TiedToNext: true},
		{Pitch: "C4", Length: 8},
		{Pitch: "R", Length: 8},
		{Pitch: "E4", Length: 4},
	}, notes)

	compound, err := Notate(midi.Performance{
		TimeSignature: model.TimeSignature{Numerator: 6, Denominator: 8},
		Notes:         []model.PerformanceNote{{Pitch: "G4", BeatDuration: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.SymbolicNote{
		{Pitch: "G4", Length: 4, TiedToNext: true},
		{Pitch: "G4", Length: 4, TiedToNext: true},
		{Pitch: "G4", Length: 4},
	}, compound)

	_, err = Notate(midi.Performance{TimeSignature: model.CommonTime})
	assert.ErrorIs(t, err, model.ErrUnrepresentableDuration)
}

func TestMidiRoundTrip(t *testing.T) {
	s, ctx := newSession(t)
	_, err := s.AddLinesFromXML(ctx, writeFile(t, "duet.xml", duet), "duet")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "duet.mid")
	require.NoError(t, s.SaveLineToMidi(ctx, "duet_P1", path, 100, 0))

	l, err := s.AddMidiFile(ctx, path, "again")
	require.NoError(t, err)
	// the tied C4 comes back as one dotted quarter
	assert.Equal(t, 3, l.NumNotes)

	orig, err := s.PlayableNotes(ctx, "duet_P1", 0)
	require.NoError(t, err)
	again, err := s.PlayableNotes(ctx, "again", 0)
	require.NoError(t, err)
	require.Len(t, again, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].Pitch, again[i].Pitch)
		assert.True(t, orig[i].Duration.Equal(again[i].Duration), "note %d", i)
	}
}

func TestPlayLine(t *testing.T) {
	s, ctx := newSession(t)
	_, err := s.Store().AddLine(ctx, "short", model.Header{}, []model.SymbolicNote{{Pitch: "A4", Length: 64}})
	require.NoError(t, err)

	var sent []gomidi.Message
	send := func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	}
	require.NoError(t, s.PlayLine(ctx, "short", send, 6000, 0))
	assert.Contains(t, sent, gomidi.NoteOn(0, 69, midi.Velocity))

	assert.ErrorIs(t, s.PlayLine(ctx, "missing", send, 120, 0), model.ErrLineDoesNotExist)
}

func TestSummaryAndDrop(t *testing.T) {
	s, ctx := newSession(t)
	_, err := s.AddLinesFromXML(ctx, writeFile(t, "duet.xml", duet), "duet")
	require.NoError(t, err)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{NumLines: 2, NumNotes: 5, Lines: map[string]int{"duet_P1": 4, "duet_P2": 1}}, sum)

	require.NoError(t, s.DropLine(ctx, "duet_P2"))
	assert.ErrorIs(t, s.DropLine(ctx, "duet_P2"), model.ErrLineDoesNotExist)

	sum, err = s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.NumLines)
}
