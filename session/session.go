package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jsphweid/tieline/duration"
	"github.com/jsphweid/tieline/midi"
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/musicxml"
	"github.com/jsphweid/tieline/store"
	"github.com/jsphweid/tieline/tie"
	"github.com/jsphweid/tieline/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Session ties the importers, the line store and the reducer together.
type Session struct {
	store        store.Store
	ticksPerBeat uint64
}

func New(s store.Store, ticksPerBeat uint64) *Session {
	return &Session{store: s, ticksPerBeat: ticksPerBeat}
}

func (s *Session) TicksPerBeat() uint64 {
	return s.ticksPerBeat
}

func (s *Session) Store() store.Store {
	return s.store
}

// LineName is the piece name for single part scores and
// "<piece>_<part id>" otherwise.
func LineName(piece, partID string, numParts int) string {
	if numParts == 1 {
		return piece
	}
	return fmt.Sprintf("%s_%s", piece, partID)
}

func (s *Session) AddLinesFromXML(ctx context.Context, path, piece string) ([]model.Line, error) {
	score, err := musicxml.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.AddScore(ctx, score, piece)
}

// AddScore stores every part of a score as its own line. All parts are
// checked before any is written so a bad part leaves the store untouched.
func (s *Session) AddScore(ctx context.Context, score *musicxml.Score, piece string) ([]model.Line, error) {
	parts, err := score.Lines()
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, errors.Wrapf(model.ErrInvalidNote, "%s has no parts", piece)
	}

	for _, p := range parts {
		name := LineName(piece, p.ID, len(parts))
		if _, err := s.store.FindLine(ctx, name); err == nil {
			return nil, errors.Wrap(model.ErrLineExists, name)
		} else if !errors.Is(err, model.ErrLineDoesNotExist) {
			return nil, err
		}
		if err := store.CheckLine(p.Notes); err != nil {
			return nil, errors.WithMessagef(err, "line %s", name)
		}
	}

	header := model.Header{Composer: score.Composer(), Created: time.Now().UTC()}
	var res []model.Line
	for _, p := range parts {
		name := LineName(piece, p.ID, len(parts))
		l, err := s.store.AddLine(ctx, name, header, p.Notes)
		if err != nil {
			return res, err
		}
		logrus.WithFields(logrus.Fields{"line": name, "part": p.Name, "notes": l.NumNotes}).Info("line added")
		res = append(res, l)
	}
	return res, nil
}

// Notate turns a performance into written notes using the ladder its meter
// calls for. Durations are first snapped to the smallest ladder value.
func Notate(p midi.Performance) ([]model.SymbolicNote, error) {
	alphabet := duration.AlphabetFor(p.TimeSignature.Denominator)
	p = p.Quantized(alphabet.Smallest().Float64())

	var res []model.SymbolicNote
	for i, n := range p.Notes {
		notes, err := duration.Notate(n, p.TimeSignature)
		if err != nil {
			return nil, errors.WithMessagef(err, "performance note %d", i)
		}
		res = append(res, notes...)
	}
	if len(res) == 0 {
		return nil, errors.Wrap(model.ErrUnrepresentableDuration, "performance has no notes")
	}
	return res, nil
}

func (s *Session) AddPerformance(ctx context.Context, name string, p midi.Performance) (model.Line, error) {
	notes, err := Notate(p)
	if err != nil {
		return model.Line{}, errors.WithMessagef(err, "line %s", name)
	}
	l, err := s.store.AddLine(ctx, name, model.Header{Created: time.Now().UTC()}, notes)
	if err != nil {
		return model.Line{}, err
	}
	logrus.WithFields(logrus.Fields{
		"line":        name,
		"performance": len(p.Notes),
		"notes":       l.NumNotes,
		"meter":       fmt.Sprintf("%d/%d", p.TimeSignature.Numerator, p.TimeSignature.Denominator),
	}).Info("performance added")
	return l, nil
}

func (s *Session) AddMidiFile(ctx context.Context, path, name string) (model.Line, error) {
	mf, err := midi.ReadMidiFile(path)
	if err != nil {
		return model.Line{}, err
	}
	p, err := midi.ReadPerformance(mf)
	if err != nil {
		return model.Line{}, errors.WithMessagef(err, "reading %s", path)
	}
	return s.AddPerformance(ctx, name, p)
}

// PlayableNotes resolves the ties of a stored line. With excerpt > 0 it
// stops after that many sounding notes.
func (s *Session) PlayableNotes(ctx context.Context, name string, excerpt int) ([]model.PlayableNote, error) {
	if _, err := s.store.FindLine(ctx, name); err != nil {
		return nil, err
	}

	var res []model.PlayableNote
	sounding := 0
	err := tie.Walk(ctx, s.store, name, s.ticksPerBeat, func(p model.PlayableNote) bool {
		res = append(res, p)
		if !p.IsRest() {
			sounding++
		}
		return excerpt <= 0 || sounding < excerpt
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TimedNote is a sounding note placed on a timeline in seconds.
type TimedNote struct {
	model.PlayableNote
	Start float64
	End   float64
}

// PlayableLine places the sounding notes of a line at the given tempo.
// Rests only move the clock.
func (s *Session) PlayableLine(ctx context.Context, name string, bpm float64, excerpt int) ([]TimedNote, error) {
	if bpm <= 0 {
		return nil, errors.Errorf("bpm must be positive, got %v", bpm)
	}
	notes, err := s.PlayableNotes(ctx, name, excerpt)
	if err != nil {
		return nil, err
	}

	var res []TimedNote
	var clock float64
	for _, n := range notes {
		end := clock + n.Seconds(s.ticksPerBeat, bpm)
		if !n.IsRest() {
			res = append(res, TimedNote{PlayableNote: n, Start: clock, End: end})
		}
		clock = end
	}
	return res, nil
}

func (s *Session) SaveLineToMidi(ctx context.Context, name, path string, bpm float64, excerpt int) error {
	notes, err := s.PlayableNotes(ctx, name, excerpt)
	if err != nil {
		return err
	}
	opts := midi.WriteOptions{TicksPerBeat: s.ticksPerBeat, Bpm: bpm, TimeSignature: model.CommonTime}
	if err := midi.SaveLine(path, notes, opts); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"line": name, "path": path, "notes": len(notes)}).Info("line saved")
	return nil
}

func (s *Session) PlayLine(ctx context.Context, name string, send midi.Sender, bpm float64, excerpt int) error {
	if bpm <= 0 {
		return errors.Errorf("bpm must be positive, got %v", bpm)
	}
	notes, err := s.PlayableNotes(ctx, name, excerpt)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"line": name, "bpm": bpm, "notes": len(notes)}).Info("playing")
	return midi.Play(ctx, send, notes, s.ticksPerBeat, bpm)
}

func (s *Session) DropLine(ctx context.Context, name string) error {
	if err := s.store.DropLine(ctx, name); err != nil {
		return err
	}
	logrus.WithField("line", name).Info("line dropped")
	return nil
}

type Summary struct {
	NumLines int
	NumNotes int
	Lines    map[string]int
}

func (s *Session) Summary(ctx context.Context) (Summary, error) {
	lines, err := s.store.Lines(ctx)
	if err != nil {
		return Summary{}, err
	}
	res := Summary{NumLines: len(lines), Lines: make(map[string]int, len(lines))}
	counts := make([]int, 0, len(lines))
	for _, l := range lines {
		res.Lines[l.Name] = l.NumNotes
		counts = append(counts, l.NumNotes)
	}
	res.NumNotes = int(util.Sum(counts))
	return res, nil
}
