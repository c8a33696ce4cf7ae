package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/tieline/model"
	"github.com/pkg/errors"
)

type memLine struct {
	line  model.Line
	notes []model.StoredNote
}

// MemoryStore keeps lines in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	lines map[string]*memLine

	// called after every mutation, with the lock released
	onChange func()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lines: make(map[string]*memLine)}
}

func (s *MemoryStore) AddLine(ctx context.Context, name string, header model.Header, notes []model.SymbolicNote) (model.Line, error) {
	if err := CheckLine(notes); err != nil {
		return model.Line{}, errors.WithMessagef(err, "line %s", name)
	}
	if header.Created.IsZero() {
		header.Created = time.Now().UTC()
	}

	s.mu.Lock()
	if _, ok := s.lines[name]; ok {
		s.mu.Unlock()
		return model.Line{}, errors.Wrap(model.ErrLineExists, name)
	}
	l := model.Line{ID: uuid.New().String(), Name: name, Header: header, NumNotes: len(notes)}
	s.lines[name] = &memLine{line: l, notes: storedNotes(l, notes)}
	s.mu.Unlock()

	s.changed()
	return l, nil
}

func storedNotes(l model.Line, notes []model.SymbolicNote) []model.StoredNote {
	res := make([]model.StoredNote, len(notes))
	for i, n := range notes {
		res[i] = model.StoredNote{ID: uuid.New().String(), LineID: l.ID, Line: l.Name, Index: i, Note: n}
	}
	return res
}

func (s *MemoryStore) get(name string) (*memLine, error) {
	l, ok := s.lines[name]
	if !ok {
		return nil, errors.Wrap(model.ErrLineDoesNotExist, name)
	}
	return l, nil
}

func (s *MemoryStore) FindLine(ctx context.Context, name string) (model.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, err := s.get(name)
	if err != nil {
		return model.Line{}, err
	}
	return l.line, nil
}

func (s *MemoryStore) Notes(ctx context.Context, name string) ([]model.SymbolicNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, err := s.get(name)
	if err != nil {
		return nil, err
	}
	res := make([]model.SymbolicNote, len(l.notes))
	for i, sn := range l.notes {
		res[i] = sn.Note
	}
	return res, nil
}

func (s *MemoryStore) DropLine(ctx context.Context, name string) error {
	s.mu.Lock()
	if _, err := s.get(name); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.lines, name)
	s.mu.Unlock()

	s.changed()
	return nil
}

func (s *MemoryStore) Lines(ctx context.Context) ([]model.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Line, 0, len(s.lines))
	for _, l := range s.lines {
		res = append(res, l.line)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res, nil
}

func (s *MemoryStore) FirstNote(ctx context.Context, line string) (model.StoredNote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, err := s.get(line)
	if err != nil {
		return model.StoredNote{}, false, err
	}
	if len(l.notes) == 0 {
		return model.StoredNote{}, false, nil
	}
	return l.notes[0], true, nil
}

func (s *MemoryStore) NextNote(ctx context.Context, n model.StoredNote) (model.StoredNote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, err := s.get(n.Line)
	if err != nil {
		return model.StoredNote{}, false, err
	}
	next := n.Index + 1
	if next >= len(l.notes) {
		return model.StoredNote{}, false, nil
	}
	return l.notes[next], true, nil
}

// HasOutgoingTie is false for the last note of a line whatever its flag says.
func (s *MemoryStore) HasOutgoingTie(ctx context.Context, n model.StoredNote) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, err := s.get(n.Line)
	if err != nil {
		return false, err
	}
	if n.Index < 0 || n.Index >= len(l.notes) {
		return false, errors.Wrapf(model.ErrInvalidNote, "no note %d in line %s", n.Index, l.line.Name)
	}
	return l.notes[n.Index].Note.TiedToNext && n.Index+1 < len(l.notes), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
