package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type snapshotLine struct {
	Line    model.Line
	NoteIDs []string
	Records []model.Record
}

// FileStore is a MemoryStore that writes a gob snapshot to disk a short
// while after the last change.
type FileStore struct {
	*MemoryStore

	path      string
	debounced func(f func())
	saveMu    sync.Mutex
}

func OpenFileStore(path string, delay time.Duration) (*FileStore, error) {
	fs := &FileStore{
		MemoryStore: NewMemoryStore(),
		path:        path,
		debounced:   debounce.New(delay),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	fs.MemoryStore.onChange = func() {
		fs.debounced(func() {
			if err := fs.Flush(); err != nil {
				logrus.WithError(err).WithField("path", fs.path).Error("could not save line store")
			}
		})
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	if _, err := os.Stat(fs.path); os.IsNotExist(err) {
		return nil
	}
	snapshot, err := util.ReadBinary[[]snapshotLine](fs.path)
	if err != nil {
		return errors.WithMessagef(err, "loading %s", fs.path)
	}

	for _, sl := range snapshot {
		notes := make([]model.StoredNote, len(sl.Records))
		for i, r := range sl.Records {
			n, err := r.SymbolicNote()
			if err != nil {
				return errors.WithMessagef(err, "line %s note %d", sl.Line.Name, i)
			}
			notes[i] = model.StoredNote{ID: sl.NoteIDs[i], LineID: sl.Line.ID, Line: sl.Line.Name, Index: i, Note: n}
		}
		fs.lines[sl.Line.Name] = &memLine{line: sl.Line, notes: notes}
	}
	logrus.WithFields(logrus.Fields{"path": fs.path, "lines": len(snapshot)}).Debug("loaded line store")
	return nil
}

// Flush writes the snapshot now.
func (fs *FileStore) Flush() error {
	fs.saveMu.Lock()
	defer fs.saveMu.Unlock()

	fs.mu.RLock()
	snapshot := make([]snapshotLine, 0, len(fs.lines))
	for _, l := range fs.lines {
		sl := snapshotLine{Line: l.line}
		for _, sn := range l.notes {
			sl.NoteIDs = append(sl.NoteIDs, sn.ID)
			sl.Records = append(sl.Records, model.RecordOf(sn.Note))
		}
		snapshot = append(snapshot, sl)
	}
	fs.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(fs.path), 0777); err != nil {
		return errors.Wrap(err, "creating store dir")
	}
	return util.WriteBinary(fs.path, snapshot)
}

func (fs *FileStore) Close() error {
	return fs.Flush()
}
