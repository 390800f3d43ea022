package window

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// fileState is the on-disk layout of the window store.
type fileState struct {
	Entries []Entry `json:"entries"`
}

// FileStore persists window state as a single JSON file, replaced
// atomically on every Persist so a crash mid-write never corrupts the
// previously committed state.
type FileStore struct {
	path  string
	log   *zap.Logger
	state *state
}

// NewFileStore creates a file-backed window store at path.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log, state: newState()}
}

// Load reads the state file and prunes it to the trailing window. A
// missing, unreadable, or corrupt file is treated as empty history:
// the run continues with frequency counts of zero.
func (f *FileStore) Load(today time.Time, windowDays int) error {
	f.state = newState()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		f.log.Warn("window state unreadable, starting empty",
			zap.String("path", f.path), zap.Error(err))
		return nil
	}

	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		f.log.Warn("window state corrupt, starting empty",
			zap.String("path", f.path), zap.Error(err))
		return nil
	}

	for i := range st.Entries {
		e := st.Entries[i]
		if e.Key == "" || len(e.DaysSeen) == 0 {
			continue
		}
		f.state.entries[e.Key] = &e
	}
	f.state.prune(today, windowDays)
	return nil
}

func (f *FileStore) Record(keys []string, today time.Time) {
	f.state.record(keys, today)
}

func (f *FileStore) Count(key string) int { return f.state.count(key) }

func (f *FileStore) FirstSeen(key string) (time.Time, bool) {
	return f.state.firstSeen(key)
}

// Persist writes the state to a temporary file in the same directory
// and renames it into place once the write fully succeeded.
func (f *FileStore) Persist() error {
	data, err := json.MarshalIndent(fileState{Entries: f.state.sorted()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode window state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create window dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".window-*.json")
	if err != nil {
		return fmt.Errorf("create temp window file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write window state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync window state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close window state: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod window state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace window state %s: %w", f.path, err)
	}
	return nil
}
