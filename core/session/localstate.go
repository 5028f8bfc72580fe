package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"hbcplayer/logger"
	"hbcplayer/model"

	"github.com/fsnotify/fsnotify"
)

const stateFileName = "session.json"

// persistedState is the on-disk session state: the guest queue plus the
// volume settings. The loaded track id and playback status are
// deliberately absent; they reset on restart.
type persistedState struct {
	Playlist model.Playlist `json:"playlist"`
	Volume   VolumeState    `json:"volume"`
}

// LocalState persists the session to a JSON file in the state directory
// and, when watching, reloads it after another process instance writes
// it. Writes are atomic (temp file + rename).
type LocalState struct {
	mu      sync.Mutex
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}

	// Bytes of the last write this process made. The watcher compares
	// the file against them to tell its own rename apart from a foreign
	// one; the fsnotify event arrives long after Save returns, so a flag
	// cleared at the end of Save could never be observed.
	lastSaved []byte
}

// NewLocalState creates the state directory if needed and returns a
// store over <dir>/session.json.
func NewLocalState(dir string) (*LocalState, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &LocalState{path: filepath.Join(dir, stateFileName)}, nil
}

// Path returns the state file path.
func (l *LocalState) Path() string { return l.path }

// Load reads the persisted state. A missing file is not an error: the
// zero state (empty queue, full volume) comes back instead.
func (l *LocalState) Load() (model.Playlist, VolumeState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return model.Playlist{}, VolumeState{Volume: 1.0, LastVolume: 1.0}, nil
	}
	if err != nil {
		return model.Playlist{}, VolumeState{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.Playlist{}, VolumeState{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	state.Playlist.Clamp()
	return state.Playlist, state.Volume, nil
}

// Save writes the state atomically.
func (l *LocalState) Save(playlist model.Playlist, volume VolumeState) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := json.MarshalIndent(persistedState{Playlist: playlist, Volume: volume}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	l.lastSaved = raw
	return nil
}

// isOwnWrite reports whether the state file still holds exactly what
// this process last wrote. A foreign writer producing identical bytes
// is indistinguishable, and reloading identical state is a no-op anyway.
func (l *LocalState) isOwnWrite() bool {
	l.mu.Lock()
	last := l.lastSaved
	l.mu.Unlock()

	if last == nil {
		return false
	}
	current, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	return bytes.Equal(current, last)
}

// Watch starts watching the state directory and invokes onChange after a
// foreign process rewrites the state file. Call Close to stop.
func (l *LocalState) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory, not the file: the atomic rename replaces the
	// inode on every save.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch state directory: %w", err)
	}

	l.mu.Lock()
	l.watcher = watcher
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != l.path {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if l.isOwnWrite() {
					continue
				}
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("State watcher error", logger.ErrorField(err))
			case <-done:
				return
			}
		}
	}()

	return nil
}

// Close stops the watcher.
func (l *LocalState) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
	if l.watcher != nil {
		err := l.watcher.Close()
		l.watcher = nil
		return err
	}
	return nil
}
