package flowfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// AutosaveKey is the single slot every autosave overwrites.
const AutosaveKey = "flowchart-data"

// Autosave keeps the latest diagram snapshot in one file under Dir.
type Autosave struct {
	Dir string
	Now func() time.Time
}

// NewAutosave returns an Autosave rooted at dir.
func NewAutosave(dir string) *Autosave {
	return &Autosave{Dir: dir, Now: time.Now}
}

// Path returns the file backing the autosave slot.
func (a *Autosave) Path() string {
	return filepath.Join(a.Dir, AutosaveKey+".json")
}

// Save replaces the slot with f, stamped with the current time in
// milliseconds. The file is written beside the target and renamed over it.
func (a *Autosave) Save(f *flow.FlowData) error {
	snap := *f
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	snap.Timestamp = now().UnixMilli()

	data, err := ToJSON(&snap, false)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(a.Dir, AutosaveKey+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), a.Path())
}

// Load returns the saved snapshot. ok is false when nothing has been saved.
// A corrupt slot is reported as an error; the caller keeps its own state.
func (a *Autosave) Load() (f *flow.FlowData, ok bool, err error) {
	data, err := os.ReadFile(a.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	f, err = ParseJSON(data)
	if err != nil {
		return nil, false, fmt.Errorf("autosave: %w", err)
	}
	return f, true, nil
}

// Clear removes the slot.
func (a *Autosave) Clear() error {
	err := os.Remove(a.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
