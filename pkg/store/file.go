package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const counterFile = "counter"

// FileStore keeps one JSON file per diagram under a base directory, plus a
// counter file holding the next id.
type FileStore struct {
	mu       sync.Mutex
	basePath string
	Clock    Clock
}

// NewFileStore creates the base directory if needed.
func NewFileStore(basePath string) (*FileStore, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		slog.Error("Failed to resolve absolute path", "path", basePath, "error", err)
		return nil, fmt.Errorf("could not resolve diagrams path '%s': %w", basePath, err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		slog.Error("Failed to create diagrams directory", "path", absPath, "error", err)
		return nil, fmt.Errorf("could not create diagrams directory '%s': %w", absPath, err)
	}
	return &FileStore{basePath: absPath}, nil
}

// BasePath returns the resolved storage directory.
func (s *FileStore) BasePath() string { return s.basePath }

func (s *FileStore) diagramPath(id int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(id, 10)+".json")
}

func (s *FileStore) List(ctx context.Context) ([]Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		slog.Error("Failed to list diagrams directory", "path", s.basePath, "error", err)
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}
	out := []Diagram{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		d, err := s.read(id)
		if err != nil {
			slog.Warn("Skipping unreadable diagram", "id", id, "error", err)
			continue
		}
		out = append(out, *d)
	}
	sortByUpdated(out)
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, id int64) (*Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

func (s *FileStore) Create(ctx context.Context, req CreateRequest) (*Diagram, error) {
	d, err := newDiagram(req, s.Clock.now())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	d.ID = id
	if err := s.write(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *FileStore) Update(ctx context.Context, id int64, req UpdateRequest) (*Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read(id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(d, req, s.Clock.now()); err != nil {
		return nil, err
	}
	if err := s.write(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.diagramPath(id)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("diagram %d: %w", id, ErrNotFound)
		}
		slog.Error("Failed to delete diagram file", "id", id, "path", path, "error", err)
		return fmt.Errorf("failed to delete diagram %d: %w", id, err)
	}
	return nil
}

func (s *FileStore) read(id int64) (*Diagram, error) {
	path := s.diagramPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("diagram %d: %w", id, ErrNotFound)
		}
		slog.Error("Failed to read diagram file", "id", id, "path", path, "error", err)
		return nil, fmt.Errorf("failed to read diagram %d: %w", id, err)
	}
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		slog.Error("Failed to unmarshal diagram", "id", id, "path", path, "error", err)
		return nil, fmt.Errorf("failed to parse diagram %d: %w", id, err)
	}
	if d.ID != id {
		slog.Error("Diagram ID mismatch between file name and content", "fileId", id, "id", d.ID)
		return nil, fmt.Errorf("diagram ID mismatch for %d", id)
	}
	return &d, nil
}

// write replaces the record via a temp file in the same directory.
func (s *FileStore) write(d *Diagram) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal diagram for writing", "id", d.ID, "error", err)
		return fmt.Errorf("failed to serialize diagram %d: %w", d.ID, err)
	}
	return s.writeFile(s.diagramPath(d.ID), data)
}

func (s *FileStore) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		slog.Error("Failed to create temp file", "path", s.basePath, "error", err)
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		slog.Error("Failed to write temp file", "path", tmp.Name(), "error", err)
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		slog.Error("Failed to move file into place", "path", path, "error", err)
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// nextID reads and advances the counter. A missing counter starts at 1.
func (s *FileStore) nextID() (int64, error) {
	path := filepath.Join(s.basePath, counterFile)
	id := int64(1)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id, err = strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil || id < 1 {
			slog.Error("Corrupt id counter", "path", path, "content", string(data))
			return 0, fmt.Errorf("corrupt id counter in %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		slog.Error("Failed to read id counter", "path", path, "error", err)
		return 0, fmt.Errorf("failed to read id counter: %w", err)
	}
	if err := s.writeFile(path, []byte(strconv.FormatInt(id+1, 10))); err != nil {
		return 0, err
	}
	return id, nil
}
