package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a named baseline does not exist.
	ErrNotFound = errors.New("baseline not found")
	// ErrInvalidName rejects names that cannot be used as a file name.
	ErrInvalidName = errors.New("invalid baseline name")
)

const fileExt = ".json"

// Store keeps baselines as one JSON file per name in a directory.
type Store struct {
	dir string
}

// DefaultDir returns the default baseline storage directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cuprof", "baselines")
	}
	return filepath.Join(home, ".cuprof", "baselines")
}

// NewStore returns a store rooted at dir, or DefaultDir when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// Dir is the directory backing the store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+fileExt), nil
}

// Save writes b under its name, replacing any previous baseline atomically.
func (s *Store) Save(b *Baseline) error {
	path, err := s.path(b.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("cannot create baseline directory: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal baseline: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, b.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot write baseline: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write baseline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write baseline: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot write baseline: %w", err)
	}
	return nil
}

// Load reads the named baseline.
func (s *Store) Load(name string) (*Baseline, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read baseline %q: %w", name, err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("cannot parse baseline %q: %w", name, err)
	}
	if b.Version > FormatVersion {
		return nil, fmt.Errorf("baseline %q has unsupported version %d", name, b.Version)
	}
	return &b, nil
}

// List returns saved baseline names in lexical order. A missing directory is
// an empty store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list baselines: %w", err)
	}

	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), fileExt); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named baseline.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return fmt.Errorf("cannot delete baseline %q: %w", name, err)
	}
	return nil
}
