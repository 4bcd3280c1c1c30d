// Package localize reads and writes the localized data files Hachimi loads.
package localize

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoDataDir is returned when no localized data directory has been set.
var ErrNoDataDir = errors.New("no localized data directory set")

// StoryData is a translated story.
type StoryData struct {
	Title     string       `json:"title"`
	BlockList []StoryBlock `json:"block_list"`
}

// StoryBlock is one block of story text.
type StoryBlock struct {
	Name           string        `json:"name"`
	Text           string        `json:"text"`
	NextBlock      int32         `json:"next_block"`
	DifferenceFlag int32         `json:"difference_flag"`
	CueID          int32         `json:"cue_id"`
	Choices        []StoryChoice `json:"choices"`
	ColorTexts     []ColorText   `json:"color_texts"`
}

// StoryChoice is a selectable branch in a story block.
type StoryChoice struct {
	Text           string `json:"text"`
	NextBlock      int32  `json:"next_block"`
	DifferenceFlag int32  `json:"difference_flag"`
}

// ColorText is a highlighted phrase in a story block.
type ColorText struct {
	Text string `json:"text"`
}

// Store resolves and persists files under the localized data directory.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// NewStore creates a store rooted at dir. dir may be empty.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// SetDir changes the localized data directory.
func (s *Store) SetDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = dir
}

// Dir returns the localized data directory, or "" if unset.
func (s *Store) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Path joins segments onto the localized data directory.
// Segments must not escape the directory.
func (s *Store) Path(segments ...string) (string, error) {
	dir := s.Dir()
	if dir == "" {
		return "", ErrNoDataDir
	}
	rel := filepath.Join(segments...)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid localized data path %q", rel)
	}
	return filepath.Join(dir, rel), nil
}

// Exists reports whether the file at segments exists.
func (s *Store) Exists(segments ...string) bool {
	path, err := s.Path(segments...)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// SaveJSON writes v as indented JSON to the file at segments.
// Parent directories are created as needed and the write is atomic.
func (s *Store) SaveJSON(v any, segments ...string) error {
	path, err := s.Path(segments...)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Atomic write: temp file + rename so Hachimi never reads a partial file
	tmp, err := os.CreateTemp(dir, ".localize-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadJSON reads the file at segments into a T.
func LoadJSON[T any](s *Store, segments ...string) (T, error) {
	var v T
	path, err := s.Path(segments...)
	if err != nil {
		return v, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return v, nil
}
