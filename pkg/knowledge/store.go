// Package knowledge keeps the active document's chunks in memory and mirrors
// each upload to a JSON file.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schardosin/docqa/pkg/document"
)

// Base is a processed document ready for retrieval
type Base struct {
	Filename    string           `json:"filename"`
	TotalChunks int              `json:"total_chunks"`
	Chunks      []document.Chunk `json:"chunks"`
}

func NewBase(filename string, chunks []document.Chunk) *Base {
	return &Base{
		Filename:    filename,
		TotalChunks: len(chunks),
		Chunks:      chunks,
	}
}

// Store holds at most one current Base
type Store struct {
	dir string

	mu      sync.RWMutex
	current *Base
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create knowledge base directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes kb to <stem>_kb.json and makes it current
func (s *Store) Save(kb *Base) (string, error) {
	data, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode knowledge base: %w", err)
	}

	path := s.PathFor(kb.Filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write knowledge base: %w", err)
	}

	s.mu.Lock()
	s.current = kb
	s.mu.Unlock()

	return path, nil
}

// Current returns the active Base, or nil
func (s *Store) Current() *Base {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clear forgets the active Base. Files on disk are kept.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *Store) PathFor(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return filepath.Join(s.dir, stem+"_kb.json")
}
