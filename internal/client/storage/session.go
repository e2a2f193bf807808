// Package storage keeps the current auth session between client runs.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/atinyakov/GophNotes/internal/models"
)

// FileSessionStore persists the session as JSON in a single file readable
// only by the current user.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSessionStore returns a store backed by path. The file is created on
// the first Save.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load returns the stored session, or nil if none was saved or the file is
// empty.
func (fs *FileSessionStore) Load() (*models.Session, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	var s models.Session
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		// an empty file holds no session
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

// Save replaces the stored session.
func (fs *FileSessionStore) Save(s *models.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (fs *FileSessionStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemorySessionStore keeps the session for the lifetime of the process.
type MemorySessionStore struct {
	mu      sync.Mutex
	session *models.Session
}

func (ms *MemorySessionStore) Load() (*models.Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.session == nil {
		return nil, nil
	}
	s := *ms.session
	return &s, nil
}

func (ms *MemorySessionStore) Save(s *models.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	cp := *s
	ms.session = &cp
	return nil
}

func (ms *MemorySessionStore) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.session = nil
	return nil
}
