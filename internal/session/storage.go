package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage is a string key/value store with localStorage semantics: reads of
// a missing key are not errors, and removing a missing key is a no-op.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// storageFile is the root JSON structure stored on disk.
type storageFile struct {
	Items map[string]string `json:"items"`
}

// FileStorage implements Storage with a JSON file. Every write replaces the
// file atomically so a crash never leaves a half-written session behind.
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage returns a FileStorage persisting to path. The file is
// created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file.
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := file.Items[key]
	return v, ok, nil
}

func (s *FileStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	file.Items[key] = value
	return s.save(file)
}

func (s *FileStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := file.Items[key]; !ok {
		return nil
	}
	delete(file.Items, key)
	return s.save(file)
}

// load reads the storage file. A missing or empty file is an empty store.
func (s *FileStorage) load() (storageFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return storageFile{Items: make(map[string]string)}, nil
		}
		return storageFile{}, fmt.Errorf("read session file: %w", err)
	}

	if len(data) == 0 {
		return storageFile{Items: make(map[string]string)}, nil
	}

	var file storageFile
	if err := json.Unmarshal(data, &file); err != nil {
		return storageFile{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if file.Items == nil {
		file.Items = make(map[string]string)
	}
	return file, nil
}

// save writes the storage file atomically with owner-only permissions.
func (s *FileStorage) save(file storageFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// MemoryStorage implements Storage in memory. It is safe for concurrent use.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

var (
	_ Storage = (*FileStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)
