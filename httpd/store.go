package httpd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// MetaStore persists the meta spreadsheet ID configured for each identity.
// A missing identity returns "" and no error - the caller treats that as
// setup-required.
type MetaStore interface {
	Get(user string) (string, error)
	Put(user, metaSpreadsheetID string) error
}

// MemStore is an in-memory MetaStore.
type MemStore struct {
	mu  sync.Mutex
	ids map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		ids: map[string]string{},
	}
}

func (s *MemStore) Get(user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ids[user], nil
}

func (s *MemStore) Put(user, metaSpreadsheetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids[user] = metaSpreadsheetID

	return nil
}

// FileStore is a MetaStore backed by a JSON file. Writes go through a temp
// file and a rename.
type FileStore struct {
	mu   sync.Mutex
	file string
}

func NewFileStore(file string) *FileStore {
	return &FileStore{
		file: file,
	}
}

func (s *FileStore) Get(user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.read()
	if err != nil {
		return "", err
	}

	return ids[user], nil
}

func (s *FileStore) Put(user, metaSpreadsheetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.read()
	if err != nil {
		return err
	}

	ids[user] = metaSpreadsheetID

	b, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "sheetsdb")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.file)
}

func (s *FileStore) read() (map[string]string, error) {
	ids := map[string]string{}

	b, err := os.ReadFile(s.file)
	if os.IsNotExist(err) {
		return ids, nil
	} else if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("invalid meta store file %s (%v)", s.file, err)
	}

	return ids, nil
}
