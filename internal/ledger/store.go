package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// ErrLedgerWrite marks a claim that was granted in memory but could not be
// persisted. The next run may notify again.
var ErrLedgerWrite = errors.New(config.ErrLedgerWrite)

// Store loads and saves the whole ledger document.
//
// Load returns an empty document together with an error wrapping
// ErrLedgerCorrupt when the stored content cannot be decoded, so callers can
// warn and carry on with an empty ledger.
type Store interface {
	Load() (Document, error)
	Save(doc Document) error
}

// FileStore keeps the ledger in a JSON file.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore. The file is created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the ledger file. A missing file is an empty ledger.
func (s *FileStore) Load() (Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("%w: %s: %v", ErrLedgerCorrupt, config.ErrLedgerRead, err)
	}
	return decodeDocument(data)
}

// Save writes the ledger atomically via a temp file and rename.
func (s *FileStore) Save(doc Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrLedgerWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	tmpPath := s.Path + config.TempSuffix
	if err := os.WriteFile(tmpPath, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrLedgerWrite, err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("%s: %w", config.ErrLedgerWrite, err)
	}
	return nil
}

// MemoryStore keeps the encoded ledger in memory. It goes through the same
// codec as FileStore, so tests can seed it with raw (even corrupt) content.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

// NewMemoryStore creates a MemoryStore seeded with raw document bytes.
func NewMemoryStore(seed []byte) *MemoryStore {
	return &MemoryStore{data: seed}
}

// Load decodes the current content.
func (s *MemoryStore) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeDocument(s.data)
}

// Save encodes and keeps doc.
func (s *MemoryStore) Save(doc Document) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Bytes returns a copy of the stored content.
func (s *MemoryStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}
