package scroll

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// Backend is raw key/value storage for the position store.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Store maps view keys to saved scroll offsets. Reads and writes are best
// effort: failures are logged once and reported as "nothing saved".
type Store struct {
	backend   Backend
	namespace string

	mu       sync.Mutex
	degraded bool
}

// NewStore wraps backend, prefixing every key with namespace.
func NewStore(backend Backend, namespace string) *Store {
	return &Store{backend: backend, namespace: namespace}
}

func (s *Store) key(k ViewKey) string {
	if s.namespace == "" {
		return string(k)
	}
	return s.namespace + ":" + string(k)
}

// Save records offset for key.
func (s *Store) Save(key ViewKey, offset int) {
	if s == nil || s.backend == nil || key == "" {
		return
	}
	if err := s.backend.Set(s.key(key), strconv.Itoa(offset)); err != nil {
		s.fail("save", key, err)
	}
}

// Load returns the saved offset for key.
func (s *Store) Load(key ViewKey) (int, bool) {
	if s == nil || s.backend == nil || key == "" {
		return 0, false
	}
	raw, ok, err := s.backend.Get(s.key(key))
	if err != nil {
		s.fail("load", key, err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Degraded reports whether any storage operation has failed.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) fail(op string, key ViewKey, err error) {
	s.mu.Lock()
	first := !s.degraded
	s.degraded = true
	s.mu.Unlock()

	storeFailures.WithLabelValues(op).Inc()
	if first {
		tuilog.Log.WarnOnce("scroll.store."+s.namespace, "Position store unavailable, scroll memory disabled",
			"op", op, "key", key, "error", err)
	}
}

// MemoryBackend keeps positions in memory for the life of the process.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// FileBackend keeps positions in a JSON file so a session can be resumed.
// Every Set rewrites the file through a temp file and rename.
type FileBackend struct {
	path string

	mu     sync.Mutex
	data   map[string]string
	loaded bool
}

// NewFileBackend creates a backend stored at path. The file is read lazily.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the backing file.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) load() error {
	if f.loaded {
		return nil
	}
	data, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
		f.data = make(map[string]string)
	case err != nil:
		return fmt.Errorf("read positions: %w", err)
	default:
		m := make(map[string]string)
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode positions: %w", err)
		}
		f.data = m
	}
	f.loaded = true
	return nil
}

func (f *FileBackend) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return "", false, err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	if f.data[key] == value {
		return nil
	}
	f.data[key] = value
	return f.writeLocked()
}

func (f *FileBackend) writeLocked() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create positions dir: %w", err)
	}
	data, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".positions-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace positions: %w", err)
	}
	return nil
}
