package palette

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// Store persists type → color assignments.
type Store interface {
	// Get returns the color stored for typ.
	Get(ctx context.Context, typ string) (color string, ok bool, err error)
	// SetIfAbsent stores color for typ unless typ already has one, and
	// returns the color that is stored afterwards.
	SetIfAbsent(ctx context.Context, typ, color string) (string, error)
	// Len returns the number of assignments.
	Len(ctx context.Context) (int, error)
	// All returns a copy of every assignment.
	All(ctx context.Context) (map[string]string, error)
	// Reset removes every assignment.
	Reset(ctx context.Context) error
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore keeps assignments in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	colors map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colors: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, typ string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colors[typ]
	return c, ok, nil
}

// SetIfAbsent implements Store.
func (s *MemoryStore) SetIfAbsent(_ context.Context, typ, color string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.colors[typ]; ok {
		return c, nil
	}
	s.colors[typ] = color
	return color, nil
}

// Len implements Store.
func (s *MemoryStore) Len(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.colors), nil
}

// All implements Store.
func (s *MemoryStore) All(context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.colors), nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.colors)
	return nil
}

// =============================================================================
// FileStore
// =============================================================================

// FileStore keeps assignments in a JSON file so first-seen colors survive
// between CLI invocations. Every write rewrites the file.
type FileStore struct {
	mem  *MemoryStore
	path string
	mu   sync.Mutex
}

// NewFileStore loads path if it exists. The parent directory is created on
// first write.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{mem: NewMemoryStore(), path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read palette %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.mem.colors); err != nil {
		return nil, fmt.Errorf("decode palette %s: %w", path, err)
	}
	if s.mem.colors == nil {
		s.mem.colors = make(map[string]string)
	}
	return s, nil
}

// DefaultFilePath returns the per-user palette file location.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "forcegraph", "palette.json"), nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, typ string) (string, bool, error) {
	return s.mem.Get(ctx, typ)
}

// SetIfAbsent implements Store.
func (s *FileStore) SetIfAbsent(ctx context.Context, typ, color string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok, _ := s.mem.Get(ctx, typ); ok {
		return c, nil
	}
	stored, _ := s.mem.SetIfAbsent(ctx, typ, color)
	return stored, s.flush()
}

// Len implements Store.
func (s *FileStore) Len(ctx context.Context) (int, error) { return s.mem.Len(ctx) }

// All implements Store.
func (s *FileStore) All(ctx context.Context) (map[string]string, error) { return s.mem.All(ctx) }

// Reset implements Store.
func (s *FileStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.mem.Reset(ctx)
	return s.flush()
}

func (s *FileStore) flush() error {
	all, _ := s.mem.All(context.Background())
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
