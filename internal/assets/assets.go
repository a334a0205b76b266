// Package assets reads heightmap data out of GRF archives and the local
// filesystem.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/Faultbox/midgard-terrain/pkg/grf"
)

// ErrNotFound is returned when no archive or local file holds a path.
var ErrNotFound = errors.New("asset not found")

// Manager resolves paths against its archives, last added first, and then
// against the local filesystem.
type Manager struct {
	archives []*grf.Archive
	mu       sync.RWMutex
}

// NewManager creates a manager with no archives.
func NewManager() *Manager {
	return &Manager{}
}

// AddArchive opens a GRF archive and gives it the highest priority.
func (m *Manager) AddArchive(path string) error {
	archive, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()
	return nil
}

// ArchiveCount returns the number of opened archives.
func (m *Manager) ArchiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.archives)
}

// Load returns the contents of path.
func (m *Manager) Load(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		data, err := m.archives[i].Read(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, grf.ErrNotFound) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, err
}

// Close closes all archives.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, archive := range m.archives {
		errs = append(errs, archive.Close())
	}
	m.archives = nil
	return errors.Join(errs...)
}
