// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sensor-spy/backend/internal/models"
	"github.com/sensor-spy/backend/internal/storage"
)

// MockStorage implements storage.Store in memory.
// Written files and readable files are kept apart, as on the real medium.
type MockStorage struct {
	mu       sync.RWMutex
	State    storage.MediumState
	WriteErr error // returned (wrapped in an IOError) by Write when set
	written  map[string]*models.FileInfo
	data     map[string]string
	readable map[string]string
	seq      int
}

// NewMockStorage creates a mounted, empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		State:    storage.MediumMounted,
		written:  make(map[string]*models.FileInfo),
		data:     make(map[string]string),
		readable: make(map[string]string),
	}
}

// AddReadable makes content available to Read under name.
func (m *MockStorage) AddReadable(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readable[storage.FileName(name, storage.KindCSV)] = content
}

// Content returns what was written under the full file name.
func (m *MockStorage) Content(fileName string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.data[fileName]
	return c, ok
}

func (m *MockStorage) Write(name string, kind storage.Kind, content string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fileName := storage.FileName(name, kind)
	if !m.State.Writable() {
		return nil, storage.ErrNotWritable
	}
	if m.WriteErr != nil {
		return nil, &storage.IOError{Op: "write", Path: fileName, Err: m.WriteErr}
	}

	info, ok := m.written[fileName]
	if !ok {
		m.seq++
		info = &models.FileInfo{ID: generateTestID(m.seq), Name: fileName}
		m.written[fileName] = info
	}
	info.Kind = string(kind)
	info.Size = int64(len(content))
	info.WrittenAt = time.Now()
	m.data[fileName] = content

	return info, nil
}

func (m *MockStorage) Read(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fileName := storage.FileName(name, storage.KindCSV)
	if !m.State.Readable() {
		return "", storage.ErrNotReadable
	}
	content, ok := m.readable[fileName]
	if !ok {
		return "", fmt.Errorf("%s: %w", fileName, storage.ErrNotFound)
	}
	if content == "" {
		return "", fmt.Errorf("%s: %w", fileName, storage.ErrEmpty)
	}
	return content, nil
}

func (m *MockStorage) Stat(name string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.written[name]
	if !ok {
		return nil, errors.New("file not found")
	}
	return info, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.FileInfo, 0, len(m.written))
	for _, info := range m.written {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID > files[j].ID })
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Path(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.written[name]; !ok {
		return "", errors.New("file not found")
	}
	return "/mock/" + name, nil
}

func generateTestID(seq int) string {
	return fmt.Sprintf("test-%06d", seq)
}

var _ storage.Store = (*MockStorage)(nil)
