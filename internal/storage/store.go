package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sensor-spy/backend/internal/models"
)

// Kind selects the suffix of a written file.
type Kind string

const (
	KindCSV Kind = "csv"
	KindTXT Kind = "txt"
)

// Suffix returns the file suffix including the dot.
func (k Kind) Suffix() string {
	if k == KindTXT {
		return ".txt"
	}
	return ".csv"
}

// FileName appends the kind's suffix to name unless it is already there.
func FileName(name string, kind Kind) string {
	if strings.HasSuffix(name, kind.Suffix()) {
		return name
	}
	return name + kind.Suffix()
}

// Store defines the interface for record file storage.
type Store interface {
	// Write persists content under name (plus suffix), replacing any previous file.
	Write(name string, kind Kind, content string) (*models.FileInfo, error)
	// Read returns the content of a previously provided .csv file.
	Read(name string) (string, error)
	// Stat returns metadata for a file written through this store.
	Stat(name string) (*models.FileInfo, error)
	// List returns the most recently written files.
	List(limit int) ([]*models.FileInfo, error)
	// Path returns the location of a written file.
	Path(name string) (string, error)
}

// LocalStore implements Store using the local filesystem.
// Writes go to the cache directory; reads come from the files directory.
type LocalStore struct {
	mu       sync.RWMutex
	medium   Medium
	cacheDir string
	filesDir string
	files    map[string]*models.FileInfo // by ID
	byName   map[string]string           // file name -> ID
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(cacheDir, filesDir string, medium Medium) (*LocalStore, error) {
	for _, dir := range []string{cacheDir, filesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}
	if medium == nil {
		medium = NewStaticMedium(MediumMounted)
	}

	return &LocalStore{
		medium:   medium,
		cacheDir: cacheDir,
		filesDir: filesDir,
		files:    make(map[string]*models.FileInfo),
		byName:   make(map[string]string),
	}, nil
}

// Write saves content to the cache directory.
func (s *LocalStore) Write(name string, kind Kind, content string) (*models.FileInfo, error) {
	fileName := FileName(name, kind)

	if !s.medium.State().Writable() {
		return nil, ErrNotWritable
	}

	path := filepath.Join(s.cacheDir, fileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, &IOError{Op: "write", Path: path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[fileName]
	if !ok {
		id = uuid.New().String()
		s.byName[fileName] = id
	}
	info := &models.FileInfo{
		ID:        id,
		Name:      fileName,
		Kind:      string(kind),
		Size:      int64(len(content)),
		WrittenAt: time.Now(),
	}
	s.files[id] = info

	return info, nil
}

// Read loads a .csv file from the files directory.
func (s *LocalStore) Read(name string) (string, error) {
	fileName := FileName(name, KindCSV)

	if !s.medium.State().Readable() {
		return "", ErrNotReadable
	}

	path := filepath.Join(s.filesDir, fileName)
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	if st.Size() == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	return readLines(f, path)
}

// maxLineSize bounds a single line read back from the medium.
const maxLineSize = 4 * 1024 * 1024

// readLines returns the content with every line terminated by '\n'.
// A line ends at "\n", "\r\n" or a lone "\r".
func readLines(f *os.File, path string) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(scanLines)
	for sc.Scan() {
		b.Write(sc.Bytes())
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	return b.String(), nil
}

func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			// a '\n' may follow in the next chunk
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Stat retrieves metadata of a written file by name.
func (s *LocalStore) Stat(name string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return s.files[id], nil
}

// List returns the most recent files.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.FileInfo, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, info)
	}

	// Sort by WrittenAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].WrittenAt.After(list[j].WrittenAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Path returns the absolute path to a written file.
func (s *LocalStore) Path(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byName[name]; !ok {
		return "", fmt.Errorf("file not found: %s", name)
	}

	return filepath.Join(s.cacheDir, name), nil
}
