// store_test.go - Tests for storage layer
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func createTestStore(t *testing.T) (*LocalStore, *StaticMedium) {
	t.Helper()
	tempDir := t.TempDir()
	medium := NewStaticMedium(MediumMounted)
	store, err := NewLocalStore(filepath.Join(tempDir, "cache"), filepath.Join(tempDir, "files"), medium)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store, medium
}

// seedFile places a file in the files directory, where Read looks.
func seedFile(t *testing.T, store *LocalStore, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(store.filesDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates directories", func(t *testing.T) {
		tempDir := t.TempDir()
		cacheDir := filepath.Join(tempDir, "a", "cache")
		filesDir := filepath.Join(tempDir, "b", "files")

		if _, err := NewLocalStore(cacheDir, filesDir, nil); err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		for _, dir := range []string{cacheDir, filesDir} {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				t.Errorf("Expected directory %s to be created", dir)
			}
		}
	})

	t.Run("defaults to a mounted medium", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir(), t.TempDir(), nil)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		if store.medium.State() != MediumMounted {
			t.Errorf("Expected mounted medium, got %s", store.medium.State())
		}
	})
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{"points", KindCSV, "points.csv"},
		{"points.csv", KindCSV, "points.csv"},
		{"notes", KindTXT, "notes.txt"},
		{"notes.csv", KindTXT, "notes.csv.txt"},
		{"Pixel 6 Sensor Informations", KindCSV, "Pixel 6 Sensor Informations.csv"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, tt.kind); got != tt.want {
			t.Errorf("FileName(%q, %s) = %q, want %q", tt.name, tt.kind, got, tt.want)
		}
	}
}

func TestLocalStore_Write(t *testing.T) {
	t.Run("writes content with suffix", func(t *testing.T) {
		store, _ := createTestStore(t)

		info, err := store.Write("samples", KindCSV, "1,2,3\n")
		if err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if info.Name != "samples.csv" {
			t.Errorf("Expected name samples.csv, got %s", info.Name)
		}
		if info.Size != 6 {
			t.Errorf("Expected size 6, got %d", info.Size)
		}
		if info.ID == "" {
			t.Error("Expected ID to be set")
		}

		data, err := os.ReadFile(filepath.Join(store.cacheDir, "samples.csv"))
		if err != nil {
			t.Fatalf("Failed to read written file: %v", err)
		}
		if string(data) != "1,2,3\n" {
			t.Errorf("Unexpected content %q", string(data))
		}
	})

	t.Run("text kind", func(t *testing.T) {
		store, _ := createTestStore(t)

		info, err := store.Write("notes", KindTXT, "hello\n")
		if err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if info.Name != "notes.txt" || info.Kind != "txt" {
			t.Errorf("Unexpected info %+v", info)
		}
	})

	t.Run("overwrites and keeps ID", func(t *testing.T) {
		store, _ := createTestStore(t)

		first, _ := store.Write("p", KindCSV, "old content\n")
		second, err := store.Write("p.csv", KindCSV, "new\n")
		if err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("Expected same ID, got %s and %s", first.ID, second.ID)
		}

		data, _ := os.ReadFile(filepath.Join(store.cacheDir, "p.csv"))
		if string(data) != "new\n" {
			t.Errorf("Expected overwritten content, got %q", string(data))
		}
	})

	t.Run("refuses when not writable", func(t *testing.T) {
		for _, state := range []MediumState{MediumReadOnly, MediumUnmounted} {
			store, medium := createTestStore(t)
			medium.Set(state)

			_, err := store.Write("samples", KindCSV, "x\n")
			if !errors.Is(err, ErrNotWritable) {
				t.Errorf("state %s: expected ErrNotWritable, got %v", state, err)
			}
		}
	})

	t.Run("reports io errors", func(t *testing.T) {
		store, _ := createTestStore(t)
		if err := os.RemoveAll(store.cacheDir); err != nil {
			t.Fatal(err)
		}

		_, err := store.Write("samples", KindCSV, "x\n")
		var ioErr *IOError
		if !errors.As(err, &ioErr) {
			t.Fatalf("Expected IOError, got %v", err)
		}
		if ioErr.Op != "write" {
			t.Errorf("Expected write op, got %s", ioErr.Op)
		}
	})
}

func TestLocalStore_Read(t *testing.T) {
	t.Run("reads existing file", func(t *testing.T) {
		store, _ := createTestStore(t)
		seedFile(t, store, "points.csv", "a:1,2\nb:3,4\n")

		content, err := store.Read("points")
		if err != nil {
			t.Fatalf("Failed to read: %v", err)
		}
		if content != "a:1,2\nb:3,4\n" {
			t.Errorf("Unexpected content %q", content)
		}
	})

	t.Run("terminates every line", func(t *testing.T) {
		store, _ := createTestStore(t)
		seedFile(t, store, "points.csv", "a:1,2\r\nb:3,4")

		content, err := store.Read("points.csv")
		if err != nil {
			t.Fatalf("Failed to read: %v", err)
		}
		if content != "a:1,2\nb:3,4\n" {
			t.Errorf("Unexpected content %q", content)
		}
	})

	t.Run("lone carriage return ends a line", func(t *testing.T) {
		store, _ := createTestStore(t)
		seedFile(t, store, "points.csv", "a:1,2\rb:3,4\r\r\nc:5,6\r")

		content, err := store.Read("points")
		if err != nil {
			t.Fatalf("Failed to read: %v", err)
		}
		if content != "a:1,2\nb:3,4\n\nc:5,6\n" {
			t.Errorf("Unexpected content %q", content)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		store, _ := createTestStore(t)

		_, err := store.Read("nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		store, _ := createTestStore(t)
		seedFile(t, store, "empty.csv", "")

		_, err := store.Read("empty")
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("Expected ErrEmpty, got %v", err)
		}
	})

	t.Run("read-only medium is readable", func(t *testing.T) {
		store, medium := createTestStore(t)
		seedFile(t, store, "points.csv", "a:1,2\n")
		medium.Set(MediumReadOnly)

		if _, err := store.Read("points"); err != nil {
			t.Errorf("Expected read to succeed, got %v", err)
		}
	})

	t.Run("unmounted medium", func(t *testing.T) {
		store, medium := createTestStore(t)
		seedFile(t, store, "points.csv", "a:1,2\n")
		medium.Set(MediumUnmounted)

		_, err := store.Read("points")
		if !errors.Is(err, ErrNotReadable) {
			t.Errorf("Expected ErrNotReadable, got %v", err)
		}
	})

	t.Run("does not see the cache directory", func(t *testing.T) {
		store, _ := createTestStore(t)
		if _, err := store.Write("points", KindCSV, "a:1,2\n"); err != nil {
			t.Fatal(err)
		}

		_, err := store.Read("points")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestLocalStore_List(t *testing.T) {
	store, _ := createTestStore(t)
	for _, name := range []string{"a", "b", "c"} {
		if _, err := store.Write(name, KindCSV, name+"\n"); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.List(10)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 files, got %d", len(all))
	}

	limited, _ := store.List(2)
	if len(limited) != 2 {
		t.Errorf("Expected 2 files, got %d", len(limited))
	}
}

func TestLocalStore_StatAndPath(t *testing.T) {
	store, _ := createTestStore(t)
	written, err := store.Write("s", KindCSV, "1\n")
	if err != nil {
		t.Fatal(err)
	}

	info, err := store.Stat("s.csv")
	if err != nil {
		t.Fatalf("Failed to stat: %v", err)
	}
	if info.ID != written.ID {
		t.Errorf("Expected ID %s, got %s", written.ID, info.ID)
	}

	path, err := store.Path("s.csv")
	if err != nil {
		t.Fatalf("Failed to get path: %v", err)
	}
	if path != filepath.Join(store.cacheDir, "s.csv") {
		t.Errorf("Unexpected path %s", path)
	}

	if _, err := store.Stat("missing.csv"); err == nil {
		t.Error("Expected error for unknown file")
	}
}

func TestParseMediumState(t *testing.T) {
	tests := map[string]MediumState{
		"":           MediumMounted,
		"mounted":    MediumMounted,
		"MOUNTED_RO": MediumReadOnly,
		"readonly":   MediumReadOnly,
		"unmounted":  MediumUnmounted,
	}
	for in, want := range tests {
		got, err := ParseMediumState(in)
		if err != nil || got != want {
			t.Errorf("ParseMediumState(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMediumState("ejected"); err == nil {
		t.Error("Expected error for unknown state")
	}
}
