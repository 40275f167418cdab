package media

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	store := NewStore(t.TempDir(), maxBytes, []string{"mp3", "ogg", "wav", "m4a"})
	if err := store.EnsureDir(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAllowedExt(t *testing.T) {
	store := newTestStore(t, 1<<20)

	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"mp3 lowercase", "track.mp3", true},
		{"mixed case", "track.MP3", true},
		{"ogg", "song.ogg", true},
		{"wav", "song.wav", true},
		{"m4a", "song.m4a", true},
		{"executable", "track.exe", false},
		{"no extension", "track", false},
		{"trailing dot", "track.", false},
		{"double extension takes last", "track.mp3.exe", false},
		{"exe then mp3", "track.exe.mp3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.AllowedExt(tt.filename); got != tt.want {
				t.Errorf("AllowedExt(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "file.mp3", "file.mp3"},
		{"strips directory", "/path/to/file.mp3", "file.mp3"},
		{"strips windows path", `C:\Users\test\file.mp3`, "file.mp3"},
		{"replaces spaces", "my song.mp3", "my_song.mp3"},
		{"replaces unsafe runes", "sömething wild!.mp3", "s_mething_wild_.mp3"},
		{"drops leading dots", "...file.mp3", "file.mp3"},
		{"dotdot collapses", "../../etc/passwd", "passwd"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		for _, input := range []string{"a b.mp3", "../x.mp3", "Üfile.mp3"} {
			once := SanitizeFilename(input)
			if twice := SanitizeFilename(once); twice != once {
				t.Errorf("sanitize not idempotent for %q: %q then %q", input, once, twice)
			}
		}
	})
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"demo.mp3", "demo"},
		{"/tmp/demo.mp3", "demo"},
		{"no_ext", "no_ext"},
		{"two.dots.ogg", "two.dots"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.input); got != tt.expected {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStoreSave(t *testing.T) {
	t.Run("writes file under generated name", func(t *testing.T) {
		store := newTestStore(t, 1<<20)

		stored, n, err := store.Save("my track.mp3", bytes.NewReader([]byte("audio bytes")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != int64(len("audio bytes")) {
			t.Errorf("expected %d bytes written, got %d", len("audio bytes"), n)
		}
		if !strings.HasSuffix(stored, "my_track.mp3") {
			t.Errorf("stored name should end with the sanitized original, got %q", stored)
		}

		content, err := os.ReadFile(filepath.Join(store.Dir(), stored))
		if err != nil {
			t.Fatalf("failed to read stored file: %v", err)
		}
		if string(content) != "audio bytes" {
			t.Errorf("stored content mismatch: %q", content)
		}
	})

	t.Run("generated names do not collide", func(t *testing.T) {
		store := newTestStore(t, 1<<20)

		first, _, err := store.Save("same.mp3", bytes.NewReader([]byte("a")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _, err := store.Save("same.mp3", bytes.NewReader([]byte("b")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first == second {
			t.Errorf("two saves of the same name produced the same stored name %q", first)
		}
	})

	t.Run("rejects disallowed extension before writing", func(t *testing.T) {
		store := newTestStore(t, 1<<20)

		_, _, err := store.Save("track.exe", bytes.NewReader([]byte("MZ...")))
		if err != ErrUnsupportedFormat {
			t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
		}
		if names := dirEntries(t, store.Dir()); len(names) != 0 {
			t.Errorf("no file should have been written, found %v", names)
		}
	})

	t.Run("rejects oversized upload and removes partial file", func(t *testing.T) {
		store := newTestStore(t, 16)

		_, _, err := store.Save("big.mp3", bytes.NewReader(bytes.Repeat([]byte("x"), 64)))
		if err != ErrPayloadTooLarge {
			t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
		}
		if names := dirEntries(t, store.Dir()); len(names) != 0 {
			t.Errorf("partial file should have been removed, found %v", names)
		}
	})

	t.Run("accepts upload exactly at the ceiling", func(t *testing.T) {
		store := newTestStore(t, 16)

		_, n, err := store.Save("fit.mp3", bytes.NewReader(bytes.Repeat([]byte("x"), 16)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 16 {
			t.Errorf("expected 16 bytes, got %d", n)
		}
	})
}

func TestStoreResolve(t *testing.T) {
	t.Run("resolves stored file", func(t *testing.T) {
		store := newTestStore(t, 1<<20)
		stored, _, err := store.Save("demo.mp3", bytes.NewReader([]byte("x")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		path, err := store.Resolve(stored)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != filepath.Join(store.Dir(), stored) {
			t.Errorf("unexpected path %q", path)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		store := newTestStore(t, 1<<20)
		if _, err := store.Resolve("1_abcd_missing.mp3"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("traversal attempts are not found", func(t *testing.T) {
		store := newTestStore(t, 1<<20)
		for _, requested := range []string{"../secret.mp3", "..", "a/b.mp3", `..\x.mp3`, "", "bad name.mp3"} {
			if _, err := store.Resolve(requested); err != ErrNotFound {
				t.Errorf("Resolve(%q): expected ErrNotFound, got %v", requested, err)
			}
		}
	})
}

func TestStoreRemove(t *testing.T) {
	t.Run("removes stored file", func(t *testing.T) {
		store := newTestStore(t, 1<<20)
		stored, _, err := store.Save("demo.mp3", bytes.NewReader([]byte("x")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := store.Remove(stored); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(store.Dir(), stored)); !os.IsNotExist(err) {
			t.Error("expected file to be deleted")
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		store := newTestStore(t, 1<<20)
		if err := store.Remove("1_abcd_gone.mp3"); err != nil {
			t.Errorf("expected nil for missing file, got %v", err)
		}
	})
}

func TestContentType(t *testing.T) {
	// The exact subtype varies with the platform's mime table, so only the
	// top-level type is asserted for known audio extensions.
	for _, name := range []string{"a.mp3", "a.wav", "a.m4a"} {
		if got := ContentType(name); !strings.HasPrefix(got, "audio/") {
			t.Errorf("ContentType(%q) = %q, want an audio type", name, got)
		}
	}
	if got := ContentType("a.unknownext"); got != "application/octet-stream" {
		t.Errorf("ContentType fallback = %q, want application/octet-stream", got)
	}
}
