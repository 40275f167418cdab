package media

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"musicbox/logger"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedFormat means the file extension is not on the allow-list.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrPayloadTooLarge means the upload exceeded the configured ceiling.
	ErrPayloadTooLarge = errors.New("upload exceeds maximum size")
	// ErrNotFound means the requested file does not exist in the media directory.
	ErrNotFound = errors.New("media file not found")
)

// Store writes, serves and removes uploaded audio files on the local
// filesystem. Stored filenames are server-generated; client-supplied names
// never reach the disk unsanitized.
type Store struct {
	dir      string
	maxBytes int64
	allowed  map[string]bool
}

// NewStore creates a media store rooted at dir. Extensions are matched
// case-insensitively, without the dot.
func NewStore(dir string, maxBytes int64, allowedExts []string) *Store {
	allowed := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(ext)] = true
	}
	return &Store{dir: dir, maxBytes: maxBytes, allowed: allowed}
}

// Dir returns the media directory path.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the media directory if it doesn't exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create media directory %s: %w", s.dir, err)
	}
	return nil
}

// AllowedExt reports whether the filename carries an allow-listed audio
// extension. A name without an extension is rejected.
func (s *Store) AllowedExt(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return false
	}
	return s.allowed[strings.ToLower(filename[idx+1:])]
}

// SanitizeFilename reduces a client-supplied filename to a safe basename:
// path segments (both separators) are stripped, anything outside
// [A-Za-z0-9._-] becomes '_', and leading dots are dropped so the result can
// never climb out of the media directory. Sanitizing is idempotent, which is
// what the serve path relies on to detect traversal attempts.
func SanitizeFilename(name string) string {
	// Strip directory components, whichever separator the client used.
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return strings.TrimLeft(b.String(), ".")
}

// TitleFromFilename returns the stem of the original filename, used as the
// default song title when the uploader supplies none.
func TitleFromFilename(name string) string {
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Save streams an upload to the media directory under a server-generated,
// collision-resistant name and returns that name. The write is capped at the
// configured ceiling; exceeding it aborts the write, removes the partial
// file and returns ErrPayloadTooLarge.
func (s *Store) Save(originalName string, r io.Reader) (string, int64, error) {
	if !s.AllowedExt(originalName) {
		return "", 0, ErrUnsupportedFormat
	}

	base := SanitizeFilename(originalName)
	if base == "" {
		base = "upload" + strings.ToLower(filepath.Ext(originalName))
	}
	storedName := fmt.Sprintf("%d_%s_%s", time.Now().Unix(), uuid.NewString()[:8], base)
	path := filepath.Join(s.dir, storedName)

	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create media file %s: %w", path, err)
	}

	// Copy one byte past the ceiling so an oversized stream is detected
	// without reading it to the end.
	n, err := io.Copy(file, io.LimitReader(r, s.maxBytes+1))
	closeErr := file.Close()
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write media file: %w", err)
	}
	if closeErr != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to close media file: %w", closeErr)
	}
	if n > s.maxBytes {
		os.Remove(path)
		return "", 0, ErrPayloadTooLarge
	}

	return storedName, n, nil
}

// Resolve validates a requested filename and returns its on-disk path.
// A name that changes under sanitization is treated as not found rather
// than reported as a traversal attempt.
func (s *Store) Resolve(requested string) (string, error) {
	if requested == "" || SanitizeFilename(requested) != requested {
		return "", ErrNotFound
	}

	path := filepath.Join(s.dir, requested)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to stat media file: %w", err)
	}
	return path, nil
}

// Remove deletes a stored file. A missing file is logged and ignored so
// catalog deletion can proceed regardless of filesystem state.
func (s *Store) Remove(storedName string) error {
	path := filepath.Join(s.dir, storedName)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Media file already absent on delete", logger.String("file", storedName))
			return nil
		}
		return fmt.Errorf("failed to delete media file %s: %w", path, err)
	}
	return nil
}

// ContentType infers the response content type from the stored filename.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	}
	return "application/octet-stream"
}
