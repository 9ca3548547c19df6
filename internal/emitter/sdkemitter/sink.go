package sdkemitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotEmpty is returned when a FilesystemSink without Force is asked to
// write into a directory that already has entries.
var ErrNotEmpty = errors.New("output directory is not empty")

// OutputSink receives emitted units. Implementations must be safe for
// concurrent calls.
type OutputSink interface {
	WriteFile(ctx context.Context, path string, content []byte) error
}

// PlannedFile describes a unit that will be written.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Plan lists the units in path order.
func Plan(units []Unit) []PlannedFile {
	out := make([]PlannedFile, 0, len(units))
	for _, u := range units {
		out = append(out, PlannedFile{RelPath: u.Path, Size: len(u.Content), Mode: 0o644})
	}
	return out
}

// WriteAll writes every unit to sink, stopping at the first error.
func WriteAll(ctx context.Context, sink OutputSink, units []Unit) error {
	if fs, ok := sink.(*FilesystemSink); ok {
		if err := fs.preflight(); err != nil {
			return err
		}
	}
	for _, u := range units {
		if err := sink.WriteFile(ctx, u.Path, u.Content); err != nil {
			return err
		}
	}
	return nil
}

// FilesystemSink writes units below Root using temp file + rename.
type FilesystemSink struct {
	Root string
	// Mode defaults to 0644.
	Mode os.FileMode
	// Force allows writing into a non-empty Root. Existing files are then
	// replaced.
	Force bool
}

func NewFilesystemSink(root string, force bool) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644, Force: force}
}

// preflight rejects a non-empty root unless Force is set.
func (s *FilesystemSink) preflight() error {
	if s.Force {
		return nil
	}
	abs, err := filepath.Abs(s.Root)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("%w: %q (use --force to overwrite)", ErrNotEmpty, abs)
		}
	}
	return nil
}

// WriteFile writes content to path below Root, creating parent
// directories as needed.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	full := filepath.Join(absRoot, filepath.FromSlash(path))
	if !strings.HasPrefix(full, absRoot+string(filepath.Separator)) {
		return fmt.Errorf("path escapes root directory: %q", path)
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := os.CreateTemp(dir, ".swagger2sdk-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp %s: %w", path, writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp %s: %w", path, closeErr)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, full); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// MemorySink keeps units in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, len(content))
	copy(buf, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = buf
	return nil
}

// Files returns a copy of everything written so far.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.files))
	for p, c := range s.files {
		buf := make([]byte, len(c))
		copy(buf, c)
		out[p] = buf
	}
	return out
}

// Get returns one file, or nil.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.files[path]
	if !ok {
		return nil
	}
	buf := make([]byte, len(c))
	copy(buf, c)
	return buf
}

// ValidatePath accepts clean, relative, slash-separated paths that stay
// below the root.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	if len(path) >= 2 && path[1] == ':' {
		return errors.New("absolute paths not allowed")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return fmt.Errorf("path is not clean (expected %q)", cleaned)
	}
	return nil
}
