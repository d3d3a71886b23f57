// Package storage writes serialized pain.008 messages to the local file
// system.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
)

var _ port.MessageStore = (*FileStore)(nil)

// ErrInvalidDestination is returned for destinations that are absolute or
// escape the base directory.
var ErrInvalidDestination = errors.New("destination must be a relative path inside the output directory")

// FileStore writes each message to a file below a base directory. The file
// is written to a temporary name and renamed into place, so readers never
// observe a partially written message.
type FileStore struct {
	baseDir  string
	fileMode os.FileMode
}

// NewFileStore returns a FileStore rooted at baseDir. The directory is
// created on first write.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir, fileMode: 0o640}
}

// Path resolves destination against the base directory.
func (s *FileStore) Path(destination string) (string, error) {
	if destination == "" || !filepath.IsLocal(destination) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDestination, destination)
	}
	return filepath.Join(s.baseDir, destination), nil
}

// Store writes xml to destination, replacing any existing file.
func (s *FileStore) Store(ctx context.Context, destination string, xml []byte) error {
	path, err := s.Path(destination)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(xml); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(s.fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
