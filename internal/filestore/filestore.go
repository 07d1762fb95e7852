// Package filestore keeps uploaded certificate files on local disk under a
// single root directory, separate from the document store. Records reference
// files by stored name only.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore manages certificate files under a root directory.
type FileStore struct {
	dir string
}

// New creates a FileStore, creating the root directory if needed.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the reader's contents to a new file named
// <fresh-uuid>_<original-filename> and returns the stored name. The uuid
// prefix makes the name collision-free even when two uploads share an
// original filename.
//
// The data goes through a temp file and an atomic rename, so a partially
// written file is never visible under its final name.
func (fs *FileStore) Save(r io.Reader, originalFilename string) (string, error) {
	name := uuid.New().String() + "_" + sanitize(originalFilename)
	fullPath := filepath.Join(fs.dir, name)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to sync certificate: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close certificate: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename certificate: %w", err)
	}
	return name, nil
}

// Open opens a stored file for reading. The caller must close it. The
// returned error wraps os.ErrNotExist when the file is gone.
func (fs *FileStore) Open(name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(fs.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open certificate %s: %w", name, err)
	}
	return f, nil
}

// Delete removes a stored file. Returns nil if the file is already gone.
func (fs *FileStore) Delete(name string) error {
	err := os.Remove(filepath.Join(fs.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete certificate %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a stored file is present on disk.
func (fs *FileStore) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(fs.dir, name))
	return err == nil
}

// OriginalName recovers the client-supplied filename from a stored name by
// stripping the uuid token prefix.
func OriginalName(storedName string) string {
	if i := strings.Index(storedName, "_"); i >= 0 {
		return storedName[i+1:]
	}
	return storedName
}

// sanitize strips path components and control characters from a
// client-supplied filename.
func sanitize(name string) string {
	name = filepath.Base(filepath.Clean(name))
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == '/' || r == '\\' {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 || b.String() == "." || b.String() == ".." {
		return "file"
	}
	return b.String()
}
