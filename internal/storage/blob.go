// Package storage keeps uploaded files on local disk, addressed by opaque
// blob ids. Profile records hold blob ids only, never file handles.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid blob id")

type BlobStore struct {
	dir string
}

// NewBlobStore creates the upload directory if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Dir returns the root directory, for serving files over HTTP.
func (s *BlobStore) Dir() string { return s.dir }

// Save streams r into a new blob and returns its id. The original file
// extension is kept so served files get sensible content types.
func (s *BlobStore) Save(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 {
		ext = ""
	}
	id := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, id))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	return id, nil
}

// Exists reports whether a blob id refers to a stored file.
func (s *BlobStore) Exists(id string) (bool, error) {
	if !validID(id) {
		return false, ErrInvalidID
	}
	_, err := os.Stat(filepath.Join(s.dir, id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Open returns the blob contents.
func (s *BlobStore) Open(id string) (io.ReadCloser, error) {
	if !validID(id) {
		return nil, ErrInvalidID
	}
	return os.Open(filepath.Join(s.dir, id))
}

// validID rejects anything that could escape the store directory.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
