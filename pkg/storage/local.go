// Package storage persists uploaded images on the local filesystem under a
// configured base directory, mirroring the layout the API serves back as
// relative paths (e.g. delivery_image/<name>.jpg).
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/velumart/velumart-backend/pkg/config"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ErrUnsupportedType is returned when the upload extension is not an image
// format the platform accepts.
var ErrUnsupportedType = errors.New("unsupported file type")

// Store writes uploads under BaseDir and hands back paths relative to it.
type Store struct {
	baseDir  string
	maxBytes int64
}

func New(cfg config.UploadsConfig) *Store {
	return &Store{
		baseDir:  cfg.BaseDir,
		maxBytes: int64(cfg.MaxUploadMB) << 20,
	}
}

// Save streams src into <baseDir>/<subdir>/<uuid><ext> and returns the
// relative path to store in the database. The original filename only
// contributes its extension.
func (s *Store) Save(subdir, originalName string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	reader := src
	if s.maxBytes > 0 {
		reader = io.LimitReader(src, s.maxBytes+1)
	}
	written, err := io.Copy(dst, reader)
	if err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("upload exceeds %d bytes", s.maxBytes)
	}

	return path.Join(subdir, name), nil
}

// Remove deletes a previously saved upload. Missing files are not an error.
func (s *Store) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// BaseDir is the root the HTTP layer serves static uploads from.
func (s *Store) BaseDir() string {
	return s.baseDir
}
