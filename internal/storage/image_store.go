// Package storage keeps uploaded face images on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// timestampLayout keeps file names sortable by capture time
	timestampLayout = "20060102T150405"

	tempPrefix = ".tmp-"
)

// StoredImage describes a file in the store
type StoredImage struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// ImageStore writes images under a single directory.
// Paths it returns are the directory joined with the file name and are what
// the repositories persist.
type ImageStore struct {
	dir string
	now func() time.Time
}

// NewImageStore creates the directory if needed
func NewImageStore(dir string) (*ImageStore, error) {
	if dir == "" {
		return nil, errors.New("image store directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{dir: filepath.Clean(dir), now: time.Now}, nil
}

// Dir returns the root directory of the store
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes data as <prefix>_<timestamp>_<uuid>.<ext>. The file appears
// under its final name only once fully written.
func (s *ImageStore) Save(ctx context.Context, prefix string, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "jpg"
	}
	name := fmt.Sprintf("%s_%s_%s.%s", sanitize(prefix), s.now().UTC().Format(timestampLayout), uuid.New().String(), ext)
	final := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", fmt.Errorf("sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("rename image: %w", err)
	}

	return final, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *ImageStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	if !s.contains(path) {
		return fmt.Errorf("path %q is outside %s", path, s.dir)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// List returns the images in the store ordered by path. Temp files from
// in-progress writes are skipped.
func (s *ImageStore) List(ctx context.Context) ([]StoredImage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images := make([]StoredImage, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat image: %w", err)
		}

		images = append(images, StoredImage{
			Path:    filepath.Join(s.dir, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Path < images[j].Path })
	return images, nil
}

func (s *ImageStore) contains(path string) bool {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

func sanitize(prefix string) string {
	prefix = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, prefix)
	if prefix == "" {
		return "image"
	}
	return prefix
}
