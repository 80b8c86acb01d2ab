package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// File persists one file per key under a base directory, mirroring how a
// browser keeps one localStorage entry per key.
type File struct {
	basePath string
}

// NewFile initializes a File store rooted at basePath, creating it if needed.
func NewFile(basePath string) (*File, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("kv: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("kv: ensure base path: %w", err)
	}
	return &File{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *File) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

func (s *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv: read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set replaces the value atomically: readers see either the old or the new
// file, never a partial write.
func (s *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.basePath, ".kv-*")
	if err != nil {
		return fmt.Errorf("kv: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kv: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kv: replace %q: %w", key, err)
	}
	return nil
}

func (s *File) Close() error { return nil }

// path maps a key onto a single file name inside the root. Keys are escaped
// so that separators cannot walk out of the directory.
func (s *File) path(key string) (string, error) {
	if s == nil {
		return "", errors.New("kv: no store configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("kv: key is required")
	}
	name := url.PathEscape(key)
	if name == "." || name == ".." {
		return "", errors.New("kv: invalid key")
	}
	return filepath.Join(s.basePath, name+".json"), nil
}
