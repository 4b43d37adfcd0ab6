package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// FileBlob stores each blob as a single file under a root directory.
//
// Files are written atomically (write to temp, rename) so a crash mid Set
// never leaves a partial blob visible; combined with the existence check this
// gives the write-once guarantee on any POSIX filesystem.
type FileBlob struct {
	root string
}

func NewFileBlob(root string) (*FileBlob, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	return &FileBlob{root: root}, nil
}

// Root returns the directory blobs are stored under.
func (b *FileBlob) Root() string { return b.root }

func (b *FileBlob) path(key string) (string, error) {
	if key == "" {
		return "", ErrKeyEmpty
	}
	// Keys are flat names, never paths.
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrKeyInvalid, key)
	}
	return filepath.Join(b.root, key), nil
}

func (b *FileBlob) Set(ctx context.Context, key string, value []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat blob %s: %w", key, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (b *FileBlob) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}
	value, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return value, nil
}

func (b *FileBlob) Exists(ctx context.Context, key string) (bool, error) {
	path, err := b.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob %s: %w", key, err)
	}
	return true, nil
}
