// Package storage holds the saved-file library backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ziadkadry99/pdfeditor/internal/config"
)

// ErrNotFound is returned by Open for unknown keys.
var ErrNotFound = errors.New("storage: object not found")

// Backend stores library files by key. Keys use forward slashes.
type Backend interface {
	// Put stores r under key and returns a backend specific location.
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// New builds the backend selected by cfg.
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case config.StorageLocal, "":
		return NewLocal(cfg.Dir), nil
	case config.StorageS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

// cleanKey rejects keys that would escape the backend's root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("storage: empty key %q", key)
	}
	return k, nil
}
