// Package pdfops implements the page-level PDF edits: counting, deleting,
// slicing two-up scans into single pages and reordering them.
package pdfops

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrInvalidPage is returned for page numbers outside [1, PageCount].
	ErrInvalidPage = errors.New("pdfops: invalid page number")
	// ErrLastPage is returned when deleting the only page of a document.
	ErrLastPage = errors.New("pdfops: cannot delete the only page")
	// ErrOddPageCount is returned when reordering a document with an odd
	// number of pages.
	ErrOddPageCount = errors.New("pdfops: page count must be even")
)

var configOnce sync.Once

// newConfig returns a pdfcpu configuration that never touches the user's
// config directory.
func newConfig() *model.Configuration {
	configOnce.Do(func() { model.ConfigPath = "disable" })
	return model.NewDefaultConfiguration()
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	ctx, err := readContext(path)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// DeletePage removes the 1-based page from the PDF at path, rewriting the
// file in place.
func DeletePage(path string, page int) error {
	n, err := PageCount(path)
	if err != nil {
		return err
	}
	if page < 1 || page > n {
		return fmt.Errorf("%w: %d of %d", ErrInvalidPage, page, n)
	}
	if n == 1 {
		return ErrLastPage
	}
	if err := api.RemovePagesFile(path, "", []string{strconv.Itoa(page)}, newConfig()); err != nil {
		return fmt.Errorf("pdfops: removing page %d from %s: %w", page, path, err)
	}
	return nil
}

func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdfops: %w", err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, newConfig())
	if err != nil {
		return nil, fmt.Errorf("pdfops: reading %s: %w", path, err)
	}
	return ctx, nil
}

func readContextBytes(data []byte) (*model.Context, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfig())
	if err != nil {
		return nil, fmt.Errorf("pdfops: re-reading document: %w", err)
	}
	return ctx, nil
}

// writeContext writes ctx to path through a temporary file in the same
// directory so a failed write never leaves a truncated PDF behind.
func writeContext(ctx *model.Context, path string) error {
	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return fmt.Errorf("pdfops: encoding document: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfops-*")
	if err != nil {
		return fmt.Errorf("pdfops: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("pdfops: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pdfops: writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("pdfops: writing %s: %w", path, err)
	}
	return nil
}
