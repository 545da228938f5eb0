// Package workspace manages the per-user working folders that uploads,
// slicing intermediates and processed output live in.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Folder names one of the working folders.
type Folder string

const (
	FolderUploads Folder = "uploads"
	FolderOld     Folder = "old"
	FolderNew     Folder = "new"
)

var (
	ErrUnknownFolder = errors.New("workspace: unknown folder")
	ErrInvalidName   = errors.New("workspace: invalid file name")
	ErrNotFound      = errors.New("workspace: file not found")
)

// ParseFolder validates a folder name.
func ParseFolder(s string) (Folder, error) {
	switch f := Folder(s); f {
	case FolderUploads, FolderOld, FolderNew:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFolder, s)
}

// FolderFor maps a client folder_type to a folder: "processed" is the
// slice output folder, anything else the upload folder.
func FolderFor(folderType string) Folder {
	if folderType == "processed" {
		return FolderNew
	}
	return FolderUploads
}

// Dirs are the configured folder locations.
type Dirs struct {
	Uploads string
	Old     string
	New     string
}

// Workspace is a set of working folders.
type Workspace struct {
	dirs     Dirs
	patterns []string
}

// New returns a workspace rooted at dirs. patterns select the files Clean
// removes; nil means every file.
func New(dirs Dirs, patterns []string) *Workspace {
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	return &Workspace{dirs: dirs, patterns: patterns}
}

// For returns the workspace of one user: the same folders with a per-user
// subdirectory.
func (w *Workspace) For(user string) *Workspace {
	sub := SecureFilename(user)
	if sub == "" {
		sub = "_"
	}
	return &Workspace{
		dirs: Dirs{
			Uploads: filepath.Join(w.dirs.Uploads, sub),
			Old:     filepath.Join(w.dirs.Old, sub),
			New:     filepath.Join(w.dirs.New, sub),
		},
		patterns: w.patterns,
	}
}

// Dir returns the directory for f.
func (w *Workspace) Dir(f Folder) string {
	switch f {
	case FolderOld:
		return w.dirs.Old
	case FolderNew:
		return w.dirs.New
	default:
		return w.dirs.Uploads
	}
}

// Ensure creates all folders.
func (w *Workspace) Ensure() error {
	for _, dir := range []string{w.dirs.Uploads, w.dirs.Old, w.dirs.New} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("workspace: creating %s: %w", dir, err)
		}
	}
	return nil
}

// Path returns the sanitized location of name in f. It does not check that
// the file exists.
func (w *Workspace) Path(f Folder, name string) (string, error) {
	clean := SecureFilename(name)
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(w.Dir(f), clean), nil
}

// Existing is Path plus an existence check.
func (w *Workspace) Existing(f Folder, name string) (string, error) {
	path, err := w.Path(f, name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	return path, nil
}

// Save writes r to name in f and returns the stored path.
func (w *Workspace) Save(f Folder, name string, r io.Reader) (string, error) {
	if err := w.Ensure(); err != nil {
		return "", err
	}
	path, err := w.Path(f, name)
	if err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("workspace: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("workspace: writing %s: %w", filepath.Base(path), err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("workspace: writing %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// URL is the address a viewer loads a workspace file from.
func URL(f Folder, name string) string {
	return "/files/" + string(f) + "/" + url.PathEscape(name)
}

// Resolve maps a URL produced by URL, with or without a query string, back
// to a file in w.
func (w *Workspace) Resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("workspace: %w", err)
	}
	rest, ok := strings.CutPrefix(u.Path, "/files/")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, raw)
	}
	folder, name, ok := strings.Cut(rest, "/")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, raw)
	}
	f, err := ParseFolder(folder)
	if err != nil {
		return "", err
	}
	return w.Existing(f, name)
}
