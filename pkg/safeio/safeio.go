// Package safeio provides path hygiene and atomic file writes.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrPathTraversal is returned for user paths that climb out of their base.
var ErrPathTraversal = errors.New("path traversal detected")

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// A leading "~/" is expanded to the user's home directory.
func CleanUserPath(p string) (string, error) {
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	c := filepath.Clean(p)
	for _, part := range strings.Split(filepath.ToSlash(c), "/") {
		if part == ".." {
			return "", ErrPathTraversal
		}
	}
	return c, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial file. An existing file's
// permissions are preserved; new files get 0644.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := fsys.Stat(path); err == nil {
		if m := st.Mode() & 0o777; m != 0 {
			mode = m
		}
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fsys.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := fsys.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
