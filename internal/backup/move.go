package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// isCrossDevice reports whether a rename failed because source and
// destination live on different filesystems (e.g. an external drive).
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// EnsureDir creates the directory and all missing ancestors. Idempotent.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// moveFile relocates src into destDir, preserving the basename. The move
// is atomic with respect to its own completion: either the file ends up at
// the destination, or the source is left untouched. Cross-device moves
// fall back to copy-then-remove, staged through a temp file so a partial
// copy never shadows the destination name.
func moveFile(src, destDir string) (string, error) {
	dest := filepath.Join(destDir, filepath.Base(src))

	err := os.Rename(src, dest)
	if err == nil {
		return dest, nil
	}
	if !isCrossDevice(err) {
		return "", fmt.Errorf("moving %s: %w", src, err)
	}

	if err := copyFile(src, dest); err != nil {
		return "", fmt.Errorf("moving %s across filesystems: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		// The copy succeeded; removing the copy keeps the move all-or-nothing.
		os.Remove(dest)
		return "", fmt.Errorf("removing source %s after copy: %w", src, err)
	}
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".drop2s3-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return err
	}

	success = true
	return nil
}
