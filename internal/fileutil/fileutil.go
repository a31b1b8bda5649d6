package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// NewWorkDir creates a unique working directory under base and returns it
// with a cleanup func. The random suffix keeps concurrent runs from colliding
// on temp paths.
func NewWorkDir(base, prefix string) (string, func(), error) {
	dir := filepath.Join(base, fmt.Sprintf("%s-%s", prefix, uuid.NewString()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

// MoveFile renames src to dest, falling back to copy-and-remove when the
// rename crosses filesystems.
func MoveFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure destination dir: %w", err)
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := CopyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFile copies src to dest, preserving the source's permission bits.
func CopyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("flush destination: %w", err)
	}
	return nil
}
