package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// PathError reports a path that could not be normalized.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Normalize turns user input into an absolute, canonical path.
// The target must exist: symlinks are resolved against the filesystem.
func Normalize(path string) (string, error) {
	raw := strings.TrimSpace(path)
	if raw == "" {
		return "", &PathError{Op: "normalize", Path: path, Err: errors.New("empty path")}
	}
	expanded, err := ExpandHome(raw)
	if err != nil {
		return "", &PathError{Op: "expand", Path: raw, Err: err}
	}
	if !filepath.IsAbs(expanded) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", &PathError{Op: "getwd", Path: raw, Err: err}
		}
		expanded = filepath.Join(cwd, expanded)
	}
	canonical, err := filepath.EvalSymlinks(expanded)
	if err != nil {
		return "", &PathError{Op: "canonicalize", Path: raw, Err: err}
	}
	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return "", &PathError{Op: "canonicalize", Path: raw, Err: err}
	}
	if !utf8.ValidString(canonical) {
		return "", &PathError{Op: "canonicalize", Path: raw, Err: errors.New("path contains invalid unicode")}
	}
	return canonical, nil
}

// Resolve returns raw unchanged when it is already absolute, otherwise joins it
// onto base. It never touches the filesystem, so stored paths whose target is
// temporarily missing still resolve.
func Resolve(base, raw string) string {
	if filepath.IsAbs(raw) {
		return raw
	}
	return filepath.Join(base, strings.TrimLeft(raw, `/\`))
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
