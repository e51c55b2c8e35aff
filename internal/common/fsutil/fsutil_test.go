package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func setHome(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	setHome(t, home)
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	sub := "test-sub"
	exp, err := ExpandHome("~/" + sub)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if runtime.GOOS == "windows" {
		if filepath.Base(exp) != sub {
			t.Fatalf("unexpected expanded path: %q", exp)
		}
	} else {
		expected := filepath.Join(home, sub)
		if exp != expected {
			t.Fatalf("expected %q, got %q", expected, exp)
		}
	}
}

func TestNormalize_ExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	got, err := Normalize(filepath.Join(dir, "x", ".."))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalize_TildeAndRelative(t *testing.T) {
	home := t.TempDir()
	setHome(t, home)
	if err := os.Mkdir(filepath.Join(home, "models"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	canonHome, _ := filepath.EvalSymlinks(home)

	got, err := Normalize("  ~/models  ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != filepath.Join(canonHome, "models") {
		t.Fatalf("unexpected %q", got)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(home); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	got, err = Normalize("models")
	if err != nil {
		t.Fatalf("normalize relative: %v", err)
	}
	if got != filepath.Join(canonHome, "models") {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNormalize_MissingTarget(t *testing.T) {
	_, err := Normalize(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatalf("expected error for missing path")
	}
	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PathError, got %T", err)
	}
	if pe.Op != "canonicalize" || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Normalize("   "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestResolve(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "base")
	abs := filepath.Join(string(filepath.Separator), "models", "a.gguf")
	cases := []struct{ raw, want string }{
		{abs, abs},
		{"models/a.gguf", filepath.Join(base, "models", "a.gguf")},
		{"x.txt", filepath.Join(base, "x.txt")},
	}
	for _, c := range cases {
		if got := Resolve(base, c.raw); got != c.want {
			t.Fatalf("Resolve(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.toml")
	if err := os.WriteFile(p, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFileAtomic(p, []byte("new"), 0o644); err != nil {
		t.Fatalf("atomic write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "new" {
		t.Fatalf("got %q err=%v", b, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
	if !PathExists(p) || PathExists(filepath.Join(dir, "nope")) {
		t.Fatalf("PathExists mismatch")
	}
	if !IsDir(dir) || IsDir(p) {
		t.Fatalf("IsDir mismatch")
	}
}
