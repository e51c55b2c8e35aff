package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppDirName      = "query_gguf"
	ConfigFileName  = "query_gguf_config.toml"
	PromptsDirName  = "prompts"
	BlankPromptName = "blankprompt.txt"
	BlankPromptBody = "# Blank prompt file\n"

	// RootEnv overrides the application directory.
	RootEnv = "QUERYGGUF_ROOT"
)

// Root locates every file the launcher owns. It is computed once at startup
// and passed to the components that need it.
type Root struct {
	// Dir is the application directory, normally <home>/query_gguf.
	Dir string
	// Home is the base for relative model paths.
	Home string
}

// NewRoot builds a Root from explicit directories.
func NewRoot(dir, home string) Root { return Root{Dir: dir, Home: home} }

// DefaultRoot resolves <home>/query_gguf, honoring QUERYGGUF_ROOT when set.
func DefaultRoot() (Root, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Root{}, fmt.Errorf("could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, AppDirName)
	if v := os.Getenv(RootEnv); v != "" {
		dir = v
	}
	return Root{Dir: dir, Home: home}, nil
}

func (r Root) ConfigPath() string      { return filepath.Join(r.Dir, ConfigFileName) }
func (r Root) PromptsDir() string      { return filepath.Join(r.Dir, PromptsDirName) }
func (r Root) BlankPromptPath() string { return filepath.Join(r.PromptsDir(), BlankPromptName) }

// ConfigExists reports whether the configuration document is present.
func (r Root) ConfigExists() bool {
	fi, err := os.Stat(r.ConfigPath())
	return err == nil && !fi.IsDir()
}

// EnsureDirs creates the application and prompts directories.
func (r Root) EnsureDirs() error {
	if err := os.MkdirAll(r.PromptsDir(), 0o755); err != nil {
		return fmt.Errorf("create prompts directory: %w", err)
	}
	return nil
}

// EnsureBlankPrompt writes the blank prompt sentinel and returns its path.
func (r Root) EnsureBlankPrompt() (string, error) {
	if err := r.EnsureDirs(); err != nil {
		return "", err
	}
	p := r.BlankPromptPath()
	if err := os.WriteFile(p, []byte(BlankPromptBody), 0o644); err != nil {
		return "", fmt.Errorf("create blank prompt file: %w", err)
	}
	return p, nil
}
