package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Settings is the typed view of the scalar keys of the configuration
// document. Modes are not part of it; see package store.
type Settings struct {
	LlamaCLIPath     string   `json:"llama_cli_path" yaml:"llama_cli_path" toml:"llama_cli_path"`
	LoggingEnabled   bool     `json:"logging_enabled" yaml:"logging_enabled" toml:"logging_enabled"`
	LogDirectoryPath string   `json:"log_directory_path,omitempty" yaml:"log_directory_path,omitempty" toml:"log_directory_path,omitempty"`
	ModelDirectories []string `json:"gguf_model_directories" yaml:"gguf_model_directories" toml:"gguf_model_directories"`
	// PromptDirectory is kept for reference only. Relative prompt paths in
	// mode entries always resolve under <root>/prompts.
	PromptDirectory  string   `json:"prompt_directory,omitempty" yaml:"prompt_directory,omitempty" toml:"prompt_directory,omitempty"`
	DefaultMode      int      `json:"default_mode,omitempty" yaml:"default_mode,omitempty" toml:"default_mode,omitempty"`
}

const (
	KeyLlamaCLIPath     = "llama_cli_path"
	KeyLoggingEnabled   = "logging_enabled"
	KeyLogDirectoryPath = "log_directory_path"
	KeyModelDirPrefix   = "gguf_model_directory"
	KeyPromptDirectory  = "prompt_directory"
	KeyDefaultMode      = "default_mode"
	KeyModePrefix       = "mode"
)

// ErrUnsupportedFormat is returned for unknown settings file formats.
var ErrUnsupportedFormat = errors.New("unsupported settings format")

// SettingsFrom projects the scalar keys of d. Unparseable booleans and
// integers fall back to their zero values.
func SettingsFrom(d *Document) Settings {
	s := Settings{
		LlamaCLIPath:     d.Field(KeyLlamaCLIPath),
		LogDirectoryPath: d.Field(KeyLogDirectoryPath),
		ModelDirectories: d.IndexedFields(KeyModelDirPrefix),
		PromptDirectory:  d.Field(KeyPromptDirectory),
	}
	if b, err := strconv.ParseBool(d.Field(KeyLoggingEnabled)); err == nil {
		s.LoggingEnabled = b
	}
	if n, err := strconv.Atoi(d.Field(KeyDefaultMode)); err == nil {
		s.DefaultMode = n
	}
	return s
}

// Load reads a settings file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, fmt.Errorf("empty settings path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &s); err != nil {
			return s, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return s, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return s, nil
}

// Export writes s to w as yaml, json or toml.
func Export(w io.Writer, s Settings, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "toml":
		return toml.NewEncoder(w).Encode(s)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
