// Package wizard creates the configuration document, interactively or from
// a settings file.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"querygguf/internal/common/fsutil"
	"querygguf/internal/config"
	"querygguf/internal/prompt"
	"querygguf/internal/registry"
)

// DefaultLogDirName is created under the application root when logging is
// enabled without a custom directory.
const DefaultLogDirName = "chatlogs"

// now is swapped in tests.
var now = time.Now

// Wizard asks the setup questions on In and reports on Out.
type Wizard struct {
	Root config.Root
	In   prompt.Prompter
	Out  io.Writer
	Log  zerolog.Logger
}

// New returns a Wizard for root.
func New(root config.Root, in prompt.Prompter, out io.Writer, log zerolog.Logger) *Wizard {
	return &Wizard{Root: root, In: in, Out: out, Log: log}
}

// Setup runs the whole flow: confirm replacing an existing document, back it
// up, create the blank prompt, collect answers, validate and write. It
// reports false when the user keeps the existing configuration.
func (w *Wizard) Setup() (bool, error) {
	if w.Root.ConfigExists() {
		fmt.Fprintln(w.Out, "\nExisting Query-GGUF configuration found.")
		replace, err := prompt.YesNo(w.In, w.Out, "Do you want to create a new configuration?")
		if err != nil {
			return false, err
		}
		if !replace {
			fmt.Fprintln(w.Out, "Keeping existing configuration.")
			return false, nil
		}
	}
	fmt.Fprintln(w.Out, "Creating initial prompt directory and blank prompt file...")
	if _, err := w.Root.EnsureBlankPrompt(); err != nil {
		return false, err
	}
	s, err := w.Collect()
	if err != nil {
		return false, err
	}
	if err := Save(w.Root, s, w.Out, w.Log); err != nil {
		return false, err
	}
	return true, nil
}

// Collect asks every setup question. Invalid paths are reported and asked
// again; read errors abort.
func (w *Wizard) Collect() (config.Settings, error) {
	var s config.Settings
	fmt.Fprintln(w.Out, "\n=== Query-GGUF Setup Wizard ===")
	fmt.Fprintln(w.Out, "Please answer the following questions to configure Query-gguf.")

	fmt.Fprintln(w.Out, "\nLLaMA.cpp Setup:")
	fmt.Fprintln(w.Out, "Enter the path to llama-cli executable or its directory")
	for {
		a, err := w.In.Prompt("Path to llama.cpp's llama-cli: ")
		if err != nil {
			return s, err
		}
		p, err := ResolveCLI(a)
		if err == nil {
			s.LlamaCLIPath = p
			break
		}
		fmt.Fprintf(w.Out, "Error: %v. Please try again.\n", err)
	}

	for {
		a, err := w.In.Prompt("Enter path to GGUF models directory (or 'done' to finish): ")
		if err != nil {
			return s, err
		}
		if strings.EqualFold(a, "done") {
			if len(s.ModelDirectories) == 0 {
				fmt.Fprintln(w.Out, "Error: At least one model directory is required.")
				continue
			}
			break
		}
		dir, err := existingDir(a)
		if err != nil {
			fmt.Fprintf(w.Out, "Error: %v. Please try again.\n", err)
			continue
		}
		s.ModelDirectories = append(s.ModelDirectories, dir)
	}

	for {
		a, err := w.In.Prompt(fmt.Sprintf("Enter path to prompt files directory (Enter for %s): ", w.Root.PromptsDir()))
		if err != nil {
			return s, err
		}
		if a == "" {
			s.PromptDirectory = config.PromptsDirName
			break
		}
		dir, err := existingDir(a)
		if err != nil {
			fmt.Fprintf(w.Out, "Error: %v. Please try again.\n", err)
			continue
		}
		s.PromptDirectory = dir
		break
	}

	enable, err := prompt.YesNo(w.In, w.Out, "Enable logging?")
	if err != nil {
		return s, err
	}
	s.LoggingEnabled = enable
	if enable {
		dir, err := w.logDirectory()
		if err != nil {
			return s, err
		}
		s.LogDirectoryPath = dir
	}
	return s, nil
}

func (w *Wizard) logDirectory() (string, error) {
	def := filepath.Join(w.Root.Dir, DefaultLogDirName)
	fmt.Fprintf(w.Out, "\nChat logs will be saved in: %s\n", def)
	custom, err := prompt.YesNo(w.In, w.Out, "Would you like to use a different directory for logs?")
	if err != nil {
		return "", err
	}
	if !custom {
		if err := os.MkdirAll(def, 0o755); err != nil {
			return "", fmt.Errorf("create log directory: %w", err)
		}
		return def, nil
	}
	for {
		a, err := w.In.Prompt("Enter custom path for log files: ")
		if err != nil {
			return "", err
		}
		dir, err := existingDir(a)
		if err == nil {
			return dir, nil
		}
		fmt.Fprintf(w.Out, "Error: %v. Please try again.\n", err)
	}
}

// ResolveCLI accepts the llama-cli executable or a directory containing it
// and returns the canonical executable path.
func ResolveCLI(input string) (string, error) {
	p, err := fsutil.Normalize(input)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		if strings.Contains(filepath.Base(p), "llama-cli") {
			return p, nil
		}
		return "", fmt.Errorf("not a llama-cli executable: %s", p)
	}
	name := "llama-cli"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	cli := filepath.Join(p, name)
	if fi, err := os.Stat(cli); err == nil && !fi.IsDir() {
		return cli, nil
	}
	return "", fmt.Errorf("could not find llama-cli executable at or in: %s", input)
}

func existingDir(input string) (string, error) {
	p, err := fsutil.Normalize(input)
	if err != nil {
		return "", err
	}
	if !fsutil.IsDir(p) {
		return "", fmt.Errorf("path is not a directory: %s", p)
	}
	return p, nil
}

// Validate checks the directories in s. Model directories without any
// .gguf file only produce a warning on out.
func Validate(root config.Root, s config.Settings, out io.Writer) error {
	if strings.TrimSpace(s.LlamaCLIPath) == "" {
		return errors.New("llama_cli_path is required")
	}
	if len(s.ModelDirectories) == 0 {
		return errors.New("at least one model directory is required")
	}
	for _, dir := range s.ModelDirectories {
		models, err := registry.LoadDir(dir)
		if err != nil {
			return fmt.Errorf("invalid model directory path: %s", dir)
		}
		if len(models) == 0 {
			fmt.Fprintf(out, "Warning: No .gguf files found in directory: %s\n", dir)
		}
	}
	if s.PromptDirectory != "" && s.PromptDirectory != config.PromptsDirName && !fsutil.IsDir(s.PromptDirectory) {
		return fmt.Errorf("invalid prompt directory path: %s", s.PromptDirectory)
	}
	if s.LoggingEnabled {
		dir := fsutil.Resolve(root.Home, s.LogDirectoryPath)
		if s.LogDirectoryPath == "" || !fsutil.IsDir(dir) {
			return fmt.Errorf("invalid log directory path: %s", s.LogDirectoryPath)
		}
		probe := filepath.Join(dir, "query_gguf_write_test.tmp")
		if err := os.WriteFile(probe, nil, 0o644); err != nil {
			return fmt.Errorf("cannot write to log directory: %w", err)
		}
		_ = os.Remove(probe)
	}
	for _, v := range append([]string{s.LlamaCLIPath, s.LogDirectoryPath, s.PromptDirectory}, s.ModelDirectories...) {
		if strings.ContainsAny(v, "\"\r\n") {
			return fmt.Errorf("path cannot be stored in the configuration file: %q", v)
		}
	}
	return nil
}

// Backup copies an existing configuration document next to itself as
// query_gguf_config_<unix>.toml.bak. It returns "" when there is nothing to
// back up.
func Backup(root config.Root) (string, error) {
	if !root.ConfigExists() {
		return "", nil
	}
	b, err := os.ReadFile(root.ConfigPath())
	if err != nil {
		return "", fmt.Errorf("read config for backup: %w", err)
	}
	dst := filepath.Join(root.Dir, fmt.Sprintf("query_gguf_config_%d.toml.bak", now().Unix()))
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	return dst, nil
}

// Save validates s, backs up any existing document, ensures the blank prompt
// and writes the rendered document.
func Save(root config.Root, s config.Settings, out io.Writer, log zerolog.Logger) error {
	if err := Validate(root, s, out); err != nil {
		return err
	}
	backup, err := Backup(root)
	if err != nil {
		return err
	}
	if backup != "" {
		fmt.Fprintf(out, "Created backup of existing config: %s\n", backup)
	}
	if _, err := root.EnsureBlankPrompt(); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(root.ConfigPath(), []byte(config.Render(s)), 0o644); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	log.Info().Str("path", root.ConfigPath()).Int("model_dirs", len(s.ModelDirectories)).Msg("configuration written")
	fmt.Fprintf(out, "Configuration saved to: %s\n", root.ConfigPath())
	return nil
}

// Import writes the configuration from a YAML, JSON or TOML settings file.
func Import(root config.Root, path string, out io.Writer, log zerolog.Logger) error {
	s, err := config.Load(path)
	if err != nil {
		return err
	}
	if s.PromptDirectory == "" {
		s.PromptDirectory = config.PromptsDirName
	}
	return Save(root, s, out, log)
}
