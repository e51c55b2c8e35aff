package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "s.yaml", "llama_cli_path: /opt/llama-cli\nlogging_enabled: true\nlog_directory_path: /logs\ngguf_model_directories: [/m1, /m2]\n")
	s, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if s.LlamaCLIPath != "/opt/llama-cli" || !s.LoggingEnabled || s.LogDirectoryPath != "/logs" || len(s.ModelDirectories) != 2 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "s.json", `{"llama_cli_path":"/bin/llama-cli","gguf_model_directories":["/m"],"default_mode":2}`)
	s, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if s.LlamaCLIPath != "/bin/llama-cli" || len(s.ModelDirectories) != 1 || s.DefaultMode != 2 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "s.toml", "llama_cli_path=\"/x/llama-cli\"\nlogging_enabled=false\ngguf_model_directories=[\"/a\"]\nprompt_directory=\"/p\"\n")
	s, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if s.LlamaCLIPath != "/x/llama-cli" || s.LoggingEnabled || s.PromptDirectory != "/p" || s.ModelDirectories[0] != "/a" {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil { t.Fatalf("expected error on empty path") }
	d := t.TempDir()
	p := writeTempFile(t, d, "s.txt", "not supported")
	if _, err := Load(p); !errors.Is(err, ErrUnsupportedFormat) { t.Fatalf("expected unsupported extension error, got %v", err) }
}

func TestExportRoundTrip(t *testing.T) {
	in := Settings{LlamaCLIPath: "/bin/llama-cli", LoggingEnabled: true, LogDirectoryPath: "/logs", ModelDirectories: []string{"/m1"}, DefaultMode: 3}
	for _, format := range []string{"yaml", "json", "toml"} {
		var buf bytes.Buffer
		if err := Export(&buf, in, format); err != nil { t.Fatalf("%s export: %v", format, err) }
		p := writeTempFile(t, t.TempDir(), "s."+format, buf.String())
		out, err := Load(p)
		if err != nil { t.Fatalf("%s load: %v", format, err) }
		if out.LlamaCLIPath != in.LlamaCLIPath || out.DefaultMode != 3 || len(out.ModelDirectories) != 1 || !out.LoggingEnabled {
			t.Fatalf("%s round trip mismatch: %+v", format, out)
		}
	}
	if err := Export(&bytes.Buffer{}, in, "ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestSettingsFromDocument(t *testing.T) {
	doc := ParseDocument(Render(Settings{
		LlamaCLIPath:     "/opt/llama-cli",
		LoggingEnabled:   true,
		LogDirectoryPath: "/var/log/q",
		ModelDirectories: []string{"/models/a", "/models/b"},
		PromptDirectory:  "/prompts",
	}))
	s := SettingsFrom(doc)
	if s.LlamaCLIPath != "/opt/llama-cli" || !s.LoggingEnabled || s.LogDirectoryPath != "/var/log/q" {
		t.Fatalf("unexpected scalars: %+v", s)
	}
	if len(s.ModelDirectories) != 2 || s.ModelDirectories[1] != "/models/b" {
		t.Fatalf("unexpected model dirs: %v", s.ModelDirectories)
	}
	if s.DefaultMode != 0 {
		t.Fatalf("default mode must be absent after setup, got %d", s.DefaultMode)
	}
	if doc.CountRawPrefix("mode_") != 0 {
		t.Fatalf("rendered document must not contain mode lines")
	}
}
