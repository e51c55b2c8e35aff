package config

import (
	"fmt"
	"strings"
)

// Render produces the initial configuration document for s. Modes are
// appended later by the store.
func Render(s Settings) string {
	var b strings.Builder
	b.WriteString("# QueryGGUF Configuration File\n\n")
	fmt.Fprintf(&b, "%s = \"%s\"\n\n", KeyLlamaCLIPath, s.LlamaCLIPath)

	fmt.Fprintf(&b, "%s = %t\n", KeyLoggingEnabled, s.LoggingEnabled)
	if s.LoggingEnabled {
		fmt.Fprintf(&b, "%s = \"%s\"\n", KeyLogDirectoryPath, s.LogDirectoryPath)
	}
	b.WriteString("\n")

	for i, dir := range s.ModelDirectories {
		fmt.Fprintf(&b, "%s_%d = \"%s\"\n", KeyModelDirPrefix, i+1, dir)
	}
	b.WriteString("\n")

	prompts := s.PromptDirectory
	if prompts == "" {
		prompts = PromptsDirName
	}
	fmt.Fprintf(&b, "%s = \"%s\"\n\n", KeyPromptDirectory, prompts)

	if s.DefaultMode > 0 {
		fmt.Fprintf(&b, "%s = %d\n\n", KeyDefaultMode, s.DefaultMode)
	}

	b.WriteString("# Additional model directories can be added as:\n")
	b.WriteString("# gguf_model_directory_2 = \"/path/to/more/models\"\n\n")
	b.WriteString("# Saved modes will appear as:\n")
	b.WriteString("# mode_1 = \"model_path|prompt_path|temp=0.8|top_k=40|top_p=0.9|ctx_size=2000|threads=7|gpu_layers=0|interactive_first=true|name|description\"\n")
	return b.String()
}
