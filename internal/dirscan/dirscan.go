// Package dirscan renders a directory as a tree plus the contents of its
// text files, and folds that into a prompt file for directory mode.
package dirscan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var textExtensions = map[string]bool{
	"txt": true, "md": true, "rs": true, "py": true, "js": true, "json": true,
	"toml": true, "yaml": true, "yml": true, "css": true, "html": true, "htm": true,
	"xml": true, "csv": true, "log": true, "sh": true, "bash": true, "c": true,
	"cpp": true, "h": true, "hpp": true, "java": true, "go": true, "rb": true,
	"pl": true, "php": true,
}

// IsLikelyText reports whether path has an extension treated as text.
func IsLikelyText(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return textExtensions[strings.ToLower(ext)]
}

// Scan is the rendered view of a directory.
type Scan struct {
	Tree     string
	Contents string
}

// Dir walks dir depth-first in name order.
func Dir(dir string) (Scan, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return Scan{}, fmt.Errorf("directory not found: %s", dir)
	}
	if !fi.IsDir() {
		return Scan{}, fmt.Errorf("not a directory: %s", dir)
	}
	var tree, contents strings.Builder
	if err := walk(dir, "", &tree, &contents); err != nil {
		return Scan{}, err
	}
	return Scan{Tree: tree.String(), Contents: contents.String()}, nil
}

func walk(dir, prefix string, tree, contents *strings.Builder) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for i, e := range entries {
		last := i == len(entries)-1
		branch, indent := "├──", "│   "
		if last {
			branch, indent = "└──", "    "
		}
		fmt.Fprintf(tree, "%s%s %s\n", prefix, branch, e.Name())
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := walk(p, prefix+indent, tree, contents); err != nil {
				return err
			}
			continue
		}
		if !IsLikelyText(p) {
			continue
		}
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		fmt.Fprintf(contents, "\n=== %s ===\n%s\n", e.Name(), b)
	}
	return nil
}

// Combine prepends the prompt at promptPath to a scan of dir.
func Combine(promptPath, dir string) (string, error) {
	prompt, err := os.ReadFile(promptPath)
	if err != nil {
		return "", fmt.Errorf("read original prompt: %w", err)
	}
	s, err := Dir(dir)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\n\nDirectory Structure:\n%s\n\nFile Contents:%s\n", prompt, s.Tree, s.Contents), nil
}

// now is swapped in tests.
var now = time.Now

// WriteCombined writes Combine(promptPath, dir) to
// outDir/combined_prompt_<unix>.txt and returns its path.
func WriteCombined(outDir, promptPath, dir string) (string, error) {
	text, err := Combine(promptPath, dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create prompts directory: %w", err)
	}
	out := filepath.Join(outDir, fmt.Sprintf("combined_prompt_%d.txt", now().Unix()))
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write combined prompt: %w", err)
	}
	return out, nil
}
