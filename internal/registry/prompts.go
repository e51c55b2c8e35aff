package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"querygguf/pkg/types"
)

// PromptScanner lists prompt files under a prompts directory.
type PromptScanner struct {
	Dir string
	Log zerolog.Logger
}

// NewPromptScanner returns a scanner for dir.
func NewPromptScanner(dir string, log zerolog.Logger) *PromptScanner {
	return &PromptScanner{Dir: dir, Log: log}
}

// Scan creates the directory when missing and returns every regular file
// below it with canonical paths, sorted by path. Hidden files are skipped.
func (s *PromptScanner) Scan() ([]types.Prompt, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create prompts directory: %w", err)
	}
	var prompts []types.Prompt
	err := filepath.WalkDir(s.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != s.Dir {
				s.Log.Warn().Err(err).Str("path", p).Msg("skipping prompt path")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			return err
		}
		if d.IsDir() || d.Name()[0] == '.' {
			return nil
		}
		canon, err := filepath.EvalSymlinks(p)
		if err != nil {
			s.Log.Warn().Err(err).Str("path", p).Msg("could not resolve prompt path")
			return nil
		}
		if canon, err = filepath.Abs(canon); err != nil {
			return nil
		}
		rel, err := filepath.Rel(s.Dir, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		prompts = append(prompts, types.Prompt{Name: filepath.ToSlash(rel), Path: canon})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan prompts %s: %w", s.Dir, err)
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i].Path < prompts[j].Path })
	return prompts, nil
}
