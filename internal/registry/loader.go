package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"querygguf/internal/common/fsutil"
	"querygguf/pkg/types"
)

var quantRe = regexp.MustCompile(`(?i)[.\-_]((?:I?Q\d[A-Z0-9_]*)|BF16|F16|F32)$`)

// GGUFScanner walks model directories for *.gguf files.
type GGUFScanner struct {
	// Home resolves relative directories.
	Home string
	Log  zerolog.Logger
}

// NewGGUFScanner returns a scanner resolving relative directories against
// the user's home directory.
func NewGGUFScanner() *GGUFScanner {
	home, _ := os.UserHomeDir()
	return &GGUFScanner{Home: home, Log: zerolog.Nop()}
}

// Scan walks dir recursively and returns every .gguf file (case-insensitive),
// sorted by file name. Unreadable subdirectories are skipped.
func (s *GGUFScanner) Scan(dir string) ([]types.Model, error) {
	abs, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	if !fsutil.IsDir(abs) {
		return nil, fmt.Errorf("directory does not exist: %s", abs)
	}
	var models []types.Model
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != abs && d != nil && d.IsDir() {
				s.Log.Warn().Err(err).Str("dir", p).Msg("skipping unreadable directory")
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".gguf") {
			return nil
		}
		models = append(models, modelFor(p, d))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	}
	sortModels(models)
	return models, nil
}

// ScanAll scans every directory in order and merges the results sorted by
// file name. A directory that cannot be scanned is logged and skipped.
func (s *GGUFScanner) ScanAll(dirs []string) []types.Model {
	var all []types.Model
	for _, dir := range dirs {
		models, err := s.Scan(dir)
		if err != nil {
			s.Log.Warn().Err(err).Str("dir", dir).Msg("model directory skipped")
			continue
		}
		s.Log.Debug().Str("dir", dir).Int("models", len(models)).Msg("model directory scanned")
		all = append(all, models...)
	}
	sortModels(all)
	return all
}

func (s *GGUFScanner) resolve(dir string) (string, error) {
	expanded, err := fsutil.ExpandHome(strings.TrimSpace(dir))
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) && s.Home != "" {
		expanded = fsutil.Resolve(s.Home, expanded)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	return abs, nil
}

func modelFor(p string, d fs.DirEntry) types.Model {
	name := d.Name()
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := types.Model{ID: name, Name: stem, Path: p}
	if q := quantRe.FindStringSubmatch(stem); q != nil {
		m.Quant = strings.ToUpper(q[1])
	}
	if fi, err := d.Info(); err == nil {
		m.SizeBytes = fi.Size()
	}
	return m
}

func sortModels(models []types.Model) {
	sort.SliceStable(models, func(i, j int) bool { return models[i].ID < models[j].ID })
}

// LoadDir scans dir with a default scanner.
func LoadDir(dir string) ([]types.Model, error) {
	return NewGGUFScanner().Scan(dir)
}
