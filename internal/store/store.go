// Package store keeps the ordered set of saved modes in the configuration
// document. Every call reads the whole file; every mutation rewrites it.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"querygguf/internal/config"
	"querygguf/internal/mode"
)

// Entry is one decoded mode. Position is its 1-based place in List order;
// Index is the N of its mode_<N> key.
type Entry struct {
	Position int
	Index    int
	Key      string
	Record   mode.Record
}

type modeNotFoundError struct{ position int }

func (e modeNotFoundError) Error() string {
	return "mode not found: " + strconv.Itoa(e.position)
}

// ErrModeNotFound returns an error for a selection outside the stored modes.
func ErrModeNotFound(position int) error { return modeNotFoundError{position: position} }

// IsModeNotFound reports whether err indicates a selection with no mode.
func IsModeNotFound(err error) bool {
	var e modeNotFoundError
	return errors.As(err, &e)
}

// Store is backed by the configuration document under Root.
type Store struct {
	root  config.Root
	codec *mode.Codec
	log   zerolog.Logger
}

// New returns a Store rooted at root.
func New(root config.Root, log zerolog.Logger) *Store {
	bases := mode.Bases{
		Home:        root.Home,
		PromptsDir:  root.PromptsDir(),
		BlankPrompt: root.BlankPromptPath(),
	}
	return &Store{root: root, codec: mode.NewCodec(bases, log), log: log}
}

// Root returns the configuration root the store reads from.
func (s *Store) Root() config.Root { return s.root }

// Codec returns the codec used to decode entries.
func (s *Store) Codec() *mode.Codec { return s.codec }

// Path is the configuration document location.
func (s *Store) Path() string { return s.root.ConfigPath() }

// Settings returns the scalar configuration keys. A missing or unreadable
// file yields zero Settings.
func (s *Store) Settings() config.Settings {
	d, err := config.ReadDocument(s.Path())
	if err != nil {
		return config.Settings{}
	}
	return config.SettingsFrom(d)
}

// List returns every decodable mode ordered by the numeric suffix of its key.
// Malformed entries are skipped with a warning; an unreadable file yields an
// empty list.
func (s *Store) List() []Entry {
	d, err := config.ReadDocument(s.Path())
	if err != nil {
		s.log.Debug().Err(err).Str("path", s.Path()).Msg("no modes loaded")
		return nil
	}
	var out []Entry
	for _, ie := range d.IndexedEntries(config.KeyModePrefix) {
		log := s.log.With().Int("index", ie.Index).Logger()
		rec, err := s.codec.WithLogger(log).Decode(ie.Value)
		if err != nil {
			log.Warn().
				Int("segments", len(strings.Split(ie.Value, mode.Delimiter))).
				Str("reason", err.Error()).
				Msg("skipping malformed mode entry")
			continue
		}
		out = append(out, Entry{Position: len(out) + 1, Index: ie.Index, Key: ie.Key, Record: rec})
	}
	return out
}

// Get returns the mode at 1-based List position.
func (s *Store) Get(position int) (Entry, error) {
	entries := s.List()
	if position < 1 || position > len(entries) {
		return Entry{}, ErrModeNotFound(position)
	}
	return entries[position-1], nil
}

// ByIndex returns the mode stored under mode_<index>. When a hand-edited
// file repeats the key, the last one wins: Append always writes below
// existing entries, so that is the newest.
func (s *Store) ByIndex(index int) (Entry, error) {
	entries := s.List()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Index == index {
			return entries[i], nil
		}
	}
	return Entry{}, ErrModeNotFound(index)
}

// DefaultIndex reads default_mode. It reports false when the key is absent
// or not a number.
func (s *Store) DefaultIndex() (int, bool) {
	v := config.ReadField(s.Path(), config.KeyDefaultMode)
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Default returns the mode default_mode points at.
func (s *Store) Default() (Entry, bool) {
	n, ok := s.DefaultIndex()
	if !ok {
		return Entry{}, false
	}
	e, err := s.ByIndex(n)
	if err != nil {
		return Entry{}, false
	}
	return e, true
}

// NextIndex is one more than the number of lines starting with "mode_",
// whether or not those lines decode.
func (s *Store) NextIndex() (int, error) {
	d, err := s.load()
	if err != nil {
		return 0, err
	}
	return nextIndex(d), nil
}

func nextIndex(d *config.Document) int {
	return d.CountRawPrefix(config.KeyModePrefix+"_") + 1
}

// Append writes rec as a new mode_<N> entry preceded by a header comment and
// returns N. With makeDefault, default_mode is moved to the end and set to N.
func (s *Store) Append(rec mode.Record, makeDefault bool) (int, error) {
	enc, err := mode.Encode(rec)
	if err != nil {
		return 0, err
	}
	d, err := s.load()
	if err != nil {
		return 0, err
	}
	n := nextIndex(d)
	d.Append(
		"",
		fmt.Sprintf("# Mode %d - %s - %s", n, rec.Name, rec.Description),
		fmt.Sprintf(`%s_%d = "%s"`, config.KeyModePrefix, n, enc),
	)
	if makeDefault {
		setDefault(d, n)
	}
	if err := s.save(d); err != nil {
		return 0, err
	}
	s.log.Info().Int("index", n).Str("name", rec.Name).Bool("default", makeDefault).Msg("mode saved")
	return n, nil
}

// SetDefault points default_mode at index.
func (s *Store) SetDefault(index int) error {
	if index < 1 {
		return ErrModeNotFound(index)
	}
	d, err := s.load()
	if err != nil {
		return err
	}
	setDefault(d, index)
	return s.save(d)
}

func setDefault(d *config.Document, n int) {
	d.RemoveKey(config.KeyDefaultMode)
	d.AppendAssignment(config.KeyDefaultMode, n)
}

// load reads the document for a mutation. A missing file is an empty
// document; any other read failure is returned.
func (s *Store) load() (*config.Document, error) {
	d, err := config.ReadDocument(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return config.ParseDocument(""), nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) save(d *config.Document) error {
	if err := s.root.EnsureDirs(); err != nil {
		return err
	}
	return d.WriteFile(s.Path())
}
