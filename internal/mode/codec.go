package mode

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"querygguf/internal/common/fsutil"
)

// ErrTooFewSegments is returned for an entry without both a model and a
// second segment.
var ErrTooFewSegments = errors.New("mode entry needs at least model and prompt segments")

// Codec converts between Records and their stored one-line form.
type Codec struct {
	Bases Bases
	Log   zerolog.Logger
}

// NewCodec returns a Codec resolving relative paths against b.
func NewCodec(b Bases, log zerolog.Logger) *Codec {
	return &Codec{Bases: b, Log: log}
}

// WithLogger returns a copy of c that logs to log.
func (c *Codec) WithLogger(log zerolog.Logger) *Codec {
	cc := *c
	cc.Log = log
	return &cc
}

// Decode parses one stored entry value. Parameter values that fail to parse
// keep their defaults; unknown keys are ignored.
func (c *Codec) Decode(text string) (Record, error) {
	parts := strings.Split(text, Delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 {
		return Record{}, ErrTooFewSegments
	}

	rec := Record{
		ModelPath:  c.resolveModel(parts[0]),
		Parameters: DefaultParameters(),
	}
	rest := parts[1:]
	if isParam(parts[1]) {
		rec.PromptPath = c.Bases.BlankPrompt
	} else {
		rec.PromptPath = c.resolvePrompt(parts[1])
		rest = parts[2:]
	}

	var labels []string
	for _, seg := range rest {
		if !isParam(seg) {
			labels = append(labels, seg)
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		known, err := rec.Parameters.Set(k, v)
		switch {
		case !known:
			c.Log.Debug().Str("key", k).Msg("ignoring unknown mode parameter")
		case err != nil:
			c.Log.Warn().Str("key", k).Err(err).Msg("keeping default for mode parameter")
		}
	}

	if len(labels) < 2 {
		c.Log.Warn().Int("labels", len(labels)).Msg("mode entry is missing name or description")
		return rec, nil
	}
	rec.Name = labels[len(labels)-2]
	rec.Description = labels[len(labels)-1]
	return rec, nil
}

// Encode renders r in canonical order: model, prompt, the seven parameters,
// name, description.
func Encode(r Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	segs := make([]string, 0, 11)
	segs = append(segs, r.ModelPath, r.PromptPath)
	segs = append(segs, r.Parameters.Tokens()...)
	segs = append(segs, r.Name, r.Description)
	return strings.Join(segs, Delimiter), nil
}

func isParam(seg string) bool { return strings.Contains(seg, "=") }

func (c *Codec) resolveModel(raw string) string {
	if filepath.IsAbs(raw) {
		return raw
	}
	return fsutil.Resolve(c.Bases.Home, raw)
}

func (c *Codec) resolvePrompt(raw string) string {
	if filepath.IsAbs(raw) {
		return raw
	}
	for {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "prompts/"), `prompts\`)
		if trimmed == raw {
			break
		}
		raw = trimmed
	}
	return fsutil.Resolve(c.Bases.PromptsDir, raw)
}
