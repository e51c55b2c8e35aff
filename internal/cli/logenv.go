package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables read by the CLI.
const (
	EnvLogLevel = "QUERYGGUF_LOG_LEVEL"
	EnvLogJSON  = "QUERYGGUF_LOG_JSON"
	EnvEditor   = "EDITOR"
)

// newLogger returns a logger on w at level (debug|info|warn|error). Output is
// human readable unless QUERYGGUF_LOG_JSON is set. Unknown levels fall back
// to info.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if !envBool(EnvLogJSON, false) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(lvl).
		With().Timestamp().Logger()
}

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}
