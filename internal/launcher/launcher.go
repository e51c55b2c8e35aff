package launcher

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fnStart starts a detached process and does not wait for it. Swapped in
// tests.
var fnStart = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

type noTerminalError struct {
	goos  string
	tried []string
	last  error
}

func (e noTerminalError) Error() string {
	if len(e.tried) == 0 {
		return "no terminal strategy for " + e.goos
	}
	msg := "no terminal could be opened (tried " + strings.Join(e.tried, ", ") + ")"
	if e.last != nil {
		msg += ": " + e.last.Error()
	}
	return msg
}

func (e noTerminalError) Unwrap() error { return e.last }

// IsNoTerminal reports whether err means every terminal strategy failed.
func IsNoTerminal(err error) bool {
	var e noTerminalError
	return errors.As(err, &e)
}

// Result describes a started launch.
type Result struct {
	ID       string
	Terminal string
	Command  string
}

// Launcher opens invocations in a new terminal window.
type Launcher struct {
	GOOS    string
	Log     zerolog.Logger
	Journal *Journal
}

// New returns a Launcher for the running OS. journal may be nil.
func New(log zerolog.Logger, journal *Journal) *Launcher {
	return &Launcher{GOOS: runtime.GOOS, Log: log, Journal: journal}
}

// Launch tries each terminal strategy for the OS in order and returns once
// one has started. The terminal process is not waited on.
func (l *Launcher) Launch(inv Invocation) (Result, error) {
	if strings.TrimSpace(inv.CLIPath) == "" {
		return Result{}, errors.New("llama_cli_path is not configured")
	}
	res := Result{ID: uuid.NewString(), Command: inv.String()}
	var tried []string
	var last error
	for _, t := range Terminals(l.GOOS) {
		tried = append(tried, t.Name)
		if err := fnStart(t.Program, t.Args(res.Command)...); err != nil {
			l.Log.Debug().Err(err).Str("terminal", t.Name).Msg("terminal failed to start")
			last = err
			continue
		}
		res.Terminal = t.Name
		l.Log.Info().Str("launch_id", res.ID).Str("terminal", t.Name).Str("mode", inv.Record.Name).Msg("launched llama-cli")
		if l.Journal != nil {
			if err := l.Journal.Record(Entry{
				ID:       res.ID,
				Time:     time.Now(),
				Mode:     inv.Record.Name,
				Model:    inv.Record.ModelPath,
				Prompt:   inv.Record.PromptPath,
				Terminal: t.Name,
				Argv:     inv.Argv(),
			}); err != nil {
				l.Log.Warn().Err(err).Msg("launch journal write failed")
			}
		}
		return res, nil
	}
	return Result{}, noTerminalError{goos: l.GOOS, tried: tried, last: last}
}
