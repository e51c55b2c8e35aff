// Package prompt reads interactive answers from a terminal or any reader.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

// ErrAborted is returned when the user interrupts input with Ctrl+C.
var ErrAborted = errors.New("input aborted")

// Prompter asks one question and returns the trimmed answer.
type Prompter interface {
	Prompt(question string) (string, error)
}

// Reader prompts on out and reads lines from in.
type Reader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewReader returns a line-based Prompter, used when stdin is not a
// terminal and in tests.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{in: bufio.NewReader(in), out: out}
}

func (r *Reader) Prompt(question string) (string, error) {
	fmt.Fprint(r.out, question)
	line, err := r.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Liner prompts with line editing and history.
type Liner struct {
	line        *liner.State
	historyFile string
}

// NewLiner takes over the terminal until Close. History is loaded from and
// saved to historyFile when it is not empty.
func NewLiner(historyFile string) *Liner {
	l := &Liner{line: liner.NewLiner(), historyFile: historyFile}
	l.line.SetCtrlCAborts(true)
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			l.line.ReadHistory(f)
			f.Close()
		}
	}
	return l
}

// TerminalSupported reports whether Liner can drive the current terminal.
func TerminalSupported() bool { return liner.TerminalSupported() }

func (l *Liner) Prompt(question string) (string, error) {
	s, err := l.line.Prompt(question)
	if err == liner.ErrPromptAborted {
		return "", ErrAborted
	}
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s != "" {
		l.line.AppendHistory(s)
	}
	return s, nil
}

// Close saves history and restores the terminal.
func (l *Liner) Close() error {
	if l.historyFile != "" {
		if f, err := os.OpenFile(l.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			l.line.WriteHistory(f)
			f.Close()
		}
	}
	return l.line.Close()
}

// YesNo asks until the answer is y/yes or n/no.
func YesNo(p Prompter, out io.Writer, question string) (bool, error) {
	for {
		a, err := p.Prompt(question + " (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(a) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(out, "Please enter 'y' or 'n'")
	}
}

// Choose asks for a number in [1, n].
func Choose(p Prompter, question string, n int) (int, error) {
	a, err := p.Prompt(question)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(a)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", a)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("please enter a number between 1 and %d", n)
	}
	return i, nil
}

// Value asks for a value of type T with a default. An empty answer keeps
// def; an unparseable one is reported and asked again.
func Value[T any](p Prompter, out io.Writer, question string, def T, parse func(string) (T, error)) (T, error) {
	for {
		a, err := p.Prompt(fmt.Sprintf("%s (default %v): ", question, def))
		if err != nil {
			return def, err
		}
		if a == "" {
			return def, nil
		}
		v, err := parse(a)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(out, "Invalid value %q, try again.\n", a)
	}
}
