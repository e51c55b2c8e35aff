// Package launcher turns a mode into a llama-cli command line and opens it
// in a new terminal window.
package launcher

import (
	"strconv"
	"strings"

	"querygguf/internal/mode"
)

// Invocation is one llama-cli run of a mode.
type Invocation struct {
	CLIPath string
	Record  mode.Record
}

type arg struct {
	v     string
	quote bool
}

func (inv Invocation) args() []arg {
	p := inv.Record.Parameters
	out := []arg{
		{v: inv.CLIPath, quote: true},
		{v: "-m"}, {v: inv.Record.ModelPath, quote: true},
		{v: "--file"}, {v: inv.Record.PromptPath, quote: true},
		{v: "--temp"}, {v: mode.FormatFloat(p.Temperature)},
		{v: "--top-k"}, {v: strconv.Itoa(p.TopK)},
		{v: "--top-p"}, {v: mode.FormatFloat(p.TopP)},
		{v: "--ctx-size"}, {v: strconv.Itoa(p.ContextSize)},
		{v: "--threads"}, {v: strconv.Itoa(p.ThreadCount)},
	}
	if p.GPULayers > 0 {
		out = append(out, arg{v: "--n-gpu-layers"}, arg{v: strconv.Itoa(p.GPULayers)})
	}
	if p.InteractiveFirst {
		out = append(out, arg{v: "--interactive-first"})
	}
	return append(out, arg{v: "--no-display-prompt"})
}

// Argv returns the argument vector, program first.
func (inv Invocation) Argv() []string {
	a := inv.args()
	out := make([]string, len(a))
	for i, x := range a {
		out[i] = x.v
	}
	return out
}

// String renders the command line with paths in double quotes, the form
// handed to the terminal shell.
func (inv Invocation) String() string {
	var b strings.Builder
	for i, x := range inv.args() {
		if i > 0 {
			b.WriteByte(' ')
		}
		if x.quote {
			b.WriteByte('"')
			b.WriteString(x.v)
			b.WriteByte('"')
			continue
		}
		b.WriteString(x.v)
	}
	return b.String()
}

// BuildArgs is a shorthand for Invocation{cliPath, rec}.Argv().
func BuildArgs(cliPath string, rec mode.Record) []string {
	return Invocation{CLIPath: cliPath, Record: rec}.Argv()
}

// CommandString is a shorthand for Invocation{cliPath, rec}.String().
func CommandString(cliPath string, rec mode.Record) string {
	return Invocation{CLIPath: cliPath, Record: rec}.String()
}
