// Package cli is the querygguf command line: the interactive menu, the
// manual and directory flows, and the cobra subcommands around them.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// run executes args against the given stdio and returns the exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cfg := &Config{LogLvl: envStr(EnvLogLevel, "info")}
	root := buildRootCmdWith(cfg, streams{in: in, out: out, err: errOut})
	root.SetArgs(trimArgs(args))
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, errorStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}

// MainWithArgs runs the CLI with explicit arguments and the process stdio.
func MainWithArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/querygguf.
func Main() int { return MainWithArgs(os.Args[1:]) }
