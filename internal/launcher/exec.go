package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Cmd is a foreground process attached to the current terminal.
type Cmd struct {
	Path string
	Args []string
	Env  map[string]string // additional env vars
	Dir  string
}

// fnRun runs a foreground command. Swapped in tests.
var fnRun = func(cmd *exec.Cmd) error { return cmd.Run() }

// RunCmd runs c with stdio inherited and waits for it to exit.
func RunCmd(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := fnRun(cmd); err != nil {
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}
