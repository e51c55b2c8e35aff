package launcher

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querygguf/internal/mode"
)

type started struct {
	name string
	args []string
}

func stubStart(t *testing.T, fail map[string]bool) *[]started {
	t.Helper()
	var calls []started
	old := fnStart
	fnStart = func(name string, args ...string) error {
		calls = append(calls, started{name: name, args: args})
		if fail[name] {
			return exec.ErrNotFound
		}
		return nil
	}
	t.Cleanup(func() { fnStart = old })
	return &calls
}

func testInvocation() Invocation {
	p := mode.DefaultParameters()
	p.ThreadCount = 4
	return Invocation{
		CLIPath: "/opt/llama/llama-cli",
		Record: mode.Record{
			Name:       "Fast",
			ModelPath:  "/models/a.gguf",
			PromptPath: "/prompts/x.txt",
			Parameters: p,
		},
	}
}

func TestCommandString(t *testing.T) {
	inv := testInvocation()
	assert.Equal(t,
		`"/opt/llama/llama-cli" -m "/models/a.gguf" --file "/prompts/x.txt" --temp 0.8 --top-k 40 --top-p 0.9 --ctx-size 2000 --threads 4 --interactive-first --no-display-prompt`,
		inv.String())

	inv.Record.Parameters.GPULayers = 33
	inv.Record.Parameters.InteractiveFirst = false
	argv := inv.Argv()
	assert.Equal(t, "/opt/llama/llama-cli", argv[0])
	assert.Contains(t, strings.Join(argv, " "), "--n-gpu-layers 33 --no-display-prompt")
	assert.NotContains(t, argv, "--interactive-first")
	assert.Equal(t, argv, BuildArgs(inv.CLIPath, inv.Record))
	assert.Equal(t, inv.String(), CommandString(inv.CLIPath, inv.Record))
}

func TestLaunchLinuxFallsThrough(t *testing.T) {
	calls := stubStart(t, map[string]bool{"xterm": true, "gnome-terminal": true})
	l := &Launcher{GOOS: "linux", Log: zerolog.Nop()}
	res, err := l.Launch(testInvocation())
	require.NoError(t, err)
	assert.Equal(t, "konsole", res.Terminal)
	assert.NotEmpty(t, res.ID)
	require.Len(t, *calls, 3)

	gnome := (*calls)[1]
	assert.Equal(t, []string{"--", "bash", "-c"}, gnome.args[:3])
	assert.True(t, strings.HasSuffix(gnome.args[3], `;read -p "Press Enter to close..."`))

	konsole := (*calls)[2]
	assert.Equal(t, "-e", konsole.args[0])
	assert.True(t, strings.HasPrefix(konsole.args[1], `bash -c '"/opt/llama/llama-cli" -m`))
}

func TestLaunchNoTerminal(t *testing.T) {
	stubStart(t, map[string]bool{"xterm": true, "gnome-terminal": true, "konsole": true, "xfce4-terminal": true})
	l := &Launcher{GOOS: "linux", Log: zerolog.Nop()}
	_, err := l.Launch(testInvocation())
	require.Error(t, err)
	assert.True(t, IsNoTerminal(err))
	assert.True(t, errors.Is(err, exec.ErrNotFound))

	_, err = (&Launcher{GOOS: "plan9", Log: zerolog.Nop()}).Launch(testInvocation())
	assert.True(t, IsNoTerminal(err))
}

func TestLaunchWindowsAndDarwin(t *testing.T) {
	calls := stubStart(t, nil)
	inv := testInvocation()

	_, err := (&Launcher{GOOS: "windows", Log: zerolog.Nop()}).Launch(inv)
	require.NoError(t, err)
	assert.Equal(t, "cmd", (*calls)[0].name)
	assert.Equal(t, []string{"/C", "start", "cmd", "/K", inv.String()}, (*calls)[0].args)

	_, err = (&Launcher{GOOS: "darwin", Log: zerolog.Nop()}).Launch(inv)
	require.NoError(t, err)
	assert.Equal(t, "osascript", (*calls)[1].name)
	assert.Contains(t, (*calls)[1].args[1], `do script "\"/opt/llama/llama-cli\" -m`)
}

func TestLaunchRequiresCLIPath(t *testing.T) {
	calls := stubStart(t, nil)
	inv := testInvocation()
	inv.CLIPath = ""
	_, err := (&Launcher{GOOS: "linux", Log: zerolog.Nop()}).Launch(inv)
	require.Error(t, err)
	assert.Empty(t, *calls)
}

func TestLaunchWritesJournal(t *testing.T) {
	stubStart(t, nil)
	dir := t.TempDir()
	j := NewJournal(dir + "/logs")
	l := &Launcher{GOOS: "linux", Log: zerolog.Nop(), Journal: j}
	res, err := l.Launch(testInvocation())
	require.NoError(t, err)
	_, err = l.Launch(testInvocation())
	require.NoError(t, err)

	f, err := os.Open(j.Path())
	require.NoError(t, err)
	defer f.Close()
	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, res.ID, lines[0]["launch_id"])
	assert.Equal(t, "Fast", lines[0]["mode"])
	assert.Equal(t, "xterm", lines[0]["terminal"])
}

func TestRunCmd(t *testing.T) {
	var got *exec.Cmd
	old := fnRun
	fnRun = func(cmd *exec.Cmd) error { got = cmd; return nil }
	t.Cleanup(func() { fnRun = old })

	err := RunCmd(context.Background(), Cmd{Path: "nano", Args: []string{"/tmp/c.toml"}, Env: map[string]string{"A": "1"}, Dir: "/tmp"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"nano", "/tmp/c.toml"}, got.Args)
	assert.Equal(t, "/tmp", got.Dir)
	assert.Contains(t, got.Env, "A=1")

	fnRun = func(cmd *exec.Cmd) error { return errors.New("exit status 1") }
	err = RunCmd(context.Background(), Cmd{Path: "nano"})
	assert.ErrorContains(t, err, "nano: exit status 1")
}
