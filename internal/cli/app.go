package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"querygguf/internal/common/fsutil"
	"querygguf/internal/config"
	"querygguf/internal/dirscan"
	"querygguf/internal/launcher"
	"querygguf/internal/mode"
	"querygguf/internal/prompt"
	"querygguf/internal/registry"
	"querygguf/internal/store"
	"querygguf/internal/wizard"
)

// Function variables to enable stubbing in tests.
var (
	fnLaunch = func(l *launcher.Launcher, inv launcher.Invocation) (launcher.Result, error) { return l.Launch(inv) }
	fnEdit   = func(ctx context.Context, editor, path string) error {
		return launcher.RunCmd(ctx, launcher.Cmd{Path: editor, Args: []string{path}})
	}
)

var errNoDefault = errors.New("no default mode set")

// App is the interactive front end over one configuration root.
type App struct {
	Root  config.Root
	Store *store.Store
	In    prompt.Prompter
	Out   io.Writer
	Err   io.Writer
	Log   zerolog.Logger
}

// NewApp wires a Store for root.
func NewApp(root config.Root, in prompt.Prompter, out, errOut io.Writer, log zerolog.Logger) *App {
	return &App{
		Root:  root,
		Store: store.New(root, log),
		In:    in,
		Out:   out,
		Err:   errOut,
		Log:   log,
	}
}

// isExit reports whether err means the input stream is gone.
func isExit(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, prompt.ErrAborted)
}

// Menu shows the modes and commands until one selection has run or the user
// leaves. Failed selections are reported and the menu is shown again.
func (a *App) Menu(ctx context.Context) error {
	for {
		a.printMenu()
		choice, err := a.In.Prompt("\nEnter selection: ")
		if isExit(err) {
			fmt.Fprintln(a.Out, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "q", "quit", "exit":
			fmt.Fprintln(a.Out, "Goodbye!")
			return nil
		case "":
			err = a.LaunchDefault()
			if errors.Is(err, errNoDefault) {
				fmt.Fprintln(a.Out, "\n"+warningStyle.Render("No default mode set. Please make a selection."))
				continue
			}
		case "config":
			if err := a.EditConfig(ctx); err != nil {
				a.reportError(err)
			}
			continue
		default:
			err = a.Select(choice)
		}
		if err == nil {
			return nil
		}
		if isExit(err) {
			fmt.Fprintln(a.Out, "Goodbye!")
			return nil
		}
		a.reportError(err)
	}
}

func (a *App) reportError(err error) {
	fmt.Fprintln(a.Err, errorStyle.Render("Error: "+err.Error()))
}

func (a *App) printMenu() {
	fmt.Fprintln(a.Out, "\n"+titleStyle.Render("Query-GGUF - Select a mode number or type a command:"))
	fmt.Fprintln(a.Out, "Commands:")
	fmt.Fprintln(a.Out, "  'make' or 'manual' -> Create new mode")
	fmt.Fprintln(a.Out, "  'dir' or 'directory' -> Run with directory contents")
	fmt.Fprintln(a.Out, "  'config' -> Open config file in editor")
	fmt.Fprintln(a.Out, "  'q' -> Quit")

	fmt.Fprintln(a.Out, "\n"+titleStyle.Render("Available Modes:"))
	def, hasDef := a.Store.DefaultIndex()
	entries := a.Store.List()
	if len(entries) == 0 {
		fmt.Fprintln(a.Out, dimStyle.Render("  (none saved yet)"))
	}
	for _, e := range entries {
		line := fmt.Sprintf("%d. %s - %s", e.Position, e.Record.Name, e.Record.Description)
		if hasDef && e.Index == def {
			line += dimStyle.Render(" (default)")
		}
		fmt.Fprintln(a.Out, line)
	}
}

// Select runs one selection: a 1-based mode number, manual/make or
// dir/directory.
func (a *App) Select(choice string) error {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "manual", "make":
		return a.Manual()
	case "dir", "directory":
		return a.Directory()
	}
	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil {
		return fmt.Errorf("invalid selection %q", choice)
	}
	e, err := a.Store.Get(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "\nSelected saved mode: %s\n", e.Record.Name)
	a.describe(e.Record)
	return a.launch(e.Record)
}

// LaunchDefault launches the mode default_mode names.
func (a *App) LaunchDefault() error {
	e, ok := a.Store.Default()
	if !ok {
		return errNoDefault
	}
	fmt.Fprintf(a.Out, "\nLaunching default mode: %s\n", e.Record.Name)
	a.describe(e.Record)
	return a.launch(e.Record)
}

func (a *App) describe(rec mode.Record) {
	p := rec.Parameters
	fmt.Fprintf(a.Out, "Model: %s\n", rec.ModelPath)
	fmt.Fprintf(a.Out, "Prompt: %s\n", rec.PromptPath)
	fmt.Fprintln(a.Out, "Parameters:")
	fmt.Fprintf(a.Out, "  Temperature: %s\n", mode.FormatFloat(p.Temperature))
	fmt.Fprintf(a.Out, "  Top-K: %d\n", p.TopK)
	fmt.Fprintf(a.Out, "  Top-P: %s\n", mode.FormatFloat(p.TopP))
	fmt.Fprintf(a.Out, "  Context Size: %d\n", p.ContextSize)
	fmt.Fprintf(a.Out, "  Threads: %d\n", p.ThreadCount)
	fmt.Fprintf(a.Out, "  GPU Layers: %d\n", p.GPULayers)
	fmt.Fprintf(a.Out, "  Interactive First: %t\n", p.InteractiveFirst)
}

func (a *App) launch(rec mode.Record) error {
	s := a.Store.Settings()
	inv := launcher.Invocation{CLIPath: s.LlamaCLIPath, Record: rec}
	fmt.Fprintln(a.Out, "\nPreparing to launch llama-cli in a new terminal...")
	fmt.Fprintf(a.Out, "Command: %s\n", inv.String())
	res, err := fnLaunch(launcher.New(a.Log, a.journal(s)), inv)
	if err != nil {
		return fmt.Errorf("launch llama-cli: %w", err)
	}
	fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("llama-cli launched in new terminal window (%s)", res.Terminal)))
	return nil
}

// journal is nil unless logging is enabled.
func (a *App) journal(s config.Settings) *launcher.Journal {
	if !s.LoggingEnabled {
		return nil
	}
	dir := strings.TrimSpace(s.LogDirectoryPath)
	if dir == "" {
		return launcher.NewJournal(filepath.Join(a.Root.Dir, wizard.DefaultLogDirName))
	}
	if expanded, err := fsutil.ExpandHome(dir); err == nil {
		dir = expanded
	}
	return launcher.NewJournal(fsutil.Resolve(a.Root.Home, dir))
}

// Manual builds a record from a scanned model, an optional prompt and
// optionally edited parameters, offers to save it, then launches it.
func (a *App) Manual() error {
	fmt.Fprintln(a.Out, "\n"+titleStyle.Render("=== Manual Mode Setup ==="))
	s := a.Store.Settings()
	scanner := &registry.GGUFScanner{Home: a.Root.Home, Log: a.Log}
	models := scanner.ScanAll(s.ModelDirectories)
	if len(models) == 0 {
		return errors.New("no GGUF models found in configured directories")
	}
	fmt.Fprintln(a.Out, "\nAvailable Models:")
	for i, m := range models {
		fmt.Fprintf(a.Out, "%d. %s\n", i+1, m.ID)
	}
	i, err := a.choose("\nSelect model number: ", len(models))
	if err != nil {
		return err
	}
	rec := mode.Record{ModelPath: models[i-1].Path, Parameters: mode.DefaultParameters()}

	usePrompt, err := prompt.YesNo(a.In, a.Out, "Would you like to use a prompt file?")
	if err != nil {
		return err
	}
	if usePrompt {
		rec.PromptPath, err = a.selectPrompt()
	} else {
		rec.PromptPath, err = a.Root.EnsureBlankPrompt()
	}
	if err != nil {
		return err
	}

	custom, err := prompt.YesNo(a.In, a.Out, "Would you like to customize model parameters?")
	if err != nil {
		return err
	}
	if custom {
		if rec.Parameters, err = a.editParameters(rec.Parameters); err != nil {
			return err
		}
	}

	if err := a.offerSave(&rec); err != nil {
		return err
	}
	return a.launch(rec)
}

// choose asks for a number in [1, n] until one is given.
func (a *App) choose(question string, n int) (int, error) {
	for {
		i, err := prompt.Choose(a.In, question, n)
		if err == nil {
			return i, nil
		}
		if isExit(err) {
			return 0, err
		}
		fmt.Fprintf(a.Out, "Error: %v\n", err)
	}
}

func (a *App) selectPrompt() (string, error) {
	prompts, err := registry.NewPromptScanner(a.Root.PromptsDir(), a.Log).Scan()
	if err != nil {
		return "", err
	}
	if len(prompts) == 0 {
		return "", errors.New("no prompt files found in " + a.Root.PromptsDir())
	}
	fmt.Fprintln(a.Out, "\nAvailable Prompts:")
	for i, p := range prompts {
		fmt.Fprintf(a.Out, "%d. %s (%s)\n", i+1, p.Name, p.Path)
	}
	i, err := a.choose(fmt.Sprintf("\nSelect prompt number (1-%d): ", len(prompts)), len(prompts))
	if err != nil {
		return "", err
	}
	fmt.Fprintf(a.Out, "Selected prompt: %s\n", prompts[i-1].Path)
	return prompts[i-1].Path, nil
}

func (a *App) editParameters(p mode.Parameters) (mode.Parameters, error) {
	parseFloat := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	var err error
	if p.Temperature, err = prompt.Value(a.In, a.Out, "Temperature", p.Temperature, parseFloat); err != nil {
		return p, err
	}
	if p.TopK, err = prompt.Value(a.In, a.Out, "Top-K sampling", p.TopK, strconv.Atoi); err != nil {
		return p, err
	}
	if p.TopP, err = prompt.Value(a.In, a.Out, "Top-P sampling", p.TopP, parseFloat); err != nil {
		return p, err
	}
	if p.ContextSize, err = prompt.Value(a.In, a.Out, "Context window size", p.ContextSize, strconv.Atoi); err != nil {
		return p, err
	}
	threads, err := prompt.Value(a.In, a.Out, "Thread count", p.ThreadCount, strconv.Atoi)
	if err != nil {
		return p, err
	}
	if p.ThreadCount = mode.ClampThreads(threads); p.ThreadCount != threads {
		fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("Warning: thread count %d out of range, using %d", threads, p.ThreadCount)))
	}
	if p.GPULayers, err = prompt.Value(a.In, a.Out, "Number of GPU layers (0 for CPU-only)", p.GPULayers, strconv.Atoi); err != nil {
		return p, err
	}
	if p.InteractiveFirst, err = prompt.YesNo(a.In, a.Out, "Enable interactive-first mode?"); err != nil {
		return p, err
	}
	return p, nil
}

// offerSave asks for a name and description until the record encodes, then
// appends it and optionally makes it the default.
func (a *App) offerSave(rec *mode.Record) error {
	save, err := prompt.YesNo(a.In, a.Out, "\nWould you like to save this configuration as a named mode?")
	if err != nil || !save {
		return err
	}
	fmt.Fprintln(a.Out, "\n"+titleStyle.Render("=== Save Mode Configuration ==="))
	for {
		name, err := a.In.Prompt("Enter a name for this mode: ")
		if err != nil {
			return err
		}
		if name == "" {
			fmt.Fprintln(a.Out, "Mode name cannot be empty.")
			continue
		}
		desc, err := a.In.Prompt("Enter a brief description for this mode: ")
		if err != nil {
			return err
		}
		rec.Name, rec.Description = name, desc
		if err := rec.Validate(); err != nil {
			fmt.Fprintf(a.Out, "Error: %v. Please try again.\n", err)
			continue
		}
		break
	}
	makeDefault, err := prompt.YesNo(a.In, a.Out, "Make this the default mode?")
	if err != nil {
		return err
	}
	n, err := a.Store.Append(*rec, makeDefault)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "\n"+successStyle.Render(fmt.Sprintf("Mode '%s' saved successfully as mode_%d!", rec.Name, n)))
	return nil
}

// Directory combines a saved mode's prompt with a directory's tree and text
// files and launches the mode with the combined prompt.
func (a *App) Directory() error {
	fmt.Fprintln(a.Out, "\n"+titleStyle.Render("Directory Mode Setup:"))
	raw, err := a.In.Prompt("Enter directory path to scan: ")
	if err != nil {
		return err
	}
	dir, err := fsutil.Normalize(raw)
	if err != nil {
		return err
	}
	if !fsutil.IsDir(dir) {
		return fmt.Errorf("%s is not a directory", dir)
	}
	num, err := a.In.Prompt("Enter mode number to use: ")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return fmt.Errorf("invalid mode number %q", num)
	}
	e, err := a.Store.Get(n)
	if err != nil {
		return err
	}
	combined, err := dirscan.WriteCombined(a.Root.PromptsDir(), e.Record.PromptPath, dir)
	if err != nil {
		return err
	}
	a.Log.Debug().Str("dir", dir).Str("prompt", combined).Msg("combined prompt written")
	rec := e.Record
	rec.PromptPath = combined
	return a.launch(rec)
}

// EditConfig opens the configuration document in $EDITOR and waits.
func (a *App) EditConfig(ctx context.Context) error {
	if !a.Root.ConfigExists() {
		return fmt.Errorf("no configuration at %s; run setup first", a.Root.ConfigPath())
	}
	return fnEdit(ctx, editor(), a.Root.ConfigPath())
}

func editor() string {
	def := "nano"
	if runtime.GOOS == "windows" {
		def = "notepad"
	}
	return envStr(EnvEditor, def)
}

// Setup runs the wizard.
func (a *App) Setup() error {
	done, err := wizard.New(a.Root, a.In, a.Out, a.Log).Setup()
	if err != nil {
		return err
	}
	if done {
		fmt.Fprintln(a.Out, "\n"+successStyle.Render("Setup completed."))
	}
	return nil
}

// historyFile keeps line-editing history next to the configuration.
func historyFile(root config.Root) string {
	if err := os.MkdirAll(root.Dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(root.Dir, ".history")
}
