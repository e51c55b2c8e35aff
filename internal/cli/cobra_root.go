package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"querygguf/internal/config"
	"querygguf/internal/httpapi"
	"querygguf/internal/prompt"
	"querygguf/internal/wizard"
)

// Config carries the persistent flags.
type Config struct {
	RootDir string
	LogLvl  string
}

// streams are the process stdio, replaced in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Function variables to enable stubbing in tests.
var (
	fnServe    = httpapi.Serve
	fnPrompter = newPrompter
)

// newPrompter uses line editing when in is an interactive terminal.
func newPrompter(in io.Reader, out io.Writer, history string) (prompt.Prompter, func()) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) && prompt.TerminalSupported() {
		l := prompt.NewLiner(history)
		return l, func() { _ = l.Close() }
	}
	return prompt.NewReader(in, out), func() {}
}

// resolveRoot prefers --root, then QUERYGGUF_ROOT, then <home>/query_gguf.
func resolveRoot(cfg *Config) (config.Root, error) {
	root, err := config.DefaultRoot()
	if err != nil {
		return root, err
	}
	if cfg.RootDir != "" {
		abs, err := filepath.Abs(cfg.RootDir)
		if err != nil {
			return root, fmt.Errorf("root %s: %w", cfg.RootDir, err)
		}
		root.Dir = abs
	}
	return root, nil
}

// buildRootCmdWith constructs the command tree over cfg and st.
func buildRootCmdWith(cfg *Config, st streams) *cobra.Command {
	log := zerolog.Nop()
	// app is built lazily so --root and --log-level apply. Only interactive
	// commands take over the terminal.
	newApp := func(interactive bool) (*App, func(), error) {
		root, err := resolveRoot(cfg)
		if err != nil {
			return nil, nil, err
		}
		if !interactive {
			return NewApp(root, prompt.NewReader(st.in, st.out), st.out, st.err, log), func() {}, nil
		}
		in, closeIn := fnPrompter(st.in, st.out, historyFile(root))
		return NewApp(root, in, st.out, st.err, log), closeIn, nil
	}

	rootCmd := &cobra.Command{
		Use:   "querygguf [mode-number|manual|make|dir|directory]",
		Short: "Launch llama-cli chat modes from a single configuration file",
		Long: "querygguf keeps named llama-cli chat modes in query_gguf_config.toml and\n" +
			"opens the selected one in a new terminal window. Without arguments it shows\n" +
			"an interactive menu.",
		Example:       "  querygguf\n  querygguf 2\n  querygguf manual\n  querygguf dir",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, done, err := newApp(true)
			if err != nil {
				return err
			}
			defer done()
			fmt.Fprintln(st.out, titleStyle.Render("Query via gguf llama.cpp llama-cli"))
			if !app.Root.ConfigExists() {
				fmt.Fprintln(st.out, "\nNo configuration found. Starting setup...")
				if err := app.Setup(); err != nil {
					return err
				}
			}
			if len(args) == 1 {
				return app.Select(args[0])
			}
			return app.Menu(cmd.Context())
		},
	}

	// Persistent flags -> Config
	rootCmd.PersistentFlags().StringVar(&cfg.RootDir, "root", cfg.RootDir, "Application directory (defaults QUERYGGUF_ROOT or ~/query_gguf)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults QUERYGGUF_LOG_LEVEL or info)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		log = newLogger(st.err, cfg.LogLvl)
		httpapi.SetLogger(log)
	}

	// setup
	var from string
	setupCmd := &cobra.Command{
		Use:     "setup",
		Short:   "Create or replace the configuration",
		Example: "  querygguf setup\n  querygguf setup --from settings.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, done, err := newApp(from == "")
			if err != nil {
				return err
			}
			defer done()
			if from != "" {
				return wizard.Import(app.Root, from, st.out, log)
			}
			return app.Setup()
		},
	}
	setupCmd.Flags().StringVar(&from, "from", "", "Import settings from a .yaml, .json or .toml file instead of asking")
	rootCmd.AddCommand(setupCmd)

	// list
	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, done, err := newApp(false)
			if err != nil {
				return err
			}
			defer done()
			svc := httpapi.NewStoreService(app.Store)
			resp := svc.ListModes()
			if asJSON {
				return writeJSON(st.out, resp)
			}
			if len(resp.Modes) == 0 {
				fmt.Fprintln(st.out, "No modes saved.")
				return nil
			}
			for _, m := range resp.Modes {
				mark := ""
				if m.Default {
					mark = " (default)"
				}
				fmt.Fprintf(st.out, "%d. %s - %s%s\n", m.Position, m.Name, m.Description, mark)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(listCmd)

	// show
	showCmd := &cobra.Command{
		Use:     "show <mode-number>",
		Short:   "Show one mode and its llama-cli command",
		Example: "  querygguf show 1",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid mode number %q", args[0])
			}
			app, done, err := newApp(false)
			if err != nil {
				return err
			}
			defer done()
			e, err := app.Store.Get(n)
			if err != nil {
				return err
			}
			app.describe(e.Record)
			c, err := httpapi.NewStoreService(app.Store).Command(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(st.out, "Command: %s\n", c.Command)
			return nil
		},
	}
	rootCmd.AddCommand(showCmd)

	// config group
	configCmd := &cobra.Command{Use: "config", Short: "Inspect or edit the configuration", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("config requires a subcommand: show|path|edit")
	}}
	var format string
	configShow := &cobra.Command{Use: "show", Short: "Print the settings", Example: "  querygguf config show --format yaml", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		app, done, err := newApp(false)
		if err != nil {
			return err
		}
		defer done()
		if !app.Root.ConfigExists() {
			return fmt.Errorf("no configuration at %s; run setup first", app.Root.ConfigPath())
		}
		return config.Export(st.out, app.Store.Settings(), format)
	}}
	configShow.Flags().StringVar(&format, "format", "yaml", "Output format: yaml|json|toml")
	configPath := &cobra.Command{Use: "path", Short: "Print the configuration file path", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(st.out, root.ConfigPath())
		return nil
	}}
	configEdit := &cobra.Command{Use: "edit", Short: "Open the configuration in $EDITOR", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		app, done, err := newApp(false)
		if err != nil {
			return err
		}
		defer done()
		return app.EditConfig(cmd.Context())
	}}
	configCmd.AddCommand(configShow, configPath, configEdit)
	rootCmd.AddCommand(configCmd)

	// serve
	var addr string
	var corsOrigins []string
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve a read-only HTTP view of the saved modes",
		Example: "  querygguf serve --addr :8088\n  querygguf serve --cors-origin http://localhost:5173",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, done, err := newApp(false)
			if err != nil {
				return err
			}
			defer done()
			httpapi.SetCORSOptions(len(corsOrigins) > 0, corsOrigins, nil, nil)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return fnServe(ctx, addr, httpapi.NewMux(httpapi.NewStoreService(app.Store)))
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", envStr("QUERYGGUF_ADDR", ":8088"), "Listen address")
	serveCmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable); CORS is off when empty")
	rootCmd.AddCommand(serveCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return rootCmd.GenBashCompletion(st.out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return rootCmd.GenZshCompletion(st.out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return rootCmd.GenFishCompletion(st.out, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenPowerShellCompletionWithDesc(st.out)
	}})
	rootCmd.AddCommand(completionCmd)

	rootCmd.SetIn(st.in)
	rootCmd.SetOut(st.out)
	rootCmd.SetErr(st.err)
	return rootCmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// trimArgs drops empty positional arguments left by wrapper scripts.
func trimArgs(args []string) []string {
	out := args[:0:0]
	for _, a := range args {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}
