// Package main provides the entry point for the quill text editor.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/editor"
	"github.com/quillkit/quill/internal/editorconfig"
	"github.com/quillkit/quill/internal/input"
	"github.com/quillkit/quill/internal/session"
	"github.com/quillkit/quill/internal/window"
	"github.com/quillkit/quill/pkg/observability"
	"github.com/quillkit/quill/pkg/termclient"
	"github.com/quillkit/quill/pkg/version"
)

var (
	flagClient     string
	flagTryRemote  bool
	flagExecute    string
	flagEscape     string
	flagNoFork     bool
	flagConfigPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quill [files]",
		Short: "Quill is a text editor",
		Long: `Quill is a multi-client, multi-cursor text editor.

Files should be one of the following forms:
  FILE, FILE:LINE, or FILE:LINE:COLUMN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE:          runEditor,
	}

	rootCmd.Flags().StringVar(&flagClient, "client", "ncurses", "client to launch: ncurses, remote")
	rootCmd.Flags().BoolVar(&flagTryRemote, "try-remote", false, "try to open the files in an existing quill server before launching a new one")
	rootCmd.Flags().StringVar(&flagExecute, "execute", "", "immediately run the keys given in the input sequence")
	rootCmd.Flags().StringVar(&flagEscape, "escape", "", "escape TEXT for safe use inside --execute and print it to stdout")
	rootCmd.Flags().BoolVar(&flagNoFork, "no-fork", false, "stall the current process while quill runs (no-op; quill never forks)")
	rootCmd.Flags().StringVar(&flagConfigPath, "config", "", "path to a .quill config file")

	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("quill %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

// runEditor is the grammar described in §6:
//
//	prog [--client={ncurses|remote}] [--try-remote] [--execute=KEYS]
//	     [--escape=TEXT] [--no-fork] [--] [FILE[:LINE[:COLUMN]] ...]
func runEditor(_ *cobra.Command, args []string) error {
	if flagEscape != "" {
		fmt.Println(escapeForExecute(flagEscape))
		return nil
	}

	var initialKeys []input.Key
	if flagExecute != "" {
		keys, err := input.ParseKeys(flagExecute)
		if err != nil {
			return fmt.Errorf("parsing --execute: %w", err)
		}

		initialKeys = keys
	}

	if flagTryRemote || flagClient == "remote" {
		handled, err := tryRemote(args)
		if handled {
			return err
		}

		if flagClient == "remote" {
			if len(args) == 0 {
				return fmt.Errorf("no files to send to the remote client")
			}

			return fmt.Errorf("failed to connect to the remote client")
		}
	}

	cfg, err := editorconfig.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceName = "quill"
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = observability.ModeCLI

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("initializing observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	metrics, err := observability.NewEditorMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("initializing editor metrics: %w", err)
	}

	registry := editor.NewRegistry()

	root, err := openInitialWindows(registry, args)
	if err != nil {
		return err
	}

	ed := editor.New(cfg, registry, root, metrics, providers.Logger)
	defer ed.Close()
	defer saveSession(ed, providers)

	if err := ed.EnableRemote(); err != nil {
		providers.Logger.Warn("quill: remote listener unavailable", "error", err)
	}

	if cfg.Diagnostics.Enabled {
		diag, diagErr := observability.NewDiagnosticsServer(cfg.Diagnostics.Address, providers.Tracer, providers.Logger, providers.Meter)
		if diagErr != nil {
			providers.Logger.Warn("quill: diagnostics server unavailable", "error", diagErr)
		} else {
			defer diag.Close()
		}
	}

	if len(initialKeys) > 0 {
		ed.Tick(context.Background(), initialKeys)
	}

	switch flagClient {
	case "ncurses", "":
		return runNcurses(ed, providers)
	default:
		return fmt.Errorf("unknown client %q", flagClient)
	}
}

func runNcurses(ed *editor.Editor, providers observability.Providers) error {
	term, err := termclient.Open()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer term.Close()

	theme := editor.NewTheme(ed.Config.Theme)

	client, err := termclient.NewClient(term, ed, theme, providers.Logger)
	if err != nil {
		return fmt.Errorf("starting client: %w", err)
	}

	return client.Run(context.Background())
}

// tryRemote mirrors the original client's gdb-style fast path: send the
// first file to an already-running server and, if that succeeds, exit
// without starting a new editor. handled reports whether the caller should
// return immediately (true) or fall through to launching locally (false).
func tryRemote(args []string) (handled bool, err error) {
	if len(args) == 0 {
		return false, nil
	}

	cfg, cfgErr := editorconfig.Load(flagConfigPath)
	if cfgErr != nil {
		return false, nil
	}

	path, line, col := editor.ParseOpenArg(args[0])

	arg := path
	if line > 0 {
		arg = fmt.Sprintf("%s:%d:%d", path, line, col)
	}

	if sendErr := editor.Send(cfg.Remote.Address, arg); sendErr != nil {
		return false, nil
	}

	return true, nil
}

// escapeForExecute stringifies text the same way --execute expects its
// KEYS argument to be quoted: each rune becomes its own key token.
func escapeForExecute(text string) string {
	keys := make([]input.Key, 0, len(text))
	for _, r := range text {
		keys = append(keys, input.Key{Code: input.Code(r)})
	}

	return input.StringifyKeys(keys)
}

// openInitialWindows opens every FILE[:LINE[:COLUMN]] argument into its own
// buffer and tiles them into a single window tree, or restores the last
// session if there are none and one exists.
func openInitialWindows(registry *editor.Registry, args []string) (*window.Window, error) {
	if len(args) == 0 {
		if mgr := defaultSessionManager(); mgr.Exists() {
			root, err := mgr.Load(registry.NextID())
			if err == nil {
				return root, nil
			}
		}

		handle := registry.New("*scratch*", buffer.KindTemporary, nil)

		return window.NewUnified(handle), nil
	}

	var root *window.Window

	for _, raw := range args {
		path, line, col := editor.ParseOpenArg(raw)

		handle, err := registry.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "quill: %v\n", err)
		}

		if handle == nil {
			continue
		}

		w := window.NewUnified(handle)
		if line > 0 {
			placeCursorAt(w, line, col)
		}

		if root == nil {
			root = w
			continue
		}

		root = window.Split(root, w, window.HorizontalSplit, 0.5)
	}

	if root == nil {
		handle := registry.New("*scratch*", buffer.KindTemporary, nil)
		root = window.NewUnified(handle)
	}

	return root, nil
}

func placeCursorAt(w *window.Window, line, col int) {
	if w.Tag != window.Unified || len(w.Leaf.Cursors) == 0 {
		return
	}

	contents := w.Leaf.Handle.Buffer().Contents
	it := contents.IteratorAtLine(line - 1)

	for i := 1; i < col && !it.AtEOB(); i++ {
		if b, ok := it.Get(); !ok || b == '\n' {
			break
		}

		it.Advance(1)
	}

	pos := it.Position()
	w.Leaf.Cursors[0].Point = pos
	w.Leaf.Cursors[0].Mark = pos
}

func defaultSessionManager() *session.Manager {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return session.NewManager(session.DefaultDir(), session.RepoHash(cwd))
}

// saveSession persists the window layout and open buffers so the next
// launch in this directory can restore them via openInitialWindows.
func saveSession(ed *editor.Editor, providers observability.Providers) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	mgr := defaultSessionManager()
	if err := mgr.Save(ed.Root, cwd); err != nil {
		providers.Logger.Warn("quill: session save failed", "error", err)
	}
}
