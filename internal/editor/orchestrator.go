package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/editorconfig"
	"github.com/quillkit/quill/internal/input"
	"github.com/quillkit/quill/internal/jobqueue"
	"github.com/quillkit/quill/internal/window"
	"github.com/quillkit/quill/pkg/observability"
)

// Editor is the top-level object a client drives one frame at a time: the
// buffer registry, the window tree, the key dispatcher, and the job
// scheduler, wired together the way the source's editor singleton wires
// its own equivalents.
type Editor struct {
	Config *editorconfig.Config

	Registry   *Registry
	Root       *window.Window
	Selected   *window.Window
	Dispatcher *input.Dispatcher
	Scheduler  *jobqueue.Scheduler
	Remote     *RemoteListener
	Commands   *input.Registry

	keyMaps map[string]*input.Map

	metrics *observability.EditorMetrics
	logger  *slog.Logger

	messages []string
}

// New constructs an Editor around root (the initial window tree, typically
// a single scratch buffer from Registry.New), wiring the scheduler's
// MainContext.ShowMessage to append to the editor's message log the way
// the source routes job-posted messages to the status line.
func New(cfg *editorconfig.Config, registry *Registry, root *window.Window, metrics *observability.EditorMetrics, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}

	global := input.NewMap()

	e := &Editor{
		Config:   cfg,
		Registry: registry,
		Root:     root,
		Selected: root.FirstLeaf(),
		keyMaps:  map[string]*input.Map{"global": global},
		metrics:  metrics,
		logger:   logger,
	}

	mainCtx := &jobqueue.MainContext{ShowMessage: e.ShowMessage}
	e.Scheduler = jobqueue.NewScheduler(mainCtx)
	e.Dispatcher = input.NewDispatcher(global)

	e.Commands = input.NewRegistry()
	registerBuiltinCommands(e)

	return e
}

// RegisterKeyMap installs a named buffer-mode key map (buffer.Mode's
// KeyMapName field indexes into this set), consulted by Tick before the
// dispatcher's global map per §4.8.
func (e *Editor) RegisterKeyMap(name string, m *input.Map) {
	e.keyMaps[name] = m
}

// ShowMessage appends message to the editor's status-line message log.
// Jobqueue jobs and the remote listener both call this indirectly.
func (e *Editor) ShowMessage(message string) {
	e.messages = append(e.messages, message)
	e.logger.Info("editor: message", "text", message)
}

// Messages returns and clears the pending status-line messages, for the
// client to render and discard after a frame.
func (e *Editor) Messages() []string {
	msgs := e.messages
	e.messages = nil

	return msgs
}

// EnableRemote starts the §6 remote-open TCP listener per Config.Remote,
// raising the opened file's window by making it the selected leaf. A
// no-op if remote opening is disabled in configuration.
func (e *Editor) EnableRemote() error {
	if e.Config == nil || !e.Config.Remote.Enabled {
		return nil
	}

	rl, err := Listen(e.Config.Remote.Address, e.openAndRaise, e.logger)
	if err != nil {
		return err
	}

	e.Remote = rl

	return nil
}

// openAndRaise opens path (creating the window as a new split against the
// currently selected leaf would require a client-driven layout decision,
// so the remote protocol instead replaces the selected leaf's buffer, the
// same "just show it" behavior as a foreground :e of the same path)
// and positions its first cursor at line/col (1-based, 0 meaning
// unspecified).
func (e *Editor) openAndRaise(path string, line, col int) {
	handle, err := e.Registry.Open(path)
	if err != nil {
		e.ShowMessage(err.Error())
	}

	leaf := e.Selected
	if leaf == nil || leaf.Tag != window.Unified {
		leaf = e.Root.FirstLeaf()
		e.Selected = leaf
	}

	leaf.Leaf.Handle = handle
	leaf.Leaf.Cursors = []buffer.Cursor{{}}
	leaf.Leaf.SelectedCursor = 0

	if line > 0 {
		e.placeCursor(leaf, line, col)
	}
}

// placeCursor positions leaf's selected cursor at the byte offset for
// line (1-based) and col (1-based, 0 meaning start-of-line), resolving
// through the buffer's line index rather than the contents (§6: remote
// open's LINE:COLUMN is 1-based, matching the CLI argument grammar).
func (e *Editor) placeCursor(leaf *window.Window, line, col int) {
	if leaf == nil || leaf.Tag != window.Unified || len(leaf.Leaf.Cursors) == 0 {
		return
	}

	contents := leaf.Leaf.Handle.Buffer().Contents

	it := contents.IteratorAtLine(line - 1)
	for i := 1; i < col && !it.AtEOB(); i++ {
		if b, ok := it.Get(); !ok || b == '\n' {
			break
		}

		it.Advance(1)
	}

	pos := it.Position()
	leaf.Leaf.Cursors[leaf.Leaf.SelectedCursor].Point = pos
	leaf.Leaf.Cursors[leaf.Leaf.SelectedCursor].Mark = pos
}

// Tick runs one frame: drains synchronous jobs, then dispatches any
// pending keys against the selected window's buffer mode, returning the
// resolved actions and any keys left over past the frame budget (§4.9).
func (e *Editor) Tick(ctx context.Context, keys []input.Key) (actions []input.Action, remaining []input.Key) {
	start := time.Now()
	deadline := start.Add(input.FrameBudget)

	if e.Selected != nil && e.Selected.Tag == window.Unified {
		name := e.Selected.Leaf.Handle.Buffer().Mode.KeyMapName
		e.Dispatcher.SetBufferMode(e.keyMaps[name])
	}

	finished := e.Scheduler.RunSynchronous()

	actions, remaining = e.Dispatcher.Dispatch(keys, deadline)
	e.runCommandActions(actions)

	e.metrics.RecordRun(ctx, observability.RunStats{
		JobsFinished:  int64(finished),
		Ticks:         1,
		TickDurations: []time.Duration{time.Since(start)},
	})

	return actions, remaining
}

// runCommandActions runs every named command resolved by Dispatch against
// e.Commands, reporting lookup or execution failures as status messages
// rather than dropping them (§4.8: an unbound or failing command still
// needs to reach the user, the same as the source's command-not-found
// bell).
func (e *Editor) runCommandActions(actions []input.Action) {
	for _, a := range actions {
		if a.Command == "" {
			continue
		}

		cmd, ok := e.Commands.Lookup(a.Command)
		if !ok {
			e.ShowMessage(fmt.Sprintf("editor: no such command %q", a.Command))
			continue
		}

		if err := cmd.Run(e); err != nil {
			e.ShowMessage(err.Error())
		}
	}
}

// Close stops the scheduler and the remote listener, if running.
func (e *Editor) Close() {
	e.Scheduler.Stop()

	if e.Remote != nil {
		_ = e.Remote.Close()
	}
}
