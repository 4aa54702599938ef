// Package jobqueue implements the §4.9 dual job system: synchronous jobs
// that run on the main thread between frames, and asynchronous jobs that
// run on one background goroutine and talk back to the main thread only
// through a narrow Handler interface.
package jobqueue

// TickResult is what a job's Tick returns each time the scheduler runs it.
type TickResult int

const (
	// Finished means the job is done and should be removed.
	Finished TickResult = iota
	// MadeProgress means the job did useful work this tick and runs again
	// after a short sleep if no job finished this round.
	MadeProgress
	// Stalled means the job had nothing to do this tick; if every job
	// stalls the scheduler parks until new work arrives.
	Stalled
)

// SynchronousJob runs on the main thread between frames, typically
// mutating client/UI state (e.g. posting a message once the prompt line is
// free).
type SynchronousJob interface {
	Tick(ctx *MainContext) TickResult
	Kill()
}

// AsynchronousJob runs on the single background goroutine. It receives a
// Handler it may use to add more jobs, show a message, or attempt a brief
// sync lock.
type AsynchronousJob interface {
	Tick(h Handler) TickResult
	Kill()
}

// MainContext is the minimal main-thread context a synchronous job's Tick
// needs. The editor and client packages provide the concrete values;
// jobqueue only depends on this narrow interface to avoid an import cycle.
type MainContext struct {
	ShowMessage func(string)
}

// Handler is the asynchronous job's view of the scheduler: it can enqueue
// more jobs, post a message, or request a short synchronization window
// with the main thread.
type Handler interface {
	AddSynchronousJob(SynchronousJob)
	AddAsynchronousJob(AsynchronousJob)
	ShowMessage(string)
	// TrySyncLock attempts to briefly pause the main thread so the caller
	// can observe a consistent editor snapshot. It returns false
	// immediately if that isn't currently permitted; callers must never
	// block waiting for it.
	TrySyncLock() (unlock func(), ok bool)
}

// funcSyncJob and funcAsyncJob adapt a pair of plain functions to the job
// interfaces, mirroring the source's do_nothing()-style function-pointer
// jobs without requiring a named type per call site.
type funcSyncJob struct {
	tick func(*MainContext) TickResult
	kill func()
}

func (f funcSyncJob) Tick(ctx *MainContext) TickResult { return f.tick(ctx) }
func (f funcSyncJob) Kill() {
	if f.kill != nil {
		f.kill()
	}
}

// NewSynchronousJob wraps tick/kill functions as a SynchronousJob.
func NewSynchronousJob(tick func(*MainContext) TickResult, kill func()) SynchronousJob {
	return funcSyncJob{tick: tick, kill: kill}
}

type funcAsyncJob struct {
	tick func(Handler) TickResult
	kill func()
}

func (f funcAsyncJob) Tick(h Handler) TickResult { return f.tick(h) }
func (f funcAsyncJob) Kill() {
	if f.kill != nil {
		f.kill()
	}
}

// NewAsynchronousJob wraps tick/kill functions as an AsynchronousJob.
func NewAsynchronousJob(tick func(Handler) TickResult, kill func()) AsynchronousJob {
	return funcAsyncJob{tick: tick, kill: kill}
}

// ShowMessageJob is a one-shot synchronous job that posts a message and
// finishes immediately.
func ShowMessageJob(message string) SynchronousJob {
	return NewSynchronousJob(func(ctx *MainContext) TickResult {
		ctx.ShowMessage(message)
		return Finished
	}, nil)
}
