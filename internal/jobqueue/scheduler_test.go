package jobqueue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/jobqueue"
)

func TestScheduler_RunSynchronousDrainsFinishedJobs(t *testing.T) {
	t.Parallel()

	var messages []string

	ctx := &jobqueue.MainContext{ShowMessage: func(s string) { messages = append(messages, s) }}
	sched := jobqueue.NewScheduler(ctx)
	defer sched.Stop()

	sched.AddSynchronousJob(jobqueue.ShowMessageJob("hello"))

	finished := sched.RunSynchronous()
	assert.Equal(t, 1, finished)
	assert.Equal(t, []string{"hello"}, messages)
	assert.Equal(t, 0, sched.RunSynchronous())
}

func TestScheduler_SynchronousJobRequeuedUntilFinished(t *testing.T) {
	t.Parallel()

	ctx := &jobqueue.MainContext{ShowMessage: func(string) {}}
	sched := jobqueue.NewScheduler(ctx)
	defer sched.Stop()

	ticks := 0
	job := jobqueue.NewSynchronousJob(func(*jobqueue.MainContext) jobqueue.TickResult {
		ticks++
		if ticks < 3 {
			return jobqueue.Stalled
		}

		return jobqueue.Finished
	}, nil)

	sched.AddSynchronousJob(job)

	assert.Equal(t, 0, sched.RunSynchronous())
	assert.Equal(t, 0, sched.RunSynchronous())
	assert.Equal(t, 1, sched.RunSynchronous())
	assert.Equal(t, 3, ticks)
}

func TestScheduler_AsynchronousJobRuns(t *testing.T) {
	t.Parallel()

	ctx := &jobqueue.MainContext{ShowMessage: func(string) {}}
	sched := jobqueue.NewScheduler(ctx)
	defer sched.Stop()

	done := make(chan struct{})

	job := jobqueue.NewAsynchronousJob(func(h jobqueue.Handler) jobqueue.TickResult {
		close(done)
		return jobqueue.Finished
	}, nil)

	sched.AddAsynchronousJob(job)

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "async job never ran")
	}
}

func TestScheduler_KillInvokedOnStop(t *testing.T) {
	t.Parallel()

	ctx := &jobqueue.MainContext{ShowMessage: func(string) {}}
	sched := jobqueue.NewScheduler(ctx)

	killed := make(chan struct{})

	job := jobqueue.NewAsynchronousJob(func(jobqueue.Handler) jobqueue.TickResult {
		return jobqueue.Stalled
	}, func() { close(killed) })

	sched.AddAsynchronousJob(job)
	sched.Stop()

	select {
	case <-killed:
	case <-time.After(time.Second):
		require.Fail(t, "job.Kill was never called")
	}
}
