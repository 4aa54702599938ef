package jobqueue

import (
	"sync"
	"time"
)

// stallSleep is how long the scheduler sleeps when at least one job made
// progress this round but none of them finished — matches the source's
// ~1ms idle poll.
const stallSleep = time.Millisecond

// Scheduler owns the two job queues described in §4.9 and §5: synchronous
// jobs drained on the main thread between frames, and asynchronous jobs
// run on one dedicated background goroutine. The async side parks on a
// semaphore whenever every job stalls, woken up as soon as a new job is
// added.
type Scheduler struct {
	mainCtx *MainContext

	syncMu   sync.Mutex
	syncJobs []SynchronousJob

	asyncMu   sync.Mutex
	asyncJobs []AsynchronousJob

	wake chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewScheduler starts the background goroutine that drains asynchronous
// jobs. Call Stop to shut it down and invoke every remaining job's Kill.
func NewScheduler(mainCtx *MainContext) *Scheduler {
	s := &Scheduler{
		mainCtx: mainCtx,
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	go s.runAsync()

	return s
}

// AddSynchronousJob enqueues a job for the next RunSynchronous call.
func (s *Scheduler) AddSynchronousJob(job SynchronousJob) {
	s.syncMu.Lock()
	s.syncJobs = append(s.syncJobs, job)
	s.syncMu.Unlock()
}

// AddAsynchronousJob enqueues a job for the background goroutine and wakes
// it if it was parked.
func (s *Scheduler) AddAsynchronousJob(job AsynchronousJob) {
	s.asyncMu.Lock()
	s.asyncJobs = append(s.asyncJobs, job)
	s.asyncMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// ShowMessage posts a one-shot synchronous job that shows message.
func (s *Scheduler) ShowMessage(message string) {
	s.AddSynchronousJob(ShowMessageJob(message))
}

// TrySyncLock is the Handler-facing hook async jobs use to request a brief
// pause of the main thread. Scheduler never grants it, and runAsync hands
// the Scheduler itself to every job as its Handler, so jobs it runs are
// always refused.
func (s *Scheduler) TrySyncLock() (func(), bool) { return nil, false }

// RunSynchronous drains every currently queued synchronous job exactly
// once (called once per frame from the main loop). Jobs that return
// anything but Finished are re-queued for the next frame.
func (s *Scheduler) RunSynchronous() (finished int) {
	s.syncMu.Lock()
	jobs := s.syncJobs
	s.syncJobs = nil
	s.syncMu.Unlock()

	var pending []SynchronousJob

	for _, job := range jobs {
		switch job.Tick(s.mainCtx) {
		case Finished:
			finished++
		default:
			pending = append(pending, job)
		}
	}

	if len(pending) > 0 {
		s.syncMu.Lock()
		s.syncJobs = append(pending, s.syncJobs...)
		s.syncMu.Unlock()
	}

	return finished
}

// runAsync is the background goroutine's main loop: tick every async job,
// loop immediately if any finished, sleep briefly if some made progress
// but none finished, and park on the wake channel when every job stalled
// or nothing is queued.
func (s *Scheduler) runAsync() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			s.killAll()
			return
		default:
		}

		s.asyncMu.Lock()
		jobs := s.asyncJobs
		s.asyncMu.Unlock()

		if len(jobs) == 0 {
			select {
			case <-s.wake:
			case <-s.stopCh:
				s.killAll()
				return
			}

			continue
		}

		anyFinished, anyProgress := false, false

		var remaining []AsynchronousJob

		for _, job := range jobs {
			switch job.Tick(s) {
			case Finished:
				anyFinished = true
			case MadeProgress:
				anyProgress = true
				remaining = append(remaining, job)
			case Stalled:
				remaining = append(remaining, job)
			}
		}

		s.asyncMu.Lock()
		s.asyncJobs = append(remaining, s.asyncJobs[len(jobs):]...)
		s.asyncMu.Unlock()

		if anyFinished {
			continue
		}

		var pause <-chan time.Time
		if anyProgress {
			pause = time.After(stallSleep)
		}

		select {
		case <-pause:
		case <-s.wake:
		case <-s.stopCh:
			s.killAll()
			return
		}
	}
}

// killAll invokes Kill on every remaining job of both queues, used on
// editor shutdown.
func (s *Scheduler) killAll() {
	s.syncMu.Lock()
	syncJobs := s.syncJobs
	s.syncJobs = nil
	s.syncMu.Unlock()

	for _, job := range syncJobs {
		job.Kill()
	}

	s.asyncMu.Lock()
	asyncJobs := s.asyncJobs
	s.asyncJobs = nil
	s.asyncMu.Unlock()

	for _, job := range asyncJobs {
		job.Kill()
	}
}

// Stop signals the background goroutine to kill every remaining job and
// exit, and waits for it to do so.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}
