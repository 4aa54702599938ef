package jobqueue

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/pkg/textutil"
)

// maxReadsPerTick bounds how many chunks a process-append job reads in one
// tick, so one noisy subprocess can't starve the other async jobs.
const maxReadsPerTick = 128

const readChunkSize = 1024

// ProcessAppendJob attaches a background process's stdout to the tail of a
// buffer, converting CRLF to LF incrementally (carrying a single byte
// across chunk boundaries) and yielding back to the scheduler between
// ticks rather than blocking until the process exits.
type ProcessAppendJob struct {
	handle   buffer.WeakHandle
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	carry    bool
	onFinish SynchronousJob
}

// NewProcessAppendJob starts cmd and returns a job that streams its stdout
// into the buffer behind handle. onFinish, if non-nil, is enqueued as a
// synchronous job once the process's output is fully drained.
func NewProcessAppendJob(handle buffer.WeakHandle, cmd *exec.Cmd, onFinish SynchronousJob) (*ProcessAppendJob, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("jobqueue: process append: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("jobqueue: process append: start: %w", err)
	}

	return &ProcessAppendJob{handle: handle, cmd: cmd, stdout: stdout, onFinish: onFinish}, nil
}

// Tick reads up to maxReadsPerTick chunks of the process's stdout and
// appends them (CRLF-stripped) to the buffer tail.
func (j *ProcessAppendJob) Tick(h Handler) TickResult {
	buf := make([]byte, readChunkSize)

	progressed := false

	for i := 0; i < maxReadsPerTick; i++ {
		n, err := j.stdout.Read(buf)
		if n > 0 {
			progressed = true

			handle, ok := j.handle.Upgrade(nil)
			if !ok {
				j.Kill()
				return Finished
			}

			stripped, carry := textutil.StripCR(buf[:n], j.carry)
			j.carry = carry

			tx := buffer.NewTransaction()
			tx.Insert(handle.Buffer().Contents.Len(), stripped)

			_, applyErr := handle.Buffer().Apply(tx)
			handle.Close()

			if applyErr != nil {
				h.ShowMessage(fmt.Sprintf("process append: %v", applyErr))
			}

			continue
		}

		if err == io.EOF {
			j.finish(h)
			return Finished
		}

		if err != nil {
			h.ShowMessage(fmt.Sprintf("process append: %v", err))
			j.Kill()

			return Finished
		}

		break
	}

	if progressed {
		return MadeProgress
	}

	return Stalled
}

func (j *ProcessAppendJob) finish(h Handler) {
	_ = j.stdout.Close()
	_ = j.cmd.Wait()

	if j.onFinish != nil {
		h.AddSynchronousJob(j.onFinish)
	}
}

// Kill tears down the process and its pipe without waiting for it to
// finish draining.
func (j *ProcessAppendJob) Kill() {
	_ = j.stdout.Close()

	if j.cmd.Process != nil {
		_ = j.cmd.Process.Kill()
	}
}
