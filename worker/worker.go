// Package worker spawns and talks to request worker processes. A worker is
// an arbitrary executable that reads newline-delimited JSON messages from
// stdin and writes id-correlated JSON replies to stdout.
package worker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Worker exchanges typed messages with a single worker process. I is the
// payload sent to the worker, O the payload received back.
type Worker[I any, O any] interface {
	Start(context.Context, StartParams) error
	Send(context.Context, I, SendParams) (O, error)
	Terminate() error
	Kill(context.Context, StopParams) error
	Wait(context.Context) (ExitEvent, error)
}

// ProcessWorker runs a worker as a child process with piped stdio.
type ProcessWorker[I any, O any] struct {
	processLock sync.Mutex
	process     *proc[I, O]
	exitChan    chan ExitEvent
	log         *zap.Logger
}

var _ = Worker[any, any](&ProcessWorker[any, any]{})

func NewProcessWorker[I, O any](log *zap.Logger) *ProcessWorker[I, O] {
	return &ProcessWorker[I, O]{
		log: log,
	}
}

// Start starts the worker process. The worker inherits the parent
// environment with params.Env merged on top, and runs in its own process
// group so signals reach the whole worker tree.
func (w *ProcessWorker[I, O]) Start(ctx context.Context, params StartParams) error {
	w.processLock.Lock()
	defer w.processLock.Unlock()

	if w.process != nil {
		return ErrWorkerAlreadyStarted
	}

	cmd := exec.Command(params.Cmd, params.Args...)

	env := os.Environ()
	for k, v := range params.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = env

	if params.Cwd != "" {
		cmd.Dir = params.Cwd
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	// worker stderr passes through, it is the worker's log channel
	cmd.Stderr = os.Stderr

	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return err
	}

	process := &proc[I, O]{
		pid:         cmd.Process.Pid,
		termination: make(chan struct{}),
		stdout:      stdout,
		stdin:       stdin,
		log:         w.log.Named("proc").With(zap.Int("pid", cmd.Process.Pid)),
	}

	w.process = process
	w.exitChan = make(chan ExitEvent, 1)

	go func() {
		// block until the process exits
		err := cmd.Wait()

		close(process.termination)

		w.exitChan <- getExitEvent(err)
		close(w.exitChan)
	}()

	return nil
}

// Send writes a message to the worker's stdin and blocks until the worker
// replies on stdout, the timeout elapses, or ctx is cancelled. A reply
// whose id does not match the request is an error.
func (w *ProcessWorker[I, O]) Send(
	ctx context.Context,
	data I,
	params SendParams,
) (O, error) {
	process := w.acquireProcess()

	var result O

	if process == nil {
		return result, ErrWorkerNotStarted
	}

	msgID, err := process.Write(ctx, data)
	if err != nil {
		return result, err
	}

	msg, err := process.Read(ctx, params.Timeout)
	if err != nil {
		return result, err
	}

	if msg.ID != msgID {
		return result, fmt.Errorf("unexpected message id: expected %d, got %d", msgID, msg.ID)
	}

	return msg.Data, nil
}

// Terminate sends SIGTERM to the worker process to request it to stop.
// It returns immediately, without waiting for the process to exit.
func (w *ProcessWorker[I, O]) Terminate() error {
	process := w.acquireProcess()

	if process == nil {
		return ErrWorkerNotStarted
	}

	process.Terminate()

	return nil
}

// Kill sends SIGKILL to the worker process and blocks until the process
// exited or the timeout is reached.
func (w *ProcessWorker[I, O]) Kill(ctx context.Context, params StopParams) error {
	process := w.acquireProcess()

	if params.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if process == nil {
		return ErrWorkerNotStarted
	}

	return process.Kill(ctx, params.Timeout)
}

// Wait blocks until the worker process exits or ctx is done, and returns
// the exit status.
func (w *ProcessWorker[I, O]) Wait(ctx context.Context) (ExitEvent, error) {
	select {
	case <-ctx.Done():
		return ExitEvent{}, ctx.Err()
	case exitEvent := <-w.exitChan:
		return exitEvent, nil
	}
}

// WaitFor is Wait bounded by a deadline.
func (w *ProcessWorker[I, O]) WaitFor(
	ctx context.Context,
	deadline time.Duration,
) (ExitEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	return w.Wait(ctx)
}

func (w *ProcessWorker[I, O]) acquireProcess() *proc[I, O] {
	w.processLock.Lock()
	defer w.processLock.Unlock()

	return w.process
}

func getExitEvent(err error) ExitEvent {
	var cell int32
	var exitStatus *int32
	var signo *int32

	if err == nil {
		exitStatus = &cell
	} else if exitError, ok := err.(*exec.ExitError); ok {
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
			if code := status.ExitStatus(); code >= 0 {
				cell = int32(code)
				exitStatus = &cell
			} else {
				cell = int32(status.Signal())
				signo = &cell
			}
		}
	}

	if signo == nil && exitStatus == nil {
		cell = 1
		exitStatus = &cell
	}

	return ExitEvent{
		Code:   exitStatus,
		Signal: signo,
	}
}
