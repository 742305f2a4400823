package worker

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type proc[I any, O any] struct {
	pid         int
	termination chan struct{}
	stdout      io.ReadCloser
	stdin       io.WriteCloser

	msgid     int
	msgidLock sync.Mutex

	log *zap.Logger
}

func (p *proc[I, O]) Terminate() {
	p.signal(syscall.SIGTERM)
}

func (p *proc[I, O]) Kill(ctx context.Context, timeout time.Duration) error {
	// kill reports success if the process already terminated
	select {
	case <-p.termination:
		p.log.Debug("process already terminated")
		return nil
	default:
	}

	p.signal(syscall.SIGKILL)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-p.termination:
		return nil
	case <-ctx.Done():
		return ErrKillTimeout
	}
}

func (p *proc[I, O]) signal(signal syscall.Signal) {
	log := p.log.With(zap.Stringer("signal", signal))

	// close stdin before signalling, to avoid
	// the process hanging on input
	if err := p.stdin.Close(); err != nil {
		log.Debug("close stdin failed", zap.Error(err))
	}

	log.Debug("sending signal")

	// best effort, ignore errors
	if err := p.sendSignal(signal); err != nil {
		log.Debug("signal failed", zap.Error(err))
	}
}

func (p *proc[I, O]) sendSignal(signal syscall.Signal) error {
	if pgid, err := syscall.Getpgid(p.pid); err == nil {
		// negative pid signals the whole process group
		return syscall.Kill(-pgid, signal)
	}
	return syscall.Kill(p.pid, signal)
}

// Write encodes data into a message envelope and writes it to the process's
// stdin, waiting at most until ctx is done. It returns the id assigned to
// the message.
func (p *proc[I, O]) Write(ctx context.Context, data I) (int, error) {
	reqID := p.nextMsgID()

	req := Message[I]{
		ID:   reqID,
		Data: data,
	}

	done := make(chan error, 1)

	go func() {
		done <- json.NewEncoder(p.stdin).Encode(req)
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case err := <-done:
		if err != nil {
			return 0, err
		}
		return reqID, nil
	}
}

func (p *proc[I, O]) nextMsgID() int {
	p.msgidLock.Lock()
	defer p.msgidLock.Unlock()

	id := p.msgid
	p.msgid++

	return id
}

// Read decodes one message envelope from the process's stdout, waiting at
// most timeout.
func (p *proc[I, O]) Read(ctx context.Context, timeout time.Duration) (Message[O], error) {
	var result Message[O]

	done := make(chan error, 1)

	go func() {
		done <- json.NewDecoder(p.stdout).Decode(&result)
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return result, ctx.Err()
	case err := <-done:
		return result, err
	}
}
