// Package runtime bridges translated CGI requests to worker processes over
// a JSON stdio protocol.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/puddle/v2"
	"go.uber.org/zap"

	"github.com/procshim/cgiway/cgi"
	"github.com/procshim/cgiway/runtime/schema"
	"github.com/procshim/cgiway/worker"
)

var (
	ErrNoCommand       = errors.New("no worker command configured")
	ErrInvalidRequest  = errors.New("invalid request message")
	ErrInvalidResponse = errors.New("invalid response message")
)

const (
	defaultMaxWorkers  = 1
	defaultSendTimeout = 30 * time.Second
	defaultStopTimeout = 5 * time.Second
)

// Config describes the worker a runtime spawns and how to talk to it.
type Config struct {
	// Command is the worker executable to spawn.
	Command string `conf:"command"`

	// Args are additional arguments passed to the worker.
	Args []string `conf:"args"`

	// Cwd is the working directory for the worker.
	Cwd string `conf:"cwd"`

	// Env holds extra environment variables for the worker.
	Env map[string]string `conf:"env"`

	// Disposable stops the worker after a single request.
	Disposable bool `conf:"disposable"`

	// MaxWorkers caps the number of concurrently running workers.
	MaxWorkers int `conf:"max_workers"`

	// SendTimeout bounds the wait for a worker reply.
	SendTimeout time.Duration `conf:"send_timeout"`

	// StopTimeout bounds the graceful shutdown of a worker.
	StopTimeout time.Duration `conf:"stop_timeout"`
}

// Runtime turns a translated CGI request into a response.
type Runtime interface {
	Handle(ctx context.Context, req cgi.Request) (cgi.Response, error)

	Start(ctx context.Context) error

	Shutdown(ctx context.Context) error
}

// requestWorker is the worker shape the runtime pools. Replies stay raw
// until they passed schema validation.
type requestWorker = worker.Worker[WireRequest, json.RawMessage]

// workerFactory builds a fresh, unstarted worker.
type workerFactory func(log *zap.Logger) requestWorker

// ProcessRuntime keeps a pool of worker processes and dispatches one
// request per Send. Workers are acquired per request, released back when
// reusable and destroyed when disposable or broken.
type ProcessRuntime struct {
	config Config

	pool        *puddle.Pool[requestWorker]
	newWorker   workerFactory
	requestSch  *schema.Schema
	responseSch *schema.Schema

	log *zap.Logger
}

var _ Runtime = (*ProcessRuntime)(nil)

// New creates a ProcessRuntime for the given config.
func New(config Config, log *zap.Logger) (*ProcessRuntime, error) {
	return newRuntime(config, log, func(log *zap.Logger) requestWorker {
		return worker.NewProcessWorker[WireRequest, json.RawMessage](log)
	})
}

func newRuntime(config Config, log *zap.Logger, factory workerFactory) (*ProcessRuntime, error) {
	if config.Command == "" {
		return nil, ErrNoCommand
	}

	requestSch, err := schema.NewRequestSchema()
	if err != nil {
		return nil, err
	}

	responseSch, err := schema.NewResponseSchema()
	if err != nil {
		return nil, err
	}

	r := &ProcessRuntime{
		config:      config,
		newWorker:   factory,
		requestSch:  requestSch,
		responseSch: responseSch,
		log:         log.Named("runtime"),
	}

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	pool, err := puddle.NewPool(&puddle.Config[requestWorker]{
		Constructor: r.startWorker,
		Destructor:  r.stopWorker,
		MaxSize:     int32(maxWorkers),
	})
	if err != nil {
		return nil, err
	}

	r.pool = pool

	return r, nil
}

// Start warms the pool with a single idle worker so the first request does
// not pay the spawn cost.
func (r *ProcessRuntime) Start(ctx context.Context) error {
	return r.pool.CreateResource(ctx)
}

// Handle sends req to a pooled worker and returns the worker's response.
func (r *ProcessRuntime) Handle(ctx context.Context, req cgi.Request) (cgi.Response, error) {
	res, err := r.pool.Acquire(ctx)
	if err != nil {
		return cgi.Response{}, err
	}

	resp, err := r.send(ctx, res.Value(), req)

	if err != nil || r.config.Disposable {
		res.Destroy()
	} else {
		res.Release()
	}

	return resp, err
}

// Shutdown stops all pooled workers.
func (r *ProcessRuntime) Shutdown(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *ProcessRuntime) send(ctx context.Context, w requestWorker, req cgi.Request) (cgi.Response, error) {
	wireReq := EncodeRequest(req)

	raw, err := json.Marshal(wireReq)
	if err != nil {
		return cgi.Response{}, err
	}

	if err := r.requestSch.Validate(raw); err != nil {
		return cgi.Response{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	timeout := r.config.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	reply, err := w.Send(ctx, wireReq, worker.SendParams{Timeout: timeout})
	if err != nil {
		return cgi.Response{}, err
	}

	if err := r.responseSch.Validate(reply); err != nil {
		return cgi.Response{}, fmt.Errorf("%w: %s", ErrInvalidResponse, err)
	}

	var wireResp WireResponse
	if err := json.Unmarshal(reply, &wireResp); err != nil {
		return cgi.Response{}, fmt.Errorf("%w: %s", ErrInvalidResponse, err)
	}

	return DecodeResponse(wireResp), nil
}

func (r *ProcessRuntime) startWorker(ctx context.Context) (requestWorker, error) {
	w := r.newWorker(r.log)

	err := w.Start(ctx, worker.StartParams{
		Cmd:  r.config.Command,
		Args: r.config.Args,
		Cwd:  r.config.Cwd,
		Env:  r.config.Env,
	})
	if err != nil {
		r.log.Error("failed to start worker", zap.Error(err))
		return nil, err
	}

	return w, nil
}

func (r *ProcessRuntime) stopWorker(w requestWorker) {
	timeout := r.config.StopTimeout
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}

	if err := w.Terminate(); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := w.Wait(ctx); err != nil {
		if err := w.Kill(context.Background(), worker.StopParams{Timeout: timeout}); err != nil {
			r.log.Warn("failed to kill worker", zap.Error(err))
		}
	}
}
