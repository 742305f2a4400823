package worker

import (
	"errors"
	"time"
)

var (
	ErrKillTimeout          = errors.New("kill timeout")
	ErrInvalidTimeout       = errors.New("invalid timeout")
	ErrWorkerNotStarted     = errors.New("worker not started")
	ErrWorkerAlreadyStarted = errors.New("worker already started")
)

type StartParams struct {
	// Cmd is the path or name of the binary to execute
	Cmd string

	// Cwd is the working directory in which
	// the binary should be executed
	Cwd string

	// Args is the list of arguments to pass to the command
	Args []string

	// Env is a map of environment variables to set for the
	// command, on top of the inherited process environment
	Env map[string]string
}

type StopParams struct {
	// Timeout is the duration to wait for the worker to stop
	Timeout time.Duration
}

type SendParams struct {
	// Timeout is the duration to wait for the worker to reply
	Timeout time.Duration
}

// ExitEvent describes how a worker process exited.
type ExitEvent struct {
	// Code is the exit code of the process
	Code *int32

	// Signal is the signal that caused the process to exit
	Signal *int32
}

// Message is the envelope for messages exchanged with a worker process.
// The ID correlates a reply with the request that triggered it.
type Message[T any] struct {
	// ID is the message identifier
	ID int `json:"id"`

	// Data is the message payload
	Data T `json:"data"`
}
