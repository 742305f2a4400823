package worker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/procshim/cgiway/worker"
)

type echoPayload struct {
	Value string `json:"value"`
}

// cat echoes the full message envelope back, so ids always match.
func startEchoWorker(t *testing.T) *worker.ProcessWorker[echoPayload, echoPayload] {
	t.Helper()

	w := worker.NewProcessWorker[echoPayload, echoPayload](zap.NewNop())

	err := w.Start(context.Background(), worker.StartParams{Cmd: "cat"})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = w.Kill(context.Background(), worker.StopParams{Timeout: 2 * time.Second})
	})

	return w
}

func TestProcessWorker_Send(t *testing.T) {
	w := startEchoWorker(t)

	res, err := w.Send(
		context.Background(),
		echoPayload{Value: "ping"},
		worker.SendParams{Timeout: 2 * time.Second},
	)

	require.NoError(t, err)
	assert.Equal(t, "ping", res.Value)
}

func TestProcessWorker_SendTimeout(t *testing.T) {
	w := worker.NewProcessWorker[echoPayload, echoPayload](zap.NewNop())

	// sleep never writes to stdout
	err := w.Start(context.Background(), worker.StartParams{Cmd: "sleep", Args: []string{"10"}})
	require.NoError(t, err)

	defer w.Kill(context.Background(), worker.StopParams{Timeout: 2 * time.Second})

	_, err = w.Send(
		context.Background(),
		echoPayload{Value: "ping"},
		worker.SendParams{Timeout: 100 * time.Millisecond},
	)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcessWorker_StartTwice(t *testing.T) {
	w := startEchoWorker(t)

	err := w.Start(context.Background(), worker.StartParams{Cmd: "cat"})

	assert.ErrorIs(t, err, worker.ErrWorkerAlreadyStarted)
}

func TestProcessWorker_SendBeforeStart(t *testing.T) {
	w := worker.NewProcessWorker[echoPayload, echoPayload](zap.NewNop())

	_, err := w.Send(
		context.Background(),
		echoPayload{Value: "ping"},
		worker.SendParams{Timeout: time.Second},
	)

	assert.ErrorIs(t, err, worker.ErrWorkerNotStarted)
}

func TestProcessWorker_TerminateAndWait(t *testing.T) {
	w := startEchoWorker(t)

	require.NoError(t, w.Terminate())

	evt, err := w.WaitFor(context.Background(), 2*time.Second)

	require.NoError(t, err)
	// cat exits cleanly once stdin closes, or dies from the signal
	assert.True(t, evt.Code != nil || evt.Signal != nil)
}

func TestProcessWorker_KillInvalidTimeout(t *testing.T) {
	w := startEchoWorker(t)

	err := w.Kill(context.Background(), worker.StopParams{})

	assert.ErrorIs(t, err, worker.ErrInvalidTimeout)
}

func TestMessage_Envelope(t *testing.T) {
	msg := worker.Message[echoPayload]{ID: 7, Data: echoPayload{Value: "x"}}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"data":{"value":"x"}}`, string(raw))
}
