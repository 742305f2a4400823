package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingWriter blocks every Write until release is closed.
type blockingWriter struct {
	release chan struct{}
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	<-w.release
	return len(p), nil
}

func (w *blockingWriter) Close() error { return nil }

func TestProcWrite_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	p := &proc[string, string]{
		stdin: &blockingWriter{release: release},
		log:   zap.NewNop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Write(ctx, "payload")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcWrite_AssignsSequentialIDs(t *testing.T) {
	release := make(chan struct{})
	close(release)

	p := &proc[string, string]{
		stdin: &blockingWriter{release: release},
		log:   zap.NewNop(),
	}

	first, err := p.Write(context.Background(), "a")
	require.NoError(t, err)

	second, err := p.Write(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, first+1, second)
}
