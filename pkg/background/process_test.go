package background

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Andromalius22/Nexora/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Trace(level logger.Severity, module string, message string) {}

func TestProcessRunsOperation(t *testing.T) {
	var calls int32

	p := NewProcess(5*time.Millisecond, testLogger{}).
		WithModule("test").
		WithOperation(func() error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

	require.NoError(t, p.Start())
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestProcessRequiresOperation(t *testing.T) {
	p := NewProcess(5*time.Millisecond, testLogger{})

	assert.ErrorIs(t, p.Start(), ErrInvalidOperation)
}

func TestProcessCannotStartTwice(t *testing.T) {
	p := NewProcess(time.Hour, testLogger{}).
		WithOperation(func() error { return nil })

	require.NoError(t, p.Start())
	defer p.Stop()

	assert.ErrorIs(t, p.Start(), ErrAlreadyRunning)
}

func TestProcessStopWaitsForIteration(t *testing.T) {
	release := make(chan struct{})
	var finished int32

	p := NewProcess(5*time.Millisecond, testLogger{}).
		WithOperation(func() error {
			<-release
			atomic.StoreInt32(&finished, 1)
			return nil
		})

	require.NoError(t, p.Start())

	// Let one iteration start, then stop while it is blocked.
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	close(release)
	<-done

	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func TestProcessStopIsIdempotent(t *testing.T) {
	p := NewProcess(time.Hour, testLogger{}).
		WithOperation(func() error { return nil })

	require.NoError(t, p.Start())
	p.Stop()
	p.Stop()
}
