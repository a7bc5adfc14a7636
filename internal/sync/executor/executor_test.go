package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/nexus-client/nexustypes"
)

func TestExecutor_Aggregates(t *testing.T) {
	e := NewExecutor(4, nil)
	ctx := context.Background()

	for i := range 10 {
		task := Task{RemotePath: fmt.Sprintf("/f%02d", i), LocalPath: fmt.Sprintf("/l/f%02d", i)}
		e.Submit(ctx, task, func(_ context.Context, task Task) (int64, error) {
			if i%3 == 0 {
				return 0, fmt.Errorf("boom %s", task.RemotePath)
			}
			return 10, nil
		})
	}

	result := e.Wait()
	assert.Equal(t, 6, result.Transferred)
	assert.Equal(t, int64(60), result.Bytes)
	require.Len(t, result.Failures, 4)

	var failed []string
	for _, f := range result.Failures {
		failed = append(failed, f.RemotePath)
	}
	assert.Equal(t, []string{"/f00", "/f03", "/f06", "/f09"}, failed)
	assert.Equal(t, "/l/f00", result.Failures[0].LocalPath)
	assert.Positive(t, result.Duration)
}

func TestExecutor_BoundsConcurrency(t *testing.T) {
	const limit = 3
	e := NewExecutor(limit, nil)

	var inFlight, peak atomic.Int32
	for i := range 20 {
		e.Submit(context.Background(), Task{RemotePath: fmt.Sprint(i)}, func(context.Context, Task) (int64, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return 1, nil
		})
	}

	result := e.Wait()
	assert.Equal(t, 20, result.Transferred)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestExecutor_RunKeepsOrder(t *testing.T) {
	e := NewExecutor(1, nil)

	var mu sync.Mutex
	var order []string
	for _, p := range []string{"/a", "/b", "/c"} {
		e.Run(context.Background(), Task{RemotePath: p}, func(_ context.Context, task Task) (int64, error) {
			mu.Lock()
			order = append(order, task.RemotePath)
			mu.Unlock()
			return 0, nil
		})
	}

	result := e.Wait()
	assert.Equal(t, []string{"/a", "/b", "/c"}, order)
	assert.Equal(t, 3, result.Transferred)
}

func TestExecutor_CancelledBeforeStart(t *testing.T) {
	e := NewExecutor(1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	e.Submit(ctx, Task{RemotePath: "/first"}, func(context.Context, Task) (int64, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started

	var ran atomic.Bool
	e.Submit(ctx, Task{RemotePath: "/second"}, func(context.Context, Task) (int64, error) {
		ran.Store(true)
		return 1, nil
	})
	cancel()
	close(release)

	result := e.Wait()
	assert.False(t, ran.Load())
	assert.Equal(t, 1, result.Transferred)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "/second", result.Failures[0].RemotePath)
	assert.True(t, stderrors.Is(result.Failures[0].Err, context.Canceled))
}

func TestExecutor_RecoversPanics(t *testing.T) {
	e := NewExecutor(2, nil)
	e.Submit(context.Background(), Task{RemotePath: "/p"}, func(context.Context, Task) (int64, error) {
		panic("bad transfer")
	})
	e.Record(nexustypes.TransferOutcome{RemotePath: "/dir", Err: stderrors.New("listing failed")})

	result := e.Wait()
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[1].Err.Error(), "bad transfer")
	assert.Equal(t, "listing failed", result.Failures[0].Err.Error())
}
