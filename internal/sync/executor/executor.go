package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/input-output-hk/nexus-client/nexustypes"
)

// DefaultConcurrency is used when a non-positive limit is given.
const DefaultConcurrency = 8

// Task identifies a single file transfer.
type Task struct {
	RemotePath string
	LocalPath  string
}

// TaskFunc performs a transfer and returns the number of bytes moved.
type TaskFunc func(ctx context.Context, task Task) (int64, error)

// Executor runs transfers with bounded concurrency and collects their
// outcomes. An Executor is used for a single tree transfer.
type Executor struct {
	semaphore chan struct{}
	logger    *slog.Logger
	started   time.Time

	wg     sync.WaitGroup
	mu     sync.Mutex
	result nexustypes.TransferResult
}

// NewExecutor creates an executor allowing maxConcurrency transfers at once.
func NewExecutor(maxConcurrency int, logger *slog.Logger) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Executor{
		semaphore: make(chan struct{}, maxConcurrency),
		logger:    logger,
		started:   time.Now(),
	}
}

// Submit schedules fn for task and returns immediately. The transfer starts
// once a slot is free; if ctx ends first it is recorded as failed.
func (e *Executor) Submit(ctx context.Context, task Task, fn TaskFunc) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		if err := ctx.Err(); err != nil {
			e.notStarted(task, err)
			return
		}
		select {
		case e.semaphore <- struct{}{}:
		case <-ctx.Done():
			e.notStarted(task, ctx.Err())
			return
		}
		defer func() { <-e.semaphore }()

		e.execute(ctx, task, fn)
	}()
}

func (e *Executor) notStarted(task Task, err error) {
	e.Record(nexustypes.TransferOutcome{
		RemotePath: task.RemotePath,
		LocalPath:  task.LocalPath,
		Err:        fmt.Errorf("not started: %w", err),
	})
}

// Run performs the transfer on the calling goroutine, bypassing the limit.
// Transfers submitted through Run happen in call order.
func (e *Executor) Run(ctx context.Context, task Task, fn TaskFunc) {
	e.execute(ctx, task, fn)
}

func (e *Executor) execute(ctx context.Context, task Task, fn TaskFunc) {
	outcome := nexustypes.TransferOutcome{
		RemotePath: task.RemotePath,
		LocalPath:  task.LocalPath,
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				outcome.Err = fmt.Errorf("transfer panicked: %v", r)
			}
		}()
		outcome.Bytes, outcome.Err = fn(ctx, task)
	}()

	e.Record(outcome)
}

// Record adds an outcome produced outside the executor, such as a failed
// directory listing.
func (e *Executor) Record(outcome nexustypes.TransferOutcome) {
	if outcome.Failed() {
		e.logger.Warn("transfer failed",
			"remote", outcome.RemotePath,
			"local", outcome.LocalPath,
			"error", outcome.Err)
	} else {
		e.logger.Debug("transferred",
			"remote", outcome.RemotePath,
			"local", outcome.LocalPath,
			"bytes", outcome.Bytes)
	}

	e.mu.Lock()
	e.result.Record(outcome)
	e.mu.Unlock()
}

// Wait blocks until every submitted transfer has finished and returns the
// aggregated result with failures sorted by remote path.
func (e *Executor) Wait() *nexustypes.TransferResult {
	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	result := e.result
	result.Failures = append([]nexustypes.TransferOutcome(nil), e.result.Failures...)
	result.SortFailures()
	result.Duration = time.Since(e.started)
	return &result
}
