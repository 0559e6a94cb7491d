// Package work provides the bounded worker pool used to run independent,
// independently failing tasks with a fixed concurrency cap.
package work

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/fulmenhq/gamescout/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Task is one unit of work.
type Task[T any] struct {
	ID  string
	Run func(ctx context.Context) (T, error)
}

// Result represents the outcome of one task
type Result[T any] struct {
	TaskID   string
	Value    T
	Err      error
	Duration time.Duration
}

// Success reports whether the task returned without error.
func (r Result[T]) Success() bool { return r.Err == nil }

// Summary provides a summary of one Execute call
type Summary struct {
	TotalItems      int           `json:"total_items"`
	Successful      int           `json:"successful"`
	Failed          int           `json:"failed"`
	TotalDuration   time.Duration `json:"total_duration"`
	MaxWorkers      int           `json:"max_workers"`
	PeakUtilization int           `json:"peak_utilization"`
}

// PanicError wraps a panic recovered from a task.
type PanicError struct {
	TaskID string
	Value  interface{}
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %s panicked: %v", e.TaskID, e.Value)
}

// DispatcherConfig configures the dispatcher
type DispatcherConfig struct {
	// MaxWorkers caps concurrently running tasks; <= 0 means runtime.NumCPU().
	MaxWorkers int
	// Timeout bounds each task; <= 0 means no bound.
	Timeout time.Duration
	// Name labels log lines, e.g. the tier being run.
	Name string
}

// Dispatcher runs tasks with a concurrency cap
type Dispatcher struct {
	config DispatcherConfig
}

// NewDispatcher creates a new work dispatcher
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	return &Dispatcher{config: config}
}

// MaxWorkers returns the effective concurrency cap.
func (d *Dispatcher) MaxWorkers() int { return d.config.MaxWorkers }

// Execute runs every task and blocks until all have returned. onResult is
// called once per task, in completion order, always from the calling
// goroutine, so it may mutate caller state without locking. A failing or
// panicking task never affects its siblings.
func Execute[T any](ctx context.Context, d *Dispatcher, tasks []Task[T], onResult func(Result[T])) Summary {
	logger.Debug(fmt.Sprintf("Dispatching %d tasks with %d workers", len(tasks), d.config.MaxWorkers),
		logger.String("pool", d.config.Name))

	startTime := time.Now()
	results := make(chan Result[T], len(tasks))

	var active, peak int64
	var g errgroup.Group
	g.SetLimit(d.config.MaxWorkers)

	go func() {
		for _, task := range tasks {
			task := task
			g.Go(func() error {
				n := atomic.AddInt64(&active, 1)
				for {
					p := atomic.LoadInt64(&peak)
					if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
						break
					}
				}
				results <- runTask(ctx, d.config.Timeout, task)
				atomic.AddInt64(&active, -1)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	summary := Summary{MaxWorkers: d.config.MaxWorkers}
	for result := range results {
		summary.TotalItems++
		if result.Success() {
			summary.Successful++
		} else {
			summary.Failed++
		}
		if onResult != nil {
			onResult(result)
		}
	}

	summary.TotalDuration = time.Since(startTime)
	summary.PeakUtilization = int(atomic.LoadInt64(&peak))

	logger.Debug(fmt.Sprintf("Dispatch completed: %d successful, %d failed", summary.Successful, summary.Failed),
		logger.String("pool", d.config.Name), logger.Duration("elapsed", summary.TotalDuration))
	return summary
}

// runTask executes one task, converting panics into errors
func runTask[T any](ctx context.Context, timeout time.Duration, task Task[T]) (result Result[T]) {
	result.TaskID = task.ID
	startTime := time.Now()

	taskCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = &PanicError{TaskID: task.ID, Value: r, Stack: debug.Stack()}
		}
		result.Duration = time.Since(startTime)
	}()

	if task.Run == nil {
		result.Err = fmt.Errorf("task %s has no run function", task.ID)
		return result
	}
	result.Value, result.Err = task.Run(taskCtx)
	return result
}
