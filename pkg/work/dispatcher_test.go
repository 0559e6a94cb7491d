package work

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatcher(t *testing.T) {
	testCases := []struct {
		name            string
		config          DispatcherConfig
		expectedWorkers int
	}{
		{name: "default config", config: DispatcherConfig{}, expectedWorkers: runtime.NumCPU()},
		{name: "custom config", config: DispatcherConfig{MaxWorkers: 4}, expectedWorkers: 4},
		{name: "negative workers", config: DispatcherConfig{MaxWorkers: -2}, expectedWorkers: runtime.NumCPU()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDispatcher(tc.config)
			assert.Equal(t, tc.expectedWorkers, d.MaxWorkers())
		})
	}
}

func TestExecuteRespectsConcurrencyCap(t *testing.T) {
	for _, limit := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("cap=%d", limit), func(t *testing.T) {
			var active, peak int64
			tasks := make([]Task[int], 12)
			for i := range tasks {
				i := i
				tasks[i] = Task[int]{ID: fmt.Sprint(i), Run: func(ctx context.Context) (int, error) {
					n := atomic.AddInt64(&active, 1)
					for {
						p := atomic.LoadInt64(&peak)
						if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					atomic.AddInt64(&active, -1)
					return i, nil
				}}
			}

			d := NewDispatcher(DispatcherConfig{MaxWorkers: limit})
			summary := Execute(context.Background(), d, tasks, nil)

			assert.LessOrEqual(t, int(atomic.LoadInt64(&peak)), limit)
			assert.LessOrEqual(t, summary.PeakUtilization, limit)
			assert.Equal(t, 12, summary.TotalItems)
			assert.Equal(t, 12, summary.Successful)
		})
	}
}

func TestExecuteDeliversEveryResult(t *testing.T) {
	tasks := []Task[string]{
		{ID: "a", Run: func(context.Context) (string, error) { return "A", nil }},
		{ID: "b", Run: func(context.Context) (string, error) { return "", errors.New("boom") }},
		{ID: "c", Run: func(context.Context) (string, error) { return "C", nil }},
	}

	var ids []string
	values := map[string]string{}
	summary := Execute(context.Background(), NewDispatcher(DispatcherConfig{MaxWorkers: 3}), tasks, func(r Result[string]) {
		ids = append(ids, r.TaskID)
		if r.Success() {
			values[r.TaskID] = r.Value
		}
	})

	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, map[string]string{"a": "A", "c": "C"}, values)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
}

func TestExecuteRecoversPanics(t *testing.T) {
	tasks := []Task[int]{
		{ID: "ok", Run: func(context.Context) (int, error) { return 1, nil }},
		{ID: "bad", Run: func(context.Context) (int, error) { panic("kaboom") }},
		{ID: "nil"},
	}

	errs := map[string]error{}
	Execute(context.Background(), NewDispatcher(DispatcherConfig{MaxWorkers: 1}), tasks, func(r Result[int]) {
		errs[r.TaskID] = r.Err
	})

	require.Len(t, errs, 3)
	assert.NoError(t, errs["ok"])

	var pe *PanicError
	require.ErrorAs(t, errs["bad"], &pe)
	assert.Equal(t, "bad", pe.TaskID)
	assert.Contains(t, pe.Error(), "kaboom")
	assert.NotEmpty(t, pe.Stack)

	assert.Error(t, errs["nil"])
}

func TestExecuteAppliesTaskTimeout(t *testing.T) {
	tasks := []Task[int]{{ID: "slow", Run: func(ctx context.Context) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
			return 1, nil
		}
	}}}

	var got error
	Execute(context.Background(), NewDispatcher(DispatcherConfig{MaxWorkers: 1, Timeout: 10 * time.Millisecond}), tasks,
		func(r Result[int]) { got = r.Err })
	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestExecuteEmpty(t *testing.T) {
	summary := Execute[int](context.Background(), NewDispatcher(DispatcherConfig{MaxWorkers: 2}), nil, nil)
	assert.Equal(t, 0, summary.TotalItems)
}
