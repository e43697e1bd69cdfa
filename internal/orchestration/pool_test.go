package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBounded_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, RunBounded(context.Background(), nil, 4, false))
}

func TestRunBounded_RunsAllTasks(t *testing.T) {
	t.Parallel()
	var count atomic.Int32
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{Name: fmt.Sprintf("task-%d", i), Func: func(context.Context) error {
			count.Add(1)
			return nil
		}}
	}

	results := RunBounded(context.Background(), tasks, 3, false)

	assert.Equal(t, int32(10), count.Load())
	assert.Len(t, results, 10)
	assert.Equal(t, 0, Failed(results))
	assert.NoError(t, FirstError(results))
}

func TestRunBounded_RespectsLimit(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	inflight, maxInflight := 0, 0

	tasks := make([]Task, 12)
	for i := range tasks {
		tasks[i] = Task{Name: fmt.Sprintf("task-%d", i), Func: func(context.Context) error {
			mu.Lock()
			inflight++
			if inflight > maxInflight {
				maxInflight = inflight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inflight--
			mu.Unlock()
			return nil
		}}
	}

	RunBounded(context.Background(), tasks, 4, false)

	require.LessOrEqual(t, maxInflight, 4)
	require.Greater(t, maxInflight, 0)
}

func TestRunBounded_CollectsErrorsWithoutAborting(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	var count atomic.Int32
	tasks := []Task{
		{Name: "ok-1", Func: func(context.Context) error { count.Add(1); return nil }},
		{Name: "bad", Func: func(context.Context) error { count.Add(1); return boom }},
		{Name: "ok-2", Func: func(context.Context) error { count.Add(1); return nil }},
	}

	results := RunBounded(context.Background(), tasks, 1, false)

	assert.Equal(t, int32(3), count.Load(), "a failing task must not abort the batch")
	assert.Equal(t, 1, Failed(results))

	err := FirstError(results)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
}

func TestRunBounded_ZeroLimitClamped(t *testing.T) {
	t.Parallel()
	ran := false
	results := RunBounded(context.Background(), []Task{
		{Name: "only", Func: func(context.Context) error { ran = true; return nil }},
	}, 0, false)

	assert.True(t, ran)
	assert.Len(t, results, 1)
}
