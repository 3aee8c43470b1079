package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	assert.Equal(t, 5, NewPool[int](5).Workers())
	assert.Equal(t, 1, NewPool[int](0).Workers())
	assert.Equal(t, 1, NewPool[int](-1).Workers())
}

func TestPool_PreservesOrder(t *testing.T) {
	jobs := make([]Job[int], 20)
	for i := range jobs {
		jobs[i] = func(context.Context) (int, error) {
			// Later jobs finish first.
			time.Sleep(time.Duration(len(jobs)-i) * time.Millisecond)
			return i * i, nil
		}
	}

	results := NewPool[int](4).Run(context.Background(), jobs)

	require.Len(t, results, len(jobs))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, i*i, r.Value)
		assert.NoError(t, r.Err)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var running, peak int32
	jobs := make([]Job[struct{}], 12)
	for i := range jobs {
		jobs[i] = func(context.Context) (struct{}, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return struct{}{}, nil
		}
	}

	NewPool[struct{}](3).Run(context.Background(), jobs)

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Positive(t, atomic.LoadInt32(&peak))
}

func TestPool_ErrorsAndPanicsStayPerJob(t *testing.T) {
	boom := errors.New("boom")
	jobs := []Job[string]{
		func(context.Context) (string, error) { return "ok", nil },
		func(context.Context) (string, error) { return "", boom },
		func(context.Context) (string, error) { panic("bad pixel") },
		func(context.Context) (string, error) { return "still ok", nil },
	}

	results := NewPool[string](2).Run(context.Background(), jobs)

	assert.Equal(t, "ok", results[0].Value)
	require.ErrorIs(t, results[1].Err, boom)
	require.Error(t, results[2].Err)
	assert.Contains(t, results[2].Err.Error(), "bad pixel")
	assert.Equal(t, "still ok", results[3].Value)
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed int32
	jobs := make([]Job[int], 10)
	for i := range jobs {
		jobs[i] = func(context.Context) (int, error) {
			atomic.AddInt32(&executed, 1)
			return 1, nil
		}
	}

	results := NewPool[int](2).Run(ctx, jobs)

	require.Len(t, results, 10)
	var cancelled int
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		if errors.Is(r.Err, context.Canceled) {
			cancelled++
		}
	}
	assert.Equal(t, 10, cancelled+int(atomic.LoadInt32(&executed)))
}

func TestPool_Empty(t *testing.T) {
	assert.Empty(t, NewPool[int](4).Run(context.Background(), nil))
}

func TestMap(t *testing.T) {
	words := []string{"flood", "tsunami", "surge"}

	results := Map(context.Background(), 2, words, func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})

	got := make([]int, len(results))
	for i, r := range results {
		got[i] = r.Value
	}
	assert.Equal(t, []int{5, 7, 5}, got)
}
