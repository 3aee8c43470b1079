// Package worker runs independent jobs on a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job is a unit of work executed by a Pool.
type Job[T any] func(ctx context.Context) (T, error)

// Result is the outcome of the job at Index in the submitted slice.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool executes jobs concurrently on a fixed number of workers.
type Pool[T any] struct {
	workers int
}

// NewPool creates a pool with the given number of workers (minimum 1).
func NewPool[T any](workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[T]{workers: workers}
}

// Workers returns the pool's concurrency.
func (p *Pool[T]) Workers() int { return p.workers }

// Run executes jobs and returns one result per job in submission order. Jobs
// not yet started when ctx is cancelled report ctx.Err(). A panicking job
// reports an error instead of crashing the process.
func (p *Pool[T]) Run(ctx context.Context, jobs []Job[T]) []Result[T] {
	results := make([]Result[T], len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for range min(p.workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = execute(ctx, i, jobs[i])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(jobs); next++ {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- next:
		}
	}
	close(indexes)
	wg.Wait()

	for i := next; i < len(jobs); i++ {
		results[i] = Result[T]{Index: i, Err: ctx.Err()}
	}
	return results
}

func execute[T any](ctx context.Context, i int, job Job[T]) (r Result[T]) {
	r.Index = i
	defer func() {
		if rec := recover(); rec != nil {
			r.Err = fmt.Errorf("job %d panicked: %v", i, rec)
		}
	}()
	r.Value, r.Err = job(ctx)
	return r
}

// Map applies fn to every item on a pool of the given size and returns the
// results in input order.
func Map[In, Out any](ctx context.Context, workers int, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	jobs := make([]Job[Out], len(items))
	for i, item := range items {
		jobs[i] = func(ctx context.Context) (Out, error) {
			return fn(ctx, item)
		}
	}
	return NewPool[Out](workers).Run(ctx, jobs)
}
