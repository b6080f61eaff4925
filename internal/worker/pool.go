// Package worker runs independent jobs with bounded concurrency.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Task is one input together with its outcome.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc handles a single input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool applies a ProcessFunc to a slice of inputs.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool running at most workers jobs at once (minimum one).
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	return &Pool[T, R]{workers: max(workers, 1), process: fn}
}

// Execute processes every input and returns one Task per input, in input
// order. Once ctx is done, inputs not yet started are not processed and
// carry ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	tasks := make([]Task[T, R], len(inputs))
	var cursor atomic.Int64
	var wg sync.WaitGroup

	for w := range min(p.workers, len(inputs)) {
		wg.Go(func() {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= len(inputs) {
					return
				}
				t := &tasks[i]
				t.Input = inputs[i]
				if err := ctx.Err(); err != nil {
					t.Err = err
					continue
				}
				t.Result, t.Err = p.process(ctx, inputs[i])
				if t.Err != nil {
					log.Debug().Err(t.Err).Int("worker", w).Int("index", i).Msg("Task failed")
				}
			}
		})
	}

	wg.Wait()
	return tasks
}
