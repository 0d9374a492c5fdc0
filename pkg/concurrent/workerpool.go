// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many jobs run at once
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// Size returns the number of workers
func (wp *WorkerPool) Size() int {
	return wp.workerCount
}

// Run executes all functions and returns the first error, cancelling the
// context passed to the remaining ones
func (wp *WorkerPool) Run(ctx context.Context, functions ...func(context.Context) error) error {
	if len(functions) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, fn := range functions {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return fn(groupCtx)
		})
	}

	return g.Wait()
}

// Each calls fn for every index in [0, n). Each index is handled by exactly
// one worker, so fn may write to position i of a pre-sized slice without
// locking. Once ctx is done, indices not yet started are skipped.
func (wp *WorkerPool) Each(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i := range n {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx, i)
			return nil
		})
	}

	_ = g.Wait()
}
