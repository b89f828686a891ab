// Package utils contains small helpers shared across the module.
package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a group of goroutines sharing one cancelable context.
// Stop cancels the context and waits for every goroutine to exit.
type StoppableWorkers struct {
	mu         sync.Mutex
	cancelCtx  context.Context
	cancelFunc func()
	workers    sync.WaitGroup
}

// NewStoppableWorkers starts a goroutine for each function passed in. The
// functions are expected to return shortly after their context is canceled.
func NewStoppableWorkers(funcs ...func(context.Context)) *StoppableWorkers {
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	sw := &StoppableWorkers{cancelCtx: cancelCtx, cancelFunc: cancelFunc}
	sw.Add(funcs...)
	return sw
}

// Add starts goroutines for additional functions. Calling Add after Stop is a
// no-op: the group is already torn down and no new work may begin.
func (sw *StoppableWorkers) Add(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.cancelCtx.Err() != nil {
		return
	}

	sw.workers.Add(len(funcs))
	for _, f := range funcs {
		f := f
		goutils.PanicCapturingGo(func() {
			defer sw.workers.Done()
			f(sw.cancelCtx)
		})
	}
}

// Stop cancels the shared context and blocks until all goroutines have
// exited. The wait happens outside the lock so workers that call Add on
// their way out cannot block the teardown.
func (sw *StoppableWorkers) Stop() {
	sw.mu.Lock()
	sw.cancelFunc()
	sw.mu.Unlock()
	sw.workers.Wait()
}

// Context returns the shared context. Mostly useful for tests that need to
// observe cancellation.
func (sw *StoppableWorkers) Context() context.Context {
	return sw.cancelCtx
}
