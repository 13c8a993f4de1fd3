package p4

import (
	"context"
	"sync"
)

// fakeExecutor records invocations and answers from a script.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []Invocation
	run   func(ctx context.Context, inv Invocation) (Result, error)
}

func (f *fakeExecutor) Run(ctx context.Context, inv Invocation) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()
	if f.run == nil {
		return Result{}, nil
	}
	return f.run(ctx, inv)
}

func (f *fakeExecutor) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}
