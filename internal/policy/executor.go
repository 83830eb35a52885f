// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

/*
executor.go - Sequential Policy Chain Executor

Runs a resolved chain of policy functions strictly in order with
short-circuit semantics:

  - first non-proceed outcome wins; later policies never run
  - all-proceed yields KindProceed (run the handler, exactly once)
  - a panicking policy yields KindErrored, never a process crash
  - policies may complete asynchronously via their Next handle

Ordering is semantically meaningful (authentication before authorization,
for example), so the executor never reorders, parallelizes, or deduplicates
a chain.
*/

package policy

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Executor runs policy chains. It is stateless and safe for concurrent use;
// one Executor serves every request in the process.
type Executor struct{}

// NewExecutor returns a chain executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs chain against req strictly in order and returns the terminal
// outcome.
//
// An empty chain proceeds: it is the expansion of an allow-all specification.
// Execute blocks until a terminal outcome exists; a policy that never signals
// its continuation blocks its request indefinitely (caller responsibility, no
// timeout is imposed here - wrap the surrounding handler if one is needed).
func (e *Executor) Execute(ctx context.Context, chain []Func, req *Request) Outcome {
	start := time.Now()

	for _, fn := range chain {
		out := e.invoke(ctx, fn, req)
		if out.Kind != KindProceed {
			recordDecision(req, out, time.Since(start))
			return out
		}
	}

	out := Proceed()
	recordDecision(req, out, time.Since(start))
	return out
}

// invoke runs a single policy and waits for its continuation to fire.
func (e *Executor) invoke(ctx context.Context, fn Func, req *Request) Outcome {
	done := make(chan Outcome, 1)
	var once sync.Once
	next := Next(func(out Outcome) {
		once.Do(func() { done <- out })
	})

	if out, panicked := e.run(ctx, fn, req, next); panicked {
		return out
	}

	// The policy returned without panicking. Its continuation may already
	// have fired, or may fire later from a goroutine; either way the
	// buffered channel delivers exactly the first signal.
	return <-done
}

// run calls fn, converting a panic into an Errored outcome. A panic always
// wins over a previously signaled outcome: a policy that blew up mid-flight
// is not trusted to have decided anything.
func (e *Executor) run(ctx context.Context, fn Func, req *Request, next Next) (out Outcome, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			out = Errored(fmt.Errorf("policy panic: %v", r))
		}
	}()

	fn(ctx, req, next)
	return Outcome{}, false
}
