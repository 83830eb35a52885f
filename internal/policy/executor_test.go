// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policy

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countingPolicy increments calls and then signals the given outcome.
func countingPolicy(calls *int32, out Outcome) Func {
	return func(_ context.Context, _ *Request, next Next) {
		atomic.AddInt32(calls, 1)
		next(out)
	}
}

func TestExecutor_AllProceed(t *testing.T) {
	exec := NewExecutor()
	var first, second, third int32

	chain := []Func{
		countingPolicy(&first, Proceed()),
		countingPolicy(&second, Proceed()),
		countingPolicy(&third, Proceed()),
	}

	out := exec.Execute(context.Background(), chain, NewRequest("FileController", "upload"))
	if out.Kind != KindProceed {
		t.Fatalf("outcome = %v, want proceed", out.Kind)
	}
	if first != 1 || second != 1 || third != 1 {
		t.Errorf("call counts = %d,%d,%d, want 1,1,1", first, second, third)
	}
}

// TestExecutor_ShortCircuitOnDeny mirrors the canonical upload chain: with
// isAuthenticated denying, canWrite and hasEnoughSpace must never run.
func TestExecutor_ShortCircuitOnDeny(t *testing.T) {
	exec := NewExecutor()
	var isAuthenticated, canWrite, hasEnoughSpace int32

	chain := []Func{
		countingPolicy(&isAuthenticated, Deny("not signed in")),
		countingPolicy(&canWrite, Proceed()),
		countingPolicy(&hasEnoughSpace, Proceed()),
	}

	out := exec.Execute(context.Background(), chain, NewRequest("FileController", "upload"))
	if out.Kind != KindDenied {
		t.Fatalf("outcome = %v, want denied", out.Kind)
	}
	if out.Reason != "not signed in" {
		t.Errorf("reason = %q, want %q", out.Reason, "not signed in")
	}
	if isAuthenticated != 1 || canWrite != 0 || hasEnoughSpace != 0 {
		t.Errorf("call counts = %d,%d,%d, want 1,0,0", isAuthenticated, canWrite, hasEnoughSpace)
	}
}

func TestExecutor_ShortCircuitOnRedirect(t *testing.T) {
	exec := NewExecutor()
	var after int32

	chain := []Func{
		func(_ context.Context, _ *Request, next Next) {
			next(Redirect("/login"))
		},
		countingPolicy(&after, Proceed()),
	}

	out := exec.Execute(context.Background(), chain, NewRequest("ProfileController", "edit"))
	if out.Kind != KindRedirected {
		t.Fatalf("outcome = %v, want redirected", out.Kind)
	}
	if out.Location != "/login" {
		t.Errorf("location = %q, want /login", out.Location)
	}
	if after != 0 {
		t.Errorf("policy after redirect ran %d times, want 0", after)
	}
}

func TestExecutor_EmptyChainProceeds(t *testing.T) {
	exec := NewExecutor()
	out := exec.Execute(context.Background(), nil, NewRequest("HomeController", "index"))
	if out.Kind != KindProceed {
		t.Errorf("empty chain outcome = %v, want proceed", out.Kind)
	}
}

func TestExecutor_OrderIsPreserved(t *testing.T) {
	exec := NewExecutor()
	var order []string

	named := func(name string) Func {
		return func(_ context.Context, _ *Request, next Next) {
			order = append(order, name)
			next(Proceed())
		}
	}

	chain := []Func{named("isAuthenticated"), named("canWrite"), named("hasEnoughSpace")}
	out := exec.Execute(context.Background(), chain, NewRequest("FileController", "upload"))
	if out.Kind != KindProceed {
		t.Fatalf("outcome = %v, want proceed", out.Kind)
	}

	want := []string{"isAuthenticated", "canWrite", "hasEnoughSpace"}
	if len(order) != len(want) {
		t.Fatalf("execution order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

// TestExecutor_AsyncContinuation exercises a policy that returns before its
// continuation fires from another goroutine.
func TestExecutor_AsyncContinuation(t *testing.T) {
	exec := NewExecutor()
	var after int32

	chain := []Func{
		func(_ context.Context, _ *Request, next Next) {
			go func() {
				time.Sleep(10 * time.Millisecond)
				next(Proceed())
			}()
		},
		countingPolicy(&after, Proceed()),
	}

	out := exec.Execute(context.Background(), chain, NewRequest("FileController", "upload"))
	if out.Kind != KindProceed {
		t.Fatalf("outcome = %v, want proceed", out.Kind)
	}
	if after != 1 {
		t.Errorf("downstream policy ran %d times, want 1", after)
	}
}

func TestExecutor_AsyncDeny(t *testing.T) {
	exec := NewExecutor()
	var after int32

	chain := []Func{
		func(_ context.Context, _ *Request, next Next) {
			go next(Deny("async deny"))
		},
		countingPolicy(&after, Proceed()),
	}

	out := exec.Execute(context.Background(), chain, NewRequest("FileController", "upload"))
	if out.Kind != KindDenied {
		t.Fatalf("outcome = %v, want denied", out.Kind)
	}
	if after != 0 {
		t.Errorf("downstream policy ran %d times, want 0", after)
	}
}

func TestExecutor_PanicBecomesErrored(t *testing.T) {
	exec := NewExecutor()
	var after int32

	chain := []Func{
		func(_ context.Context, _ *Request, _ Next) {
			panic("database exploded")
		},
		countingPolicy(&after, Proceed()),
	}

	out := exec.Execute(context.Background(), chain, NewRequest("FileController", "upload"))
	if out.Kind != KindErrored {
		t.Fatalf("outcome = %v, want errored", out.Kind)
	}
	if out.Err == nil {
		t.Fatal("errored outcome has nil Err")
	}
	if after != 0 {
		t.Errorf("downstream policy ran %d times, want 0", after)
	}
}

func TestExecutor_ErroredIsNotDenied(t *testing.T) {
	exec := NewExecutor()
	cause := errors.New("backend unavailable")

	chain := []Func{
		func(_ context.Context, _ *Request, next Next) {
			next(Errored(cause))
		},
	}

	out := exec.Execute(context.Background(), chain, NewRequest("FileController", "upload"))
	if out.Kind != KindErrored {
		t.Fatalf("outcome = %v, want errored", out.Kind)
	}
	if !errors.Is(out.Err, cause) {
		t.Errorf("Err = %v, want wrapped %v", out.Err, cause)
	}
	if out.Kind == KindDenied {
		t.Error("errored outcome conflated with denied")
	}
}

// TestExecutor_ExtraContinuationCallsIgnored asserts first-signal-wins when a
// misbehaving policy calls next more than once.
func TestExecutor_ExtraContinuationCallsIgnored(t *testing.T) {
	exec := NewExecutor()
	var after int32

	chain := []Func{
		func(_ context.Context, _ *Request, next Next) {
			next(Deny("first"))
			next(Proceed())
		},
		countingPolicy(&after, Proceed()),
	}

	out := exec.Execute(context.Background(), chain, NewRequest("ProfileController", "view"))
	if out.Kind != KindDenied {
		t.Fatalf("outcome = %v, want denied (first signal wins)", out.Kind)
	}
	if after != 0 {
		t.Errorf("downstream policy ran %d times, want 0", after)
	}
}

func TestExecutor_MetaFlowsThroughChain(t *testing.T) {
	exec := NewExecutor()

	chain := []Func{
		func(_ context.Context, req *Request, next Next) {
			req.Meta["subject"] = "alice"
			next(Proceed())
		},
		func(_ context.Context, req *Request, next Next) {
			if req.Meta["subject"] != "alice" {
				next(Deny("no subject"))
				return
			}
			next(Proceed())
		},
	}

	out := exec.Execute(context.Background(), chain, NewRequest("ProfileController", "edit"))
	if out.Kind != KindProceed {
		t.Errorf("outcome = %v, want proceed (meta visible downstream)", out.Kind)
	}
}

func TestExecutor_ConcurrentChains(t *testing.T) {
	exec := NewExecutor()
	chain := []Func{AllowAll(), AllowAll(), AllowAll()}

	const workers = 32
	results := make(chan Outcome, workers)
	for i := 0; i < workers; i++ {
		go func() {
			results <- exec.Execute(context.Background(), chain, NewRequest("HomeController", "index"))
		}()
	}

	for i := 0; i < workers; i++ {
		if out := <-results; out.Kind != KindProceed {
			t.Errorf("concurrent outcome = %v, want proceed", out.Kind)
		}
	}
}
