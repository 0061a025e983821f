package chromeasync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func makePool(concurrency int64) (*Pool, chan Call) {
	calls := make(chan Call)
	pool := NewPool(concurrency, calls)
	return pool, calls
}

func resolvingCall(fulfilled *int64) Call {
	return Call{
		Fn: Promisify(func(args ...Value) {
			atomic.AddInt64(fulfilled, 1)
			args[len(args)-1].(CompletionFunc)("done")
		}, nil),
	}
}

func TestNewPool_Panic(t *testing.T) {
	defer goleak.VerifyNone(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()

	NewPool(0, make(chan Call))
}

func TestPool(t *testing.T) {
	defer goleak.VerifyNone(t)

	var fulfilled int64

	pool, calls := makePool(10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer close(calls)

		for i := 0; i < 10; i++ {
			select {
			case calls <- resolvingCall(&fulfilled):
			case <-ctx.Done():
				return
			}
		}
	}()

	p := pool.Run(ctx)

	_, err := awaitWithTimeout(t, p, 2*time.Second)
	if err != nil {
		t.Fatalf("expected nil error, got: %#v", err)
	}

	if n := atomic.LoadInt64(&fulfilled); n != 10 {
		t.Fatalf("expected 10 fulfilled operations, got %d", n)
	}
}

func TestPool_Reject(t *testing.T) {
	defer goleak.VerifyNone(t)

	var last LastError

	pool, calls := makePool(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer close(calls)

		calls <- Call{
			Fn: Promisify(func(args ...Value) {
				last.Set("boom")
				args[len(args)-1].(CompletionFunc)()
			}, &last),
		}
	}()

	p := pool.Run(ctx)

	_, err := awaitWithTimeout(t, p, 2*time.Second)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected error %q, got: %v", "boom", err)
	}
}

func TestPool_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool, calls := makePool(1)
	defer close(calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := pool.Run(ctx)

	_, err := awaitWithTimeout(t, p, 2*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestPool_RunTwicePanics(t *testing.T) {

	pool, calls := makePool(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer close(calls)
	}()

	p := pool.Run(ctx)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}

		_, _ = awaitWithTimeout(t, p, 2*time.Second)
	}()

	pool.Run(ctx)
}

func TestPool_EventListeners(t *testing.T) {
	defer goleak.VerifyNone(t)

	var last LastError

	var fulfillments, rejections int64

	listener := &PoolEventListener{
		OnFulfilled: func(val Value) {
			atomic.AddInt64(&fulfillments, 1)
		},
		OnRejected: func(err error) {
			atomic.AddInt64(&rejections, 1)
		},
	}

	pool, calls := makePool(1)
	pool.AddEventListener(listener)
	pool.AddEventListener(listener) // duplicates are ignored

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer close(calls)

		calls <- Call{Fn: Promisify(func(args ...Value) {
			args[len(args)-1].(CompletionFunc)("ok")
		}, &last)}

		calls <- Call{Fn: Promisify(func(args ...Value) {
			last.Set("boom")
			args[len(args)-1].(CompletionFunc)()
		}, &last)}
	}()

	p := pool.Run(ctx)

	_, err := awaitWithTimeout(t, p, 2*time.Second)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if n := atomic.LoadInt64(&fulfillments); n != 1 {
		t.Fatalf("expected 1 fulfillment event, got %d", n)
	}

	if n := atomic.LoadInt64(&rejections); n != 1 {
		t.Fatalf("expected 1 rejection event, got %d", n)
	}
}

func TestPool_RemoveEventListener(t *testing.T) {
	pool, _ := makePool(1)

	listener := &PoolEventListener{}

	pool.AddEventListener(listener)
	pool.RemoveEventListener(listener)
	pool.RemoveEventListener(listener)

	if len(pool.listeners) != 0 {
		t.Fatalf("expected no listeners, got %d", len(pool.listeners))
	}
}
