package chromeasync

import (
	"fmt"
	"sync"
)

// State describes the resolution state of a promise.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

// Value describes the value of a fulfilled promise.
type Value interface{}

// OnFulfilledFunc is used in promise fulfillment handlers. If it returns an
// error value the promise chain rejects with it.
type OnFulfilledFunc func(val Value) Value

// OnRejectedFunc is used in promise rejection handlers. The returned error
// replaces the rejection reason for subsequent handlers.
type OnRejectedFunc func(err error) error

// ResolveFunc fulfills a promise with the given value. Subsequent calls to it
// or to the matching RejectFunc are ignored.
type ResolveFunc func(val Value)

// RejectFunc rejects a promise with the given error. Subsequent calls to it
// or to the matching ResolveFunc are ignored.
type RejectFunc func(err error)

// ExecutorFunc is passed to New in order to expose ResolveFunc and RejectFunc
// to the logic that decides about fulfillment or rejection of a promise.
// Calling neither leaves the promise pending.
type ExecutorFunc func(resolve ResolveFunc, reject RejectFunc)

// A Promise represents the eventual completion (or failure) of an
// asynchronous host operation, and its resulting value. Adapted host
// operations settle the promise from the host's completion callback, which
// may fire long after the executor returned, so settlement is tracked
// independently of executor exit.
type Promise struct {
	mu sync.Mutex

	value Value
	err   error

	fulfillCallbacks []OnFulfilledFunc
	rejectCallbacks  []OnRejectedFunc

	state State

	// settling marks the promise as claimed by the first resolve or reject
	// while its handlers still drain outside the lock. Later settlement
	// attempts check it and bail.
	settling bool

	done chan struct{}
}

// New creates a promise and runs executor on its own goroutine. A panic
// inside the executor rejects the promise.
func New(executor ExecutorFunc) *Promise {
	p := &Promise{
		done: make(chan struct{}),
	}

	if executor != nil {
		go func() {
			defer handlePanic(p)
			executor(p.resolve, p.reject)
		}()
	}

	return p
}

func (p *Promise) resolve(val Value) {
	p.mu.Lock()

	if !p.beginSettle() {
		p.mu.Unlock()
		return
	}

	p.value = val

	for len(p.fulfillCallbacks) > 0 {
		cb := p.fulfillCallbacks[0]
		p.fulfillCallbacks = p.fulfillCallbacks[1:]
		p.mu.Unlock()

		val, err := runFulfillCallback(cb, p.value)

		p.mu.Lock()
		if err != nil {
			p.finishRejected(err)
			return
		}

		p.value = val
	}

	p.state = Fulfilled
	close(p.done)

	p.mu.Unlock()
}

func (p *Promise) reject(err error) {
	p.mu.Lock()

	if !p.beginSettle() {
		p.mu.Unlock()
		return
	}

	p.finishRejected(err)
}

// beginSettle claims the promise for the calling settler. It must be called
// with mu held and returns false if the promise settled already or another
// settler is draining handlers.
func (p *Promise) beginSettle() bool {
	if p.state != Pending || p.settling {
		return false
	}

	p.settling = true

	return true
}

// finishRejected drains rejection handlers, marks the promise rejected and
// closes done. It must be called with mu held and releases it.
func (p *Promise) finishRejected(err error) {
	p.err = err

	for len(p.rejectCallbacks) > 0 {
		cb := p.rejectCallbacks[0]
		p.rejectCallbacks = p.rejectCallbacks[1:]
		p.mu.Unlock()

		err := runRejectCallback(cb, p.err)

		p.mu.Lock()
		p.err = err
	}

	p.state = Rejected
	close(p.done)

	p.mu.Unlock()
}

func runFulfillCallback(cb OnFulfilledFunc, val Value) (out Value, err error) {
	defer func() {
		if v := recover(); v != nil {
			out, err = nil, fmt.Errorf("panic while resolving promise: %v", v)
		}
	}()

	out = cb(val)
	if e, ok := out.(error); ok {
		return nil, e
	}

	return out, nil
}

func runRejectCallback(cb OnRejectedFunc, err error) (out error) {
	defer func() {
		if v := recover(); v != nil {
			out = fmt.Errorf("panic while resolving promise: %v", v)
		}
	}()

	return cb(err)
}

func handlePanic(promise *Promise) {
	err := recover()
	if err != nil {
		promise.reject(fmt.Errorf("panic while resolving promise: %v", err))
	}
}

// Await blocks until the promise settled and returns the fulfillment value or
// rejection error. A promise that never settles blocks forever.
func (p *Promise) Await() (Value, error) {
	<-p.done

	return p.value, p.err
}

// Then attaches a fulfillment handler and optionally a rejection handler to
// the promise. Handlers attached to a pending promise run upon settlement in
// attachment order, each receiving the value returned by the previous one.
func (p *Promise) Then(onFulfilled OnFulfilledFunc, onRejected ...OnRejectedFunc) *Promise {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case Pending:
		if onFulfilled != nil {
			p.fulfillCallbacks = append(p.fulfillCallbacks, onFulfilled)
		}

		if len(onRejected) > 0 && onRejected[0] != nil {
			p.rejectCallbacks = append(p.rejectCallbacks, onRejected[0])
		}
	case Fulfilled:
		if onFulfilled != nil {
			val := onFulfilled(p.value)
			if err, ok := val.(error); ok {
				return Reject(err)
			}

			return Resolve(val)
		}
	case Rejected:
		if len(onRejected) > 0 && onRejected[0] != nil {
			return Reject(onRejected[0](p.err))
		}
	}

	return p
}

// Catch attaches a rejection handler to the promise.
func (p *Promise) Catch(onRejected OnRejectedFunc) *Promise {
	return p.Then(nil, onRejected)
}

// Finally attaches a handler that runs once the promise settled, regardless
// of the outcome. Value and error pass through unchanged.
func (p *Promise) Finally(fn func()) *Promise {
	return p.Then(func(val Value) Value {
		fn()
		return val
	}, func(err error) error {
		fn()
		return err
	})
}

// Resolve creates a promise that is already fulfilled with val. If val is a
// promise itself it is returned as is.
func Resolve(val Value) *Promise {
	if p, ok := val.(*Promise); ok {
		return p
	}

	return &Promise{
		state: Fulfilled,
		value: val,
		done:  closedChan(),
	}
}

// Reject creates a promise that is already rejected with err.
func Reject(err error) *Promise {
	return &Promise{
		state: Rejected,
		err:   err,
		done:  closedChan(),
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
