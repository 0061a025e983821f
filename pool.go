package chromeasync

import (
	"context"
	"sync"
)

// A Call is one queued invocation of an adapted host operation.
type Call struct {
	Fn   AsyncFunc
	Args []Value
}

// PoolEventListener can be attached to a call pool to listen for fulfillment
// and rejection events of the adapted operations it runs. This can be used
// for logging or collecting values.
type PoolEventListener struct {
	// OnFulfilled is called with the normalized payload of each fulfilled
	// operation.
	OnFulfilled func(val Value)

	// OnRejected is called on each rejected operation.
	OnRejected func(err error)
}

// A Pool runs adapted host operations from a stream of calls and supervises
// their resolution. It ensures that only a configurable number of operations
// are in flight at the same time; everything beyond that waits, since the
// adapter itself offers no throttling.
type Pool struct {
	mu        sync.Mutex
	sem       chan struct{}
	done      chan struct{}
	result    chan Result
	calls     <-chan Call
	listeners []*PoolEventListener
	promise   *Promise
}

// NewPool creates a call pool with the given concurrency reading from calls.
// Non-positive concurrency values cause a panic, as do calls carrying a nil
// Fn once Run consumes them.
func NewPool(concurrency int64, calls <-chan Call) *Pool {
	if concurrency <= 0 {
		panic("concurrency must be greater than 0")
	}

	return &Pool{
		calls:  calls,
		sem:    make(chan struct{}, concurrency),
		done:   make(chan struct{}),
		result: make(chan Result),
	}
}

// Run starts the pool. It consumes the calls channel with the configured
// concurrency and returns a promise which fulfills once the channel is
// closed and all in-flight operations settled. The promise rejects upon the
// first rejected operation or if ctx is cancelled. Run must only be called
// once; subsequent calls panic.
func (p *Pool) Run(ctx context.Context) *Promise {
	if p.promise != nil {
		panic("call pool cannot be started twice")
	}

	p.promise = New(func(resolve ResolveFunc, reject RejectFunc) {
		defer func() {
			p.mu.Lock()
			p.listeners = nil
			close(p.done)
			p.mu.Unlock()
		}()

		select {
		case res := <-p.result:
			if res.Err != nil {
				reject(res.Err)
				return
			}

			resolve(res.Value)
		case <-ctx.Done():
			reject(ctx.Err())
		}
	})

	go p.run(ctx)

	return p.promise
}

func (p *Pool) run(ctx context.Context) {
	for {
		select {
		case call, ok := <-p.calls:
			if !ok {
				// Calls channel was closed, we need to stop. By consuming all
				// semaphores we make sure that all operations currently in
				// flight settled before we send the final result.
				for i := 0; i < cap(p.sem); i++ {
					p.sem <- struct{}{}
				}

				// The pool promise may have rejected while we drained, in
				// which case nobody receives the final result anymore.
				select {
				case p.result <- Result{}:
				case <-p.done:
				}
				return
			}

			// Wait for a semaphore before dispatching the call to the host.
			select {
			case p.sem <- struct{}{}:
				p.execute(call)
			case <-p.done:
				// One of the operations currently in flight rejected or ctx
				// was cancelled which in turn caused the pool promise to
				// reject while waiting for sem. We exit here as there is no
				// point in continuing.
				return
			}
		}
	}
}

func (p *Pool) execute(call Call) {
	call.Fn(call.Args...).Then(func(val Value) Value {
		p.dispatchFulfillment(val)
		<-p.sem

		return val
	}, func(err error) error {
		p.dispatchRejection(err)

		// The first rejected operation wins and rejects the pool promise.
		// Later rejections find done closed and are discarded, which also
		// keeps their goroutines from leaking.
		select {
		case p.result <- Result{Err: err}:
		case <-p.done:
		}

		<-p.sem

		return err
	})
}

func (p *Pool) dispatchFulfillment(val Value) {
	p.mu.Lock()
	listeners := p.listeners
	p.mu.Unlock()

	for _, l := range listeners {
		if l.OnFulfilled != nil {
			l.OnFulfilled(val)
		}
	}
}

func (p *Pool) dispatchRejection(err error) {
	p.mu.Lock()
	listeners := p.listeners
	p.mu.Unlock()

	for _, l := range listeners {
		if l.OnRejected != nil {
			l.OnRejected(err)
		}
	}
}

// AddEventListener adds listener to the pool. Will not add it again if
// listener is already present.
func (p *Pool) AddEventListener(listener *PoolEventListener) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, l := range p.listeners {
		if l == listener {
			return
		}
	}

	p.listeners = append(p.listeners, listener)
}

// RemoveEventListener removes listener from the pool if it was present.
func (p *Pool) RemoveEventListener(listener *PoolEventListener) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, l := range p.listeners {
		if l == listener {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}
