// Package instrumented wraps adapted host operations for debugging, tracing
// and logging of their invocations and outcomes.
package instrumented

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	chromeasync "github.com/masihfathi/chromeExtensionAsync"
)

// InstrumentationHandlerFunc is the signature of a func that can be used as
// an invocation handler. It is called with an invocation info every time an
// instrumented operation settles.
type InstrumentationHandlerFunc func(invocation *Invocation)

// Invocation is a container for information about one call of an
// instrumented operation.
type Invocation struct {
	// UUID is a unique string that is automatically generated for every
	// invocation to keep track of it across handlers.
	UUID string

	// Args holds the arguments the adapted operation was invoked with,
	// including a trailing secondary callback if one was supplied.
	Args []Value

	// Value holds the normalized payload the operation fulfilled with. Nil
	// on rejection.
	Value Value

	// Err holds the rejection reason. Nil on fulfillment.
	Err error

	// CallerInfo contains info about the callsite that invoked the adapted
	// operation, not the internals of the adapter, which would generally not
	// be useful to the user.
	CallerInfo CallerInfo

	// StartTime holds the time the operation was invoked at.
	StartTime time.Time

	// EndTime holds the time at which the operation settled.
	EndTime time.Time
}

// CallerInfo contains information about a call site.
type CallerInfo struct {
	// File in which the call happened.
	File string

	// Func contains the name of the the func surrounding the call site.
	Func string

	// Line number of the call site.
	Line int
}

func getCallerInfo(skipFrames int) CallerInfo {
	pc, file, line, _ := runtime.Caller(skipFrames)

	return CallerInfo{
		File: file,
		Func: runtime.FuncForPC(pc).Name(),
		Line: line,
	}
}

var defaultInstrumentation = NewInstrumentation()

// Instrumentation wraps adapted operations so that the configured handlers
// observe every invocation. It is useful as a drop-in around
// chromeasync.Promisify or a Binder's output.
type Instrumentation struct {
	sync.RWMutex
	handlers []InstrumentationHandlerFunc
}

// NewInstrumentation creates an instrumentation with the given handler
// funcs. If no handler funcs are provided, wrapping returns operations
// without instrumenting them.
func NewInstrumentation(handlers ...InstrumentationHandlerFunc) *Instrumentation {
	return &Instrumentation{
		handlers: handlers,
	}
}

// AddHandlers adds handler funcs to the instrumentation. Newly added
// handlers also observe operations previously wrapped by this
// instrumentation.
func (i *Instrumentation) AddHandlers(handlers ...InstrumentationHandlerFunc) {
	i.Lock()
	defer i.Unlock()

	i.handlers = append(i.handlers, handlers...)
}

// RemoveHandlers removes all handlers from the instrumentation. This can be
// used to conditionally disable instrumentation without altering the code
// invoking the operations.
func (i *Instrumentation) RemoveHandlers() {
	i.Lock()
	defer i.Unlock()

	i.handlers = nil
}

// Handlers returns the handlers configured for i. This method is
// thread-safe.
func (i *Instrumentation) Handlers() []InstrumentationHandlerFunc {
	i.RLock()
	defer i.RUnlock()

	handlers := i.handlers
	return handlers
}

func (i *Instrumentation) dispatch(invocation *Invocation) {
	for _, handler := range i.Handlers() {
		handler(invocation)
	}
}

// Wrap instruments an adapted operation. Every invocation of the returned
// func gets its own UUID and is reported to the configured handlers once the
// promise settles. Invocations made while the handler list is empty are not
// recorded and carry no bookkeeping overhead.
func (i *Instrumentation) Wrap(fn AsyncFunc) AsyncFunc {
	return func(args ...Value) *Promise {
		if len(i.Handlers()) == 0 {
			// No handlers, no bookkeeping. Operations stay cheap when the
			// instrumentation is disabled.
			return fn(args...)
		}

		invocation := &Invocation{
			UUID:       uuid.New().String(),
			Args:       args,
			CallerInfo: getCallerInfo(2),
			StartTime:  time.Now(),
		}

		return fn(args...).Then(func(val Value) Value {
			invocation.EndTime = time.Now()
			invocation.Value = val
			i.dispatch(invocation)

			return val
		}, func(err error) error {
			invocation.EndTime = time.Now()
			invocation.Err = err
			i.dispatch(invocation)

			return err
		})
	}
}

// Promisify adapts a host operation like chromeasync.Promisify and
// instruments the result.
func (i *Instrumentation) Promisify(fn HostFunc, last *LastError) AsyncFunc {
	return i.Wrap(chromeasync.Promisify(fn, last))
}

// Wrap instruments an adapted operation using the default instrumentation.
func Wrap(fn AsyncFunc) AsyncFunc {
	return defaultInstrumentation.Wrap(fn)
}

// Promisify adapts a host operation and instruments it using the default
// instrumentation.
func Promisify(fn HostFunc, last *LastError) AsyncFunc {
	return defaultInstrumentation.Promisify(fn, last)
}

// AddInstrumentationHandlers adds handlers to the default instrumentation.
func AddInstrumentationHandlers(handlers ...InstrumentationHandlerFunc) {
	defaultInstrumentation.AddHandlers(handlers...)
}

// RemoveInstrumentationHandlers removes all handlers from the default
// instrumentation.
func RemoveInstrumentationHandlers() {
	defaultInstrumentation.RemoveHandlers()
}
