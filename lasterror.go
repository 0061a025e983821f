package chromeasync

import "sync"

// OpError is the structured error a promise rejects with when the host
// reported a failure through the ambient last-error slot.
type OpError struct {
	Message string
}

func (e *OpError) Error() string {
	return e.Message
}

// LastError is the ambient error slot of a host. The host populates it
// immediately before invoking a completion callback when the operation
// failed, and leaves it empty otherwise. The adapter reads the slot exactly
// once per completed operation, synchronously inside the completion callback,
// so that a subsequent operation cannot overwrite the value before it is
// observed.
type LastError struct {
	mu  sync.Mutex
	err *OpError
}

// Set marks the slot as populated with the given failure message. An empty
// message still counts as a failure; Take synthesizes a description for it.
func (l *LastError) Set(message string) {
	l.mu.Lock()
	l.err = &OpError{Message: message}
	l.mu.Unlock()
}

// Clear empties the slot.
func (l *LastError) Clear() {
	l.mu.Lock()
	l.err = nil
	l.mu.Unlock()
}

// Peek reports the current content of the slot without consuming it. It
// exists for host-side inspection; the adapter itself only uses Take.
func (l *LastError) Peek() *OpError {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.err
}

// Take consumes the slot: it returns nil if the slot is empty, otherwise it
// empties the slot and returns the failure as an error. A populated slot
// without a message yields a synthesized description.
func (l *LastError) Take() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err == nil {
		return nil
	}

	err := l.err
	l.err = nil

	if err.Message == "" {
		return &OpError{Message: "host reported a failure without a message"}
	}

	return err
}
