package chromeasync

import (
	"testing"
	"time"
)

type settlement struct {
	val Value
	err error
}

func awaitWithTimeout(t *testing.T, p *Promise, timeout time.Duration) (Value, error) {
	t.Helper()

	settled := make(chan settlement, 1)

	go func() {
		val, err := p.Await()
		settled <- settlement{val, err}
	}()

	select {
	case s := <-settled:
		return s.val, s.err
	case <-time.After(timeout):
		t.Fatalf("promise did not settle within %s", timeout)
		return nil, nil
	}
}
