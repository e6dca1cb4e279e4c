package effect

import (
	"testing"
	"time"
)

func TestSpin_WaitReturns(t *testing.T) {
	s := Spin{CyclesPerMS: 100}
	done := make(chan struct{})
	go func() {
		s.Wait(5)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Spin.Wait did not return")
	}
}

func TestSpin_ZeroMillisecondsIsImmediate(t *testing.T) {
	Spin{CyclesPerMS: 1_000_000}.Wait(0)
}

func TestTicker_ZeroMillisecondsIsImmediate(t *testing.T) {
	Ticker{}.Wait(0)
}
