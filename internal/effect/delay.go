package effect

import "time"

// Delay is a blocking millisecond wait. Effects call it between duty writes;
// the implementation decides whether that blocks a core or the scheduler.
type Delay interface {
	Wait(ms uint32)
}

// Ticker waits on the runtime clock. This is the default on hosted targets,
// where a busy spin would burn a core for nothing.
type Ticker struct{}

func (Ticker) Wait(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Spin busy-waits a calibrated number of loop iterations per millisecond,
// for bare single-context targets with no usable timer. CyclesPerMS is a
// configuration constant supplied by the integrator and depends on the core
// clock (48_000 for a 48 MHz core retiring one iteration per cycle).
type Spin struct {
	CyclesPerMS uint32
}

// spinSink keeps the wait loop observable so it is not optimized away.
var spinSink uint32

func (s Spin) Wait(ms uint32) {
	n := uint64(ms) * uint64(s.CyclesPerMS)
	for i := uint64(0); i < n; i++ {
		spinSink++
	}
}
