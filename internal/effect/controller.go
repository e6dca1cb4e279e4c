// Package effect implements the LED duty-cycle sequencer: a smooth breathing
// fade and a grouped heartbeat flash, driven through a PWM channel as a
// deterministic series of duty writes interleaved with blocking delays.
//
// All arithmetic is truncating integer math so the sequences behave the same
// on targets without an FPU. The algorithms keep no state between calls;
// everything they need lives in the Controller's calibration.
package effect

import (
	"errors"
	"math"

	"ledpulse/internal/pwm"
)

// ErrInvalidParameter reports calibration or effect parameters that cannot
// produce a valid duty sequence.
var ErrInvalidParameter = errors.New("effect: invalid parameter")

// Controller owns a PWM channel together with its calibration bounds.
//
// dutyMin and dutyMax delimit the usable brightness range in the channel's
// native duty unit; dutyMid is the truncated midpoint. The effects only ever
// write values inside [dutyMin, dutyMax], plus an absolute 0 when they finish.
type Controller struct {
	pin  pwm.Channel
	wait Delay

	dutyMin uint32
	dutyMax uint32
	dutyMid uint32
}

// New validates the calibration bounds and takes ownership of the channel.
// dutyMax must be strictly greater than dutyMin; otherwise the channel is
// left untouched and ErrInvalidParameter is returned. On success the channel
// output is enabled exactly once.
//
// A nil wait falls back to Ticker.
func New(pin pwm.Channel, dutyMin, dutyMax uint32, wait Delay) (*Controller, error) {
	if dutyMax <= dutyMin {
		return nil, ErrInvalidParameter
	}
	if wait == nil {
		wait = Ticker{}
	}

	c := &Controller{
		pin:     pin,
		wait:    wait,
		dutyMin: dutyMin,
		dutyMax: dutyMax,
		dutyMid: dutyMin + (dutyMax-dutyMin)/2,
	}
	pin.Enable()
	return c, nil
}

// Teardown releases the PWM channel back to the caller. No duty write is
// issued and the output is not disabled; whatever the last effect wrote is
// still on the pin, and any shutdown is now the caller's responsibility.
func (c *Controller) Teardown() pwm.Channel {
	pin := c.pin
	c.pin = nil
	return pin
}

func satAdd(v, n uint32) uint32 {
	if v > math.MaxUint32-n {
		return math.MaxUint32
	}
	return v + n
}

func satSub(v, n uint32) uint32 {
	if v < n {
		return 0
	}
	return v - n
}
