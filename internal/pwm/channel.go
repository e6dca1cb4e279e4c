// Package pwm provides the PWM output abstraction the effect engine drives.
//
// The real backends talk to Linux PWM hardware (sysfs or a plain GPIO line);
// Recorder is a test double that records every call.
package pwm

import "time"

// Channel is the capability set the effect engine needs from a PWM output.
//
// Duty values are in the channel's native unit (hardware counts, nanoseconds
// or on/off steps depending on backend) and fit in a uint32. MaxDuty reports
// the largest meaningful duty value; Duty reports the last duty written.
//
// None of the methods return errors: the effect engine treats the handle the
// way firmware treats a timer register. Hardware backends that can fail keep
// a sticky error the owner checks out of band (see Line).
type Channel interface {
	Enable()
	Disable()
	SetDuty(duty uint32)
	Duty() uint32
	MaxDuty() uint32
}

// Line is a Channel backed by real hardware. Err reports the first deferred
// I/O error since the line was opened. Close releases the underlying device
// and leaves the output off.
type Line interface {
	Channel
	Err() error
	Close() error
}

// SysfsConfig selects a hardware PWM channel under /sys/class/pwm.
type SysfsConfig struct {
	// Chip is the pwmchip index. A negative value probes for the first chip
	// that exposes at least one channel.
	Chip int
	// Channel is the channel index within the chip.
	Channel int
	// Period is the PWM period; the channel's native duty unit is nanoseconds
	// of on-time within it, so MaxDuty equals the period in ns.
	Period time.Duration
}
