//go:build !linux

package pwm

import "fmt"

// Stub implementations for non-Linux platforms. Tests use Recorder instead.

func OpenSysfs(cfg SysfsConfig) (Line, error) {
	return nil, fmt.Errorf("pwm: sysfs pwm unsupported on this platform")
}

func OpenGPIO(pin int) (Line, error) {
	return nil, fmt.Errorf("pwm: gpio unsupported on this platform")
}
