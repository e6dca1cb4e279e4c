//go:build linux

package pwm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// OpenGPIO returns a Channel which drives the given BCM GPIO as a digital
// output using the Linux GPIO character device (libgpiod).
//
// This is intended for LEDs wired to a plain GPIO with no PWM-capable pin.
// The duty range collapses to {0, 1}: any duty > 0 turns the line on. The
// effect engine still produces its full sequence; the LED just flashes
// instead of fading.
func OpenGPIO(pin int) (*GPIO, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("pwm: invalid gpio pin %d", pin)
	}

	// On Pi, line names are commonly "GPIO18", etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	// Try likely chips first (Pi 5 kernel variants can expose header GPIOs on
	// gpiochip0 and sometimes additional chips exist).
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("ledpulse"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &GPIO{chip: chip, line: line}, nil
	}

	return nil, fmt.Errorf("pwm: gpio line %q not found (or busy)", lineName)
}

// GPIO adapts a libgpiod output line to the Channel capability set.
type GPIO struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	enabled bool
	duty    uint32
	lastErr error
}

// Enable re-applies the last duty to the line.
func (g *GPIO) Enable() {
	g.enabled = true
	g.apply()
}

// Disable forces the line low without forgetting the duty value.
func (g *GPIO) Disable() {
	g.enabled = false
	g.setErr(g.line.SetValue(0))
}

func (g *GPIO) SetDuty(duty uint32) {
	g.duty = duty
	g.apply()
}

func (g *GPIO) Duty() uint32    { return g.duty }
func (g *GPIO) MaxDuty() uint32 { return 1 }

// Err reports the first line write failure since the line was opened.
func (g *GPIO) Err() error { return g.lastErr }

// Close turns the line off and releases it.
func (g *GPIO) Close() error {
	if g.line == nil {
		return nil
	}
	_ = g.line.SetValue(0)
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}

func (g *GPIO) apply() {
	if !g.enabled {
		return
	}
	v := 0
	if g.duty > 0 {
		v = 1
	}
	g.setErr(g.line.SetValue(v))
}

func (g *GPIO) setErr(err error) {
	if g.lastErr == nil && err != nil {
		g.lastErr = err
	}
}
