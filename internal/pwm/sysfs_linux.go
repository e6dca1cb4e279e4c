//go:build linux

package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Sysfs drives a hardware PWM channel via /sys/class/pwm.
//
// Notes:
// - On Raspberry Pi, you typically need `dtoverlay=pwm-2chan` (or equivalent)
//   so that GPIO18/GPIO19 are exposed as PWM channels under /sys/class/pwm.
// - The duty unit exposed to callers is nanoseconds of on-time within the
//   configured period, so MaxDuty() equals the period in ns. That keeps the
//   full hardware resolution available to the effect engine.
//
// Write failures after a successful open are remembered and reported by Err;
// the Channel methods themselves stay error-free.
type Sysfs struct {
	chipPath string // /sys/class/pwm/pwmchipN
	pwmPath  string // /sys/class/pwm/pwmchipN/pwmM
	channel  int

	periodNS uint32
	duty     uint32
	lastErr  error
}

var sysfsBase = "/sys/class/pwm"

// OpenSysfs exports and configures a sysfs PWM channel. The channel is left
// disabled with duty 0; callers enable it when they are ready to drive it.
func OpenSysfs(cfg SysfsConfig) (*Sysfs, error) {
	if cfg.Period <= 0 {
		cfg.Period = time.Millisecond
	}
	ns := cfg.Period.Nanoseconds()
	if ns > int64(^uint32(0)) {
		return nil, fmt.Errorf("pwm: period %s too large for a 32-bit duty range", cfg.Period)
	}

	var chipPath string
	if cfg.Chip >= 0 {
		chipPath = filepath.Join(sysfsBase, fmt.Sprintf("pwmchip%d", cfg.Chip))
		if _, err := readInt(filepath.Join(chipPath, "npwm")); err != nil {
			return nil, fmt.Errorf("pwm: read %s: %w", filepath.Join(chipPath, "npwm"), err)
		}
	} else {
		var err error
		chipPath, err = findChip()
		if err != nil {
			return nil, err
		}
	}

	d := &Sysfs{
		chipPath: chipPath,
		channel:  cfg.Channel,
		pwmPath:  filepath.Join(chipPath, fmt.Sprintf("pwm%d", cfg.Channel)),
		periodNS: uint32(ns),
	}

	if err := d.ensureExported(); err != nil {
		return nil, err
	}

	// Disable before changing period (common sysfs requirement), then start
	// from a known all-off state.
	_ = d.write("enable", "0")
	if err := d.write("period", strconv.FormatUint(uint64(d.periodNS), 10)); err != nil {
		return nil, fmt.Errorf("pwm: set period: %w", err)
	}
	if err := d.write("duty_cycle", "0"); err != nil {
		return nil, fmt.Errorf("pwm: clear duty: %w", err)
	}
	return d, nil
}

// findChip probes for the first pwmchip exposing at least one channel.
// pwmchip0 is preferred if present (common on Pi).
func findChip() (string, error) {
	entries, err := os.ReadDir(sysfsBase)
	if err != nil {
		return "", fmt.Errorf("pwm: read %s: %w", sysfsBase, err)
	}

	preferred := []string{"pwmchip0", "pwmchip1", "pwmchip2"}
	// Note: in sysfs, pwmchipN entries are commonly symlinks, not directories.
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "pwmchip") {
			seen[e.Name()] = true
		}
	}
	candidates := make([]string, 0, len(preferred)+len(entries))
	for _, name := range preferred {
		if seen[name] {
			candidates = append(candidates, name)
		}
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "pwmchip") && !contains(candidates, name) {
			candidates = append(candidates, name)
		}
	}

	for _, name := range candidates {
		chip := filepath.Join(sysfsBase, name)
		n, rerr := readInt(filepath.Join(chip, "npwm"))
		if rerr != nil || n <= 0 {
			continue
		}
		return chip, nil
	}
	return "", fmt.Errorf("pwm: no sysfs pwmchip found (is a pwm overlay enabled?)")
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func (d *Sysfs) ensureExported() error {
	if _, err := os.Stat(d.pwmPath); err == nil {
		return nil
	}
	exportPath := filepath.Join(d.chipPath, "export")
	if err := writeSysfs(exportPath, strconv.Itoa(d.channel)); err != nil {
		// If already exported by someone else, ignore.
		if _, statErr := os.Stat(d.pwmPath); statErr == nil {
			return nil
		}
		return fmt.Errorf("pwm: export channel %d: %w", d.channel, err)
	}

	// Wait briefly for the sysfs node to appear.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(d.pwmPath); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Stat(d.pwmPath); err != nil {
		return fmt.Errorf("pwm: channel path not created after export: %w", err)
	}
	return nil
}

func (d *Sysfs) Enable()  { d.setErr(d.write("enable", "1")) }
func (d *Sysfs) Disable() { d.setErr(d.write("enable", "0")) }

func (d *Sysfs) SetDuty(duty uint32) {
	if duty > d.periodNS {
		duty = d.periodNS
	}
	d.setErr(d.write("duty_cycle", strconv.FormatUint(uint64(duty), 10)))
	d.duty = duty
}

func (d *Sysfs) Duty() uint32    { return d.duty }
func (d *Sysfs) MaxDuty() uint32 { return d.periodNS }

// Err reports the first write failure since the channel was opened.
func (d *Sysfs) Err() error { return d.lastErr }

// Close turns the output off and disables the channel. The channel stays
// exported so a follow-up open does not race udev again.
func (d *Sysfs) Close() error {
	_ = d.write("duty_cycle", "0")
	_ = d.write("enable", "0")
	d.duty = 0
	return nil
}

func (d *Sysfs) setErr(err error) {
	if d.lastErr == nil && err != nil {
		d.lastErr = err
	}
}

func (d *Sysfs) write(name, value string) error {
	return writeSysfs(filepath.Join(d.pwmPath, name), value)
}

func writeSysfs(path string, value string) error {
	// Use O_WRONLY without O_TRUNC/O_CREATE.
	// Some sysfs attributes reject truncation flags even when mode bits allow
	// writes, resulting in confusing EACCES/EPERM at open() time.
	// Additionally: immediately after exporting a PWM channel, the kernel
	// creates new sysfs files and udev may adjust permissions asynchronously.
	// On some systems there's a short window where open() returns EACCES or
	// ENOENT even though the steady-state permissions are correct.
	deadline := time.Now().Add(2 * time.Second)
	var lastErr error
	for {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			if time.Now().Before(deadline) && isRetryableSysfsErr(err) {
				time.Sleep(25 * time.Millisecond)
				continue
			}
			return err
		}
		_, werr := f.WriteString(value)
		cerr := f.Close()
		if werr == nil && cerr == nil {
			return nil
		}
		if werr != nil {
			lastErr = werr
		} else {
			lastErr = cerr
		}
		if time.Now().Before(deadline) && isRetryableSysfsErr(lastErr) {
			time.Sleep(25 * time.Millisecond)
			continue
		}
		if werr != nil && cerr != nil {
			return errors.Join(werr, cerr)
		}
		if werr != nil {
			return werr
		}
		return cerr
	}
}

func isRetryableSysfsErr(err error) bool {
	return errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) || errors.Is(err, unix.ENOENT)
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return n, nil
}
