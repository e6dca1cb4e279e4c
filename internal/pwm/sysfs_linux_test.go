//go:build linux

package pwm

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeChip builds a pwmchip directory with an already-exported channel 0.
// writeSysfs opens attributes without O_CREATE, so every file must exist
// up front, just like on a real system.
func fakeChip(t *testing.T) (base, chip, pwm0 string) {
	t.Helper()
	base = t.TempDir()
	chip = filepath.Join(base, "pwmchip0")
	pwm0 = filepath.Join(chip, "pwm0")
	if err := os.MkdirAll(pwm0, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	files := map[string]string{
		filepath.Join(chip, "npwm"):       "2\n",
		filepath.Join(chip, "export"):     "",
		filepath.Join(pwm0, "period"):     "",
		filepath.Join(pwm0, "duty_cycle"): "",
		filepath.Join(pwm0, "enable"):     "",
	}
	for path, contents := range files {
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", path, err)
		}
	}
	return base, chip, pwm0
}

func readAttr(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile %s: %v", path, err)
	}
	return string(b)
}

func TestOpenSysfs_ConfiguresPeriodAndClearsDuty(t *testing.T) {
	base, _, pwm0 := fakeChip(t)
	old := sysfsBase
	sysfsBase = base
	t.Cleanup(func() { sysfsBase = old })

	d, err := OpenSysfs(SysfsConfig{Chip: 0, Channel: 0, Period: time.Millisecond})
	if err != nil {
		t.Fatalf("OpenSysfs: %v", err)
	}
	if got := d.MaxDuty(); got != 1_000_000 {
		t.Fatalf("MaxDuty=%d want 1000000", got)
	}
	if got := readAttr(t, filepath.Join(pwm0, "period")); got != "1000000" {
		t.Fatalf("period=%q want 1000000", got)
	}
	if got := readAttr(t, filepath.Join(pwm0, "duty_cycle")); got != "0" {
		t.Fatalf("duty_cycle=%q want 0", got)
	}
	if got := readAttr(t, filepath.Join(pwm0, "enable")); got != "0" {
		t.Fatalf("enable=%q want 0", got)
	}
}

func TestSysfs_SetDutyClampsToPeriod(t *testing.T) {
	base, _, pwm0 := fakeChip(t)
	old := sysfsBase
	sysfsBase = base
	t.Cleanup(func() { sysfsBase = old })

	d, err := OpenSysfs(SysfsConfig{Chip: 0, Channel: 0, Period: time.Millisecond})
	if err != nil {
		t.Fatalf("OpenSysfs: %v", err)
	}

	d.SetDuty(250_000)
	if got := readAttr(t, filepath.Join(pwm0, "duty_cycle")); got != "250000" {
		t.Fatalf("duty_cycle=%q want 250000", got)
	}
	if got := d.Duty(); got != 250_000 {
		t.Fatalf("Duty=%d want 250000", got)
	}

	d.SetDuty(5_000_000) // beyond the period
	if got := readAttr(t, filepath.Join(pwm0, "duty_cycle")); got != "1000000" {
		t.Fatalf("duty_cycle=%q want clamp to 1000000", got)
	}

	d.Enable()
	if got := readAttr(t, filepath.Join(pwm0, "enable")); got != "1" {
		t.Fatalf("enable=%q want 1", got)
	}
	if err := d.Err(); err != nil {
		t.Fatalf("Err() = %v want nil", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := readAttr(t, filepath.Join(pwm0, "enable")); got != "0" {
		t.Fatalf("enable after Close=%q want 0", got)
	}
}

func TestFindChip_AcceptsSymlinkedPWMChip(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "pwm")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	// Create a real pwmchip directory somewhere else, then symlink it as pwmchip0.
	realChip := filepath.Join(dir, "realchip0")
	if err := os.MkdirAll(realChip, 0o755); err != nil {
		t.Fatalf("MkdirAll realChip: %v", err)
	}
	if err := os.WriteFile(filepath.Join(realChip, "npwm"), []byte("2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile npwm: %v", err)
	}

	link := filepath.Join(base, "pwmchip0")
	if err := os.Symlink(realChip, link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	old := sysfsBase
	sysfsBase = base
	t.Cleanup(func() { sysfsBase = old })

	chipPath, err := findChip()
	if err != nil {
		t.Fatalf("findChip: %v", err)
	}
	if chipPath != link {
		t.Fatalf("chipPath=%q want %q", chipPath, link)
	}
}
