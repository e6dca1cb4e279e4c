package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "led:\n  duty_max: 255\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PWM.Backend != "sysfs" {
		t.Fatalf("backend=%q want sysfs", cfg.PWM.Backend)
	}
	if cfg.PWM.Period != time.Millisecond {
		t.Fatalf("period=%s want 1ms", cfg.PWM.Period)
	}
	if cfg.Clock.Delay != "sleep" {
		t.Fatalf("delay=%q want sleep", cfg.Clock.Delay)
	}
	if cfg.Playlist.Rest != 1*time.Second {
		t.Fatalf("rest=%s want 1s", cfg.Playlist.Rest)
	}
}

func TestLoad_StepDefaultsAndValidation(t *testing.T) {
	body := "playlist:\n" +
		"  steps:\n" +
		"    - effect: heartbeat\n" +
		"      beats: 2\n" +
		"      bpm: 60\n"
	path := writeTempConfig(t, body)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.Playlist.Steps[0].GroupedAs; got != 1 {
		t.Fatalf("grouped_as=%d want default 1", got)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "UnknownBackend",
			body: "pwm:\n  backend: i2c\n",
			want: "pwm.backend must be 'sysfs' or 'gpio'",
		},
		{
			name: "GPIORequiresPin",
			body: "pwm:\n  backend: gpio\n",
			want: "pwm.gpio_pin is required when pwm.backend is 'gpio'",
		},
		{
			name: "PeriodTooLarge",
			body: "pwm:\n  period: 5s\n",
			want: "pwm.period must fit a 32-bit nanosecond duty range",
		},
		{
			name: "InvertedDutyBounds",
			body: "led:\n  duty_min: 200\n  duty_max: 100\n",
			want: "led.duty_max must be greater than led.duty_min",
		},
		{
			name: "SpinRequiresCalibration",
			body: "clock:\n  delay: spin\n",
			want: "clock.cycles_per_ms is required when clock.delay is 'spin'",
		},
		{
			name: "UnknownDelay",
			body: "clock:\n  delay: busy\n",
			want: "clock.delay must be 'sleep' or 'spin'",
		},
		{
			name: "BreathRequiresDuration",
			body: "playlist:\n  steps:\n    - effect: breath\n",
			want: "playlist.steps[0]: duration_ms is required for 'breath'",
		},
		{
			name: "HeartbeatRequiresBeats",
			body: "playlist:\n  steps:\n    - effect: heartbeat\n      bpm: 60\n",
			want: "playlist.steps[0]: beats is required for 'heartbeat'",
		},
		{
			name: "HeartbeatRequiresBPM",
			body: "playlist:\n  steps:\n    - effect: heartbeat\n      beats: 2\n",
			want: "playlist.steps[0]: bpm is required for 'heartbeat'",
		},
		{
			name: "UnknownEffect",
			body: "playlist:\n  steps:\n    - effect: strobe\n",
			want: "playlist.steps[0]: effect must be 'breath' or 'heartbeat'",
		},
		{
			name: "MQTTRequiresBroker",
			body: "mqtt:\n  enable: true\n",
			want: "mqtt.broker is required when mqtt.enable is true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempConfig(t, tc.body)
			_, err := Load(path)
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_MQTTDefaults(t *testing.T) {
	path := writeTempConfig(t, "mqtt:\n  enable: true\n  broker: tcp://127.0.0.1:1883\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MQTT.Topic != "ledpulse/effect" {
		t.Fatalf("topic=%q want ledpulse/effect", cfg.MQTT.Topic)
	}
	if cfg.MQTT.ClientID != "ledpulse" {
		t.Fatalf("client_id=%q want ledpulse", cfg.MQTT.ClientID)
	}
}
