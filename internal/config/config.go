package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	PWM      PWMConfig      `yaml:"pwm"`
	LED      LEDConfig      `yaml:"led"`
	Clock    ClockConfig    `yaml:"clock"`
	Playlist PlaylistConfig `yaml:"playlist"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

type PWMConfig struct {
	// Backend selects the hardware driver: "sysfs" (hardware PWM channel)
	// or "gpio" (plain on/off line via the GPIO character device).
	Backend string `yaml:"backend"`
	// Chip is the pwmchip index for the sysfs backend; -1 probes.
	Chip int `yaml:"chip"`
	// Channel is the channel index within the chip.
	Channel int `yaml:"channel"`
	// Period is the PWM period for the sysfs backend.
	Period time.Duration `yaml:"period"`
	// GPIOPin is the BCM pin number for the gpio backend.
	GPIOPin int `yaml:"gpio_pin"`
}

type LEDConfig struct {
	// DutyMin is the lowest duty that produces visible light.
	DutyMin uint32 `yaml:"duty_min"`
	// DutyMax caps the brightness range; 0 means the channel's max duty.
	DutyMax uint32 `yaml:"duty_max"`
}

type ClockConfig struct {
	// Delay selects the wait strategy: "sleep" (runtime clock) or "spin"
	// (calibrated busy-wait).
	Delay string `yaml:"delay"`
	// CyclesPerMS calibrates the spin delay to the core clock.
	CyclesPerMS uint32 `yaml:"cycles_per_ms"`
}

type PlaylistConfig struct {
	Loop  bool          `yaml:"loop"`
	Rest  time.Duration `yaml:"rest"`
	Steps []StepConfig  `yaml:"steps"`
}

type StepConfig struct {
	// Effect is "breath" or "heartbeat".
	Effect     string `yaml:"effect"`
	DurationMS uint32 `yaml:"duration_ms"`
	Beats      uint32 `yaml:"beats"`
	GroupedAs  uint32 `yaml:"grouped_as"`
	BPM        uint32 `yaml:"bpm"`
}

type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.PWM.Backend == "" {
		cfg.PWM.Backend = "sysfs"
	}
	switch cfg.PWM.Backend {
	case "sysfs":
		if cfg.PWM.Period == 0 {
			cfg.PWM.Period = time.Millisecond
		}
		if cfg.PWM.Period < 0 {
			return Config{}, fmt.Errorf("pwm.period must be > 0")
		}
		if cfg.PWM.Period.Nanoseconds() > int64(^uint32(0)) {
			return Config{}, fmt.Errorf("pwm.period must fit a 32-bit nanosecond duty range")
		}
	case "gpio":
		if cfg.PWM.GPIOPin <= 0 {
			return Config{}, fmt.Errorf("pwm.gpio_pin is required when pwm.backend is 'gpio'")
		}
	default:
		return Config{}, fmt.Errorf("pwm.backend must be 'sysfs' or 'gpio'")
	}

	if cfg.LED.DutyMax != 0 && cfg.LED.DutyMax <= cfg.LED.DutyMin {
		return Config{}, fmt.Errorf("led.duty_max must be greater than led.duty_min")
	}

	if cfg.Clock.Delay == "" {
		cfg.Clock.Delay = "sleep"
	}
	switch cfg.Clock.Delay {
	case "sleep":
	case "spin":
		if cfg.Clock.CyclesPerMS == 0 {
			return Config{}, fmt.Errorf("clock.cycles_per_ms is required when clock.delay is 'spin'")
		}
	default:
		return Config{}, fmt.Errorf("clock.delay must be 'sleep' or 'spin'")
	}

	if cfg.Playlist.Rest <= 0 {
		cfg.Playlist.Rest = 1 * time.Second
	}
	for i := range cfg.Playlist.Steps {
		step := &cfg.Playlist.Steps[i]
		switch step.Effect {
		case "breath":
			if step.DurationMS == 0 {
				return Config{}, fmt.Errorf("playlist.steps[%d]: duration_ms is required for 'breath'", i)
			}
		case "heartbeat":
			if step.Beats == 0 {
				return Config{}, fmt.Errorf("playlist.steps[%d]: beats is required for 'heartbeat'", i)
			}
			if step.BPM == 0 {
				return Config{}, fmt.Errorf("playlist.steps[%d]: bpm is required for 'heartbeat'", i)
			}
			if step.GroupedAs == 0 {
				step.GroupedAs = 1
			}
		default:
			return Config{}, fmt.Errorf("playlist.steps[%d]: effect must be 'breath' or 'heartbeat'", i)
		}
	}

	if cfg.MQTT.Enable {
		if cfg.MQTT.Broker == "" {
			return Config{}, fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
		}
		if cfg.MQTT.Topic == "" {
			cfg.MQTT.Topic = "ledpulse/effect"
		}
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "ledpulse"
		}
	}

	return cfg, nil
}
