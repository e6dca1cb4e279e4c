package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ledpulse/internal/config"
	"ledpulse/internal/effect"
	"ledpulse/internal/mqtt"
	"ledpulse/internal/player"
	"ledpulse/internal/pwm"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./ledpulse.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	line, err := openChannel(cfg.PWM)
	if err != nil {
		log.Fatalf("pwm open failed: %v", err)
	}

	dutyMin := cfg.LED.DutyMin
	dutyMax := cfg.LED.DutyMax
	if dutyMax == 0 {
		dutyMax = line.MaxDuty()
	}

	ctrl, err := effect.New(line, dutyMin, dutyMax, newDelay(cfg.Clock))
	if err != nil {
		_ = line.Close()
		log.Fatalf("controller init failed: %v", err)
	}

	svc := player.New(cfg.Playlist, ctrl)
	if err := svc.Start(ctx); err != nil {
		_ = line.Close()
		log.Fatalf("player start failed: %v", err)
	}

	var listener *mqtt.Listener
	if cfg.MQTT.Enable {
		listener, err = mqtt.NewListener(cfg.MQTT, svc)
		if err != nil {
			svc.Close()
			_ = line.Close()
			log.Fatalf("mqtt listener failed: %v", err)
		}
		log.Printf("mqtt listening broker=%s topic=%s", cfg.MQTT.Broker, cfg.MQTT.Topic)
	}

	log.Printf("ledpulse starting")
	log.Printf("pwm backend=%s duty range=[%d..%d]", cfg.PWM.Backend, dutyMin, dutyMax)

	<-ctx.Done()
	log.Printf("ledpulse stopping")

	svc.Close()
	if listener != nil {
		_ = listener.Close()
	}

	// Teardown hands the channel back still enabled; shutting it off is our
	// job now.
	ch := ctrl.Teardown()
	ch.SetDuty(0)
	ch.Disable()
	if err := line.Close(); err != nil {
		log.Printf("pwm close: %v", err)
	}
	if err := line.Err(); err != nil {
		log.Printf("pwm reported write errors: %v", err)
	}
}

func openChannel(cfg config.PWMConfig) (pwm.Line, error) {
	switch cfg.Backend {
	case "sysfs":
		return pwm.OpenSysfs(pwm.SysfsConfig{
			Chip:    cfg.Chip,
			Channel: cfg.Channel,
			Period:  cfg.Period,
		})
	case "gpio":
		return pwm.OpenGPIO(cfg.GPIOPin)
	default:
		return nil, fmt.Errorf("unknown pwm backend %q", cfg.Backend)
	}
}

func newDelay(cfg config.ClockConfig) effect.Delay {
	if cfg.Delay == "spin" {
		return effect.Spin{CyclesPerMS: cfg.CyclesPerMS}
	}
	return effect.Ticker{}
}
