// Package player runs the configured effect playlist and serves one-shot
// effect requests submitted at runtime (for example from the MQTT listener).
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledpulse/internal/config"
	"ledpulse/internal/effect"
)

var afterFn = time.After

// Request is a one-shot effect request. Queued requests take priority over
// the configured playlist.
type Request struct {
	Effect     string
	DurationMS uint32
	Beats      uint32
	GroupedAs  uint32
	BPM        uint32
}

// Snapshot is the player's observable status.
type Snapshot struct {
	Running      bool      `json:"running"`
	Step         string    `json:"step,omitempty"`
	StepsPlayed  uint64    `json:"steps_played"`
	LastError    string    `json:"last_error,omitempty"`
	LastUpdateAt time.Time `json:"last_update_utc,omitempty"`
}

// Service drives a Controller through the playlist on its own goroutine.
//
// A running effect is never interrupted: shutdown and context cancellation
// are only observed between steps, mirroring the effect engine's run-to-
// completion model.
type Service struct {
	cfg  config.PlaylistConfig
	ctrl *effect.Controller

	mu   sync.RWMutex
	snap Snapshot

	reqCh chan Request

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg config.PlaylistConfig, ctrl *effect.Controller) *Service {
	if cfg.Rest <= 0 {
		cfg.Rest = 1 * time.Second
	}
	return &Service{
		cfg:    cfg,
		ctrl:   ctrl,
		reqCh:  make(chan Request, 8),
		stopCh: make(chan struct{}),
	}
}

// Submit enqueues a one-shot effect without blocking. It fails when the
// queue is full rather than stalling the caller.
func (s *Service) Submit(req Request) error {
	select {
	case s.reqCh <- req:
		return nil
	default:
		return fmt.Errorf("player: request queue full")
	}
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Start launches the playlist loop. It does not block.
func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("player: service is nil")
	}
	if s.ctrl == nil {
		return fmt.Errorf("player: controller is nil")
	}

	s.setState(func(sn *Snapshot) { sn.Running = true })

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

// Close stops the loop after the current step finishes and waits for it.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
	s.setState(func(sn *Snapshot) { sn.Running = false })
}

func (s *Service) run(ctx context.Context) {
	next := 0
	for {
		// Requests first, so a remote trigger does not wait a full pass.
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case req := <-s.reqCh:
			s.play(req)
			continue
		default:
		}

		if len(s.cfg.Steps) == 0 || (next >= len(s.cfg.Steps) && !s.cfg.Loop) {
			// Playlist exhausted (or empty): idle until a request arrives.
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case req := <-s.reqCh:
				s.play(req)
			}
			continue
		}

		if next >= len(s.cfg.Steps) {
			next = 0
		}
		step := s.cfg.Steps[next]
		next++
		s.play(Request{
			Effect:     step.Effect,
			DurationMS: step.DurationMS,
			Beats:      step.Beats,
			GroupedAs:  step.GroupedAs,
			BPM:        step.BPM,
		})

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-afterFn(s.cfg.Rest):
		}
	}
}

// play blocks until the effect completes. Failures are recorded in the
// snapshot and the loop moves on; a flawed parameter set cannot succeed on
// retry, so there is no light output for that cycle and nothing else to do.
func (s *Service) play(req Request) {
	s.setState(func(sn *Snapshot) { sn.Step = req.Effect })

	var err error
	switch req.Effect {
	case "breath":
		err = s.ctrl.Breath(req.DurationMS)
	case "heartbeat":
		err = s.ctrl.Heartbeat(req.Beats, req.GroupedAs, req.BPM)
	default:
		err = fmt.Errorf("player: unknown effect %q", req.Effect)
	}

	s.setState(func(sn *Snapshot) {
		sn.StepsPlayed++
		if err != nil {
			sn.LastError = err.Error()
		} else {
			sn.LastError = ""
		}
	})
}

func (s *Service) setState(update func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.snap)
	s.snap.LastUpdateAt = time.Now().UTC()
}
