// Package mqtt accepts remote effect-trigger commands over MQTT and forwards
// them to the player. The broker connection is abstracted so parsing and
// dispatch are testable without a broker.
package mqtt

import (
	"encoding/json"
	"fmt"

	"ledpulse/internal/player"
)

// DefaultTopic is the command topic when the config leaves it empty.
const DefaultTopic = "ledpulse/effect"

// Submitter accepts one-shot effect requests. *player.Service implements it.
type Submitter interface {
	Submit(player.Request) error
}

// Command is the wire format of a trigger message.
//
// Fields irrelevant to the chosen effect are ignored. Omitted fields fall
// back to the demo defaults: a 5454 ms breath, or a 2-beat single-grouped
// heartbeat at 60 bpm.
type Command struct {
	Effect     string `json:"effect"`
	DurationMS uint32 `json:"duration_ms,omitempty"`
	Beats      uint32 `json:"beats,omitempty"`
	GroupedAs  uint32 `json:"grouped_as,omitempty"`
	BPM        uint32 `json:"bpm,omitempty"`
}

// ParseCommand decodes a trigger payload into a player request.
func ParseCommand(payload []byte) (player.Request, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return player.Request{}, fmt.Errorf("mqtt: decode command: %w", err)
	}

	switch cmd.Effect {
	case "breath":
		if cmd.DurationMS == 0 {
			cmd.DurationMS = 5454
		}
	case "heartbeat":
		if cmd.Beats == 0 {
			cmd.Beats = 2
		}
		if cmd.GroupedAs == 0 {
			cmd.GroupedAs = 1
		}
		if cmd.BPM == 0 {
			cmd.BPM = 60
		}
	default:
		return player.Request{}, fmt.Errorf("mqtt: unknown effect %q", cmd.Effect)
	}

	return player.Request{
		Effect:     cmd.Effect,
		DurationMS: cmd.DurationMS,
		Beats:      cmd.Beats,
		GroupedAs:  cmd.GroupedAs,
		BPM:        cmd.BPM,
	}, nil
}
