package mqtt

import (
	"fmt"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"ledpulse/internal/config"
)

// Listener subscribes to the command topic and forwards parsed requests to
// the player.
type Listener struct {
	client paho.Client
	topic  string
	sub    Submitter

	dropped atomic.Uint64
}

// NewListener connects to the broker and subscribes to the command topic.
// The subscription is re-established automatically after reconnects.
func NewListener(cfg config.MQTTConfig, sub Submitter) (*Listener, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	l := &Listener{topic: topic, sub: sub}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			// QoS 1: a trigger lost on a flaky link would just be a dark LED.
			c.Subscribe(l.topic, 1, l.onMessage)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt: connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to broker: %w", err)
	}

	l.client = client
	return l, nil
}

// Dropped reports how many messages were discarded because they could not be
// parsed or the player queue was full.
func (l *Listener) Dropped() uint64 {
	return l.dropped.Load()
}

// Close unsubscribes and disconnects from the broker.
func (l *Listener) Close() error {
	if l.client == nil {
		return nil
	}
	token := l.client.Unsubscribe(l.topic)
	token.WaitTimeout(2 * time.Second)
	l.client.Disconnect(1000) // ms
	return nil
}

func (l *Listener) onMessage(_ paho.Client, msg paho.Message) {
	l.handle(msg.Payload())
}

func (l *Listener) handle(payload []byte) {
	req, err := ParseCommand(payload)
	if err != nil {
		l.dropped.Add(1)
		return
	}
	if err := l.sub.Submit(req); err != nil {
		l.dropped.Add(1)
	}
}
