package eventlog

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopic is used when no topic override is configured.
const DefaultTopic = "polaroid320/pictures"

// publishTimeout bounds how long MQTTPublisher waits for the broker to
// acknowledge a publish before giving up — a CLI tool must never hang
// forever on a broker that never answers.
const publishTimeout = 5 * time.Second

// pahoClient is the slice of mqtt.Client that MQTTPublisher actually uses,
// narrowed so tests can substitute a fake without implementing paho's full
// client interface.
type pahoClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes Events as small JSON payloads to an MQTT broker
// at QoS 1, via the paho client.
type MQTTPublisher struct {
	client pahoClient
	topic  string
}

// NewMQTTPublisher connects to broker (e.g. "tcp://localhost:1883") and
// returns a Publisher backed by it. clientID should be unique per running
// instance of cmd/polaroid320; topic overrides DefaultTopic when non-empty.
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(publishTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("eventlog: connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("eventlog: connect to %s: %w", broker, err)
	}

	return &MQTTPublisher{client: client, topic: topic}, nil
}

// Publish sends event as a JSON payload. It waits at most publishTimeout
// for the broker to acknowledge the publish.
func (m *MQTTPublisher) Publish(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventlog: marshal event: %w", err)
	}

	token := m.client.Publish(m.topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("eventlog: publish to %s: timed out", m.topic)
	}
	return token.Error()
}

// Close disconnects from the broker, waiting up to 250ms for in-flight
// publishes to drain.
func (m *MQTTPublisher) Close() {
	m.client.Disconnect(250)
}
