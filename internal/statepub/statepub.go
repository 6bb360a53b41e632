// Package statepub publishes governor status snapshots to an MQTT
// broker as JSON, for dashboards and home automation consumers.
package statepub

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"codeberg.org/mutker/picoctl/internal/errors"
	"codeberg.org/mutker/picoctl/internal/governor"
	"codeberg.org/mutker/picoctl/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	ErrInvalidBroker = errors.ErrorCode("statepub_invalid_broker")
	ErrConnectFailed = errors.ErrorCode("statepub_connect_failed")

	connectTimeout = 5 * time.Second
)

// Publisher sends governor snapshots somewhere off-device.
type Publisher interface {
	Publish(snapshot governor.Status)
	Close()
}

type Config struct {
	BrokerURL string
	Topic     string
}

type statusPayload struct {
	Chip         string  `json:"chip"`
	Profile      string  `json:"profile"`
	FrequencyMHz int     `json:"frequency_mhz"`
	Load         float64 `json:"load"`
	InstantLoad  float64 `json:"instant_load"`
	Temperature  float64 `json:"temperature"`
	Throttled    bool    `json:"throttled"`
	Turbo        bool    `json:"turbo"`
	Boost        bool    `json:"boost"`
	Override     bool    `json:"override"`
}

type mqttPublisher struct {
	client mqtt.Client
	topic  string
}

// No-op implementation used when no broker is configured
type noopPublisher struct{}

func NewService(cfg Config) (Publisher, error) {
	if cfg.BrokerURL == "" {
		logger.Debug().Msg("No MQTT broker configured, state publishing disabled")
		return &noopPublisher{}, nil
	}
	if cfg.Topic == "" {
		return nil, errors.New().New(ErrInvalidBroker)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(fmt.Sprintf("picoctl-%d", os.Getpid())).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		return nil, errors.New().Wrap(ErrConnectFailed, token.Error())
	}

	logger.Info().
		Str("broker", cfg.BrokerURL).
		Str("topic", cfg.Topic).
		Msg("State publisher connected")

	return &mqttPublisher{
		client: client,
		topic:  cfg.Topic,
	}, nil
}

// Publish sends one snapshot at QoS 0. While the broker is unreachable
// snapshots are dropped; the next one carries the fresh state anyway.
func (p *mqttPublisher) Publish(snapshot governor.Status) {
	if !p.client.IsConnected() {
		logger.Debug().Msg("MQTT disconnected, dropping snapshot")
		return
	}

	payload, err := json.Marshal(statusPayload{
		Chip:         snapshot.Chip.String(),
		Profile:      snapshot.Profile.String(),
		FrequencyMHz: snapshot.FrequencyKHz / 1000,
		Load:         snapshot.Load,
		InstantLoad:  snapshot.InstantLoad,
		Temperature:  snapshot.Temperature,
		Throttled:    snapshot.Throttled,
		Turbo:        snapshot.TurboActive,
		Boost:        snapshot.BoostActive,
		Override:     snapshot.OverrideActive,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal snapshot")
		return
	}

	p.client.Publish(p.topic, 0, false, payload)
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(250)
}

func (*noopPublisher) Publish(_ governor.Status) {}

func (*noopPublisher) Close() {}
