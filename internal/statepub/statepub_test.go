package statepub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/picoctl/internal/governor"
)

func TestNewServiceWithoutBrokerIsNoop(t *testing.T) {
	pub, err := NewService(Config{})
	require.NoError(t, err)

	_, ok := pub.(*noopPublisher)
	assert.True(t, ok)

	// must be safe to use
	pub.Publish(governor.Status{})
	pub.Close()
}

func TestNewServiceRequiresTopic(t *testing.T) {
	_, err := NewService(Config{BrokerURL: "tcp://localhost:1883"})
	assert.Error(t, err)
}

func TestStatusPayloadShape(t *testing.T) {
	payload := statusPayload{
		Chip:         "RP2350",
		Profile:      "TURBO",
		FrequencyMHz: 300,
		Load:         88.5,
		Temperature:  59.1,
		Turbo:        true,
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "TURBO", decoded["profile"])
	assert.Equal(t, float64(300), decoded["frequency_mhz"])
	assert.Equal(t, true, decoded["turbo"])
	assert.Equal(t, false, decoded["throttled"])
}
