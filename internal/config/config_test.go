package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/picoctl/internal/config"
	"codeberg.org/mutker/picoctl/internal/governor"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "picoctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PICOCTL_CONFIG", path)
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "rp2350", cfg.Chip)
	assert.Equal(t, 5, cfg.TickInterval)
	assert.Equal(t, 200, cfg.SamplePeriod)
	assert.Equal(t, 100, cfg.ScaleInterval)
	assert.InDelta(t, 0.3, cfg.Smoothing, 0.001)
	assert.Equal(t, 80.0, cfg.ThermalCritical)
	assert.Equal(t, 70.0, cfg.ThermalWarn)
	assert.Equal(t, 60.0, cfg.ThermalRelease)
	assert.Equal(t, 10000, cfg.TurboMax)
	assert.Equal(t, 300, cfg.BoostDuration)
	assert.False(t, cfg.Console)
	assert.False(t, cfg.Telemetry)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "picoctl/status", cfg.MQTTTopic)
}

func TestLoadConfigFile(t *testing.T) {
	writeConfig(t, `
chip = "rp2040"
tick_interval = 10
smoothing = 0.5
thermal_critical = 85.0
console = true
log_level = "debug"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "rp2040", cfg.Chip)
	assert.Equal(t, 10, cfg.TickInterval)
	assert.InDelta(t, 0.5, cfg.Smoothing, 0.001)
	assert.Equal(t, 85.0, cfg.ThermalCritical)
	assert.True(t, cfg.Console)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	writeConfig(t, `log_level = "error"`)
	t.Setenv("PICOCTL_LOG_LEVEL", "warning")
	t.Setenv("PICOCTL_MQTT_BROKER", "tcp://broker.local:1883")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "warning", cfg.LogLevel)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTTBroker)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown chip", `chip = "esp32"`},
		{"bad log level", `log_level = "trace"`},
		{"zero tick interval", `tick_interval = 0`},
		{"thermal ordering", `thermal_release = 75.0`},
		{"telemetry without database", "telemetry = true\ndatabase = \"\""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writeConfig(t, tc.content)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestChipVariant(t *testing.T) {
	cfg := &config.Config{Chip: "RP2040"}
	chip, err := cfg.ChipVariant()
	require.NoError(t, err)
	assert.Equal(t, governor.ChipRP2040, chip)

	cfg.Chip = "rp2350"
	chip, err = cfg.ChipVariant()
	require.NoError(t, err)
	assert.Equal(t, governor.ChipRP2350, chip)

	cfg.Chip = "attiny85"
	_, err = cfg.ChipVariant()
	assert.Error(t, err)
}

func TestGovernorParams(t *testing.T) {
	cfg := &config.Config{
		SamplePeriod:    250,
		ScaleInterval:   50,
		Smoothing:       0.4,
		ThermalWarn:     65,
		ThermalCritical: 75,
		ThermalRelease:  55,
		TurboMax:        5000,
		BoostDuration:   500,
	}

	p := cfg.GovernorParams()
	assert.Equal(t, 250*time.Millisecond, p.SamplePeriod)
	assert.Equal(t, 50*time.Millisecond, p.ScaleInterval)
	assert.InDelta(t, 0.4, p.Smoothing, 0.001)
	assert.Equal(t, 75.0, p.ThermalCritical)
	assert.Equal(t, 5*time.Second, p.TurboMax)
	assert.Equal(t, 500*time.Millisecond, p.BoostDuration)
}
