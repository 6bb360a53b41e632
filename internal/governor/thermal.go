package governor

import "codeberg.org/mutker/picoctl/internal/logger"

// thermalMonitor tracks die temperature and derives the throttle state.
// Two ascending trip thresholds share a single release threshold, so the
// flag cannot oscillate when the temperature hovers at a boundary.
type thermalMonitor struct {
	sensor TemperatureSensor

	critical float64
	warn     float64
	release  float64

	temperature float64
	throttled   bool
}

func newThermalMonitor(sensor TemperatureSensor, p Params) *thermalMonitor {
	return &thermalMonitor{
		sensor:   sensor,
		critical: p.ThermalCritical,
		warn:     p.ThermalWarn,
		release:  p.ThermalRelease,
	}
}

// update reads the sensor, applies the hysteresis band, and reports the
// ceiling the current profile must be forced down to, if any. The clamp
// re-applies on every cycle while throttled, so a profile raised after
// the trip (a manual pin, for instance) is still brought down. A sensor
// failure keeps the previous reading and throttle state.
func (t *thermalMonitor) update(current Profile) (Profile, bool) {
	temp, err := t.sensor.ReadTemperature()
	if err != nil {
		logger.Debug().Err(err).Msg("temperature read failed, keeping previous reading")
		return 0, false
	}
	t.temperature = temp

	switch {
	case t.temperature >= t.warn:
		t.throttled = true
	case t.temperature < t.release:
		t.throttled = false
	}

	if !t.throttled {
		return 0, false
	}

	ceiling := ProfileBalanced
	if t.temperature >= t.critical {
		ceiling = ProfilePowersave
	}
	if current > ceiling {
		return ceiling, true
	}

	return 0, false
}
