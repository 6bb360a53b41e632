// Package device provides a simulated RP2040/RP2350 clock and core
// voltage regulator for running the governor on a host machine. It
// implements governor.Actuator and governor.TemperatureSensor.
package device

import (
	"time"

	"codeberg.org/mutker/picoctl/internal/errors"
	"codeberg.org/mutker/picoctl/internal/governor"
	"codeberg.org/mutker/picoctl/internal/logger"
)

const (
	minFrequencyKHz = 50000

	// Regulator range and step, matching the RP2040/RP2350 vreg.
	minVoltageMV  = 850
	maxVoltageMV  = 1300
	voltageStepMV = 50

	// First-order lag factor of the simulated die temperature.
	heatLag = 0.1
	// Degrees of heating at the chip's maximum clock.
	heatSpan = 45.0
)

type Simulated struct {
	chip      governor.Chip
	maxKHz    int
	limitKHz  int
	freqKHz   int
	voltageMV int

	ambient float64
	die     float64

	wfiCount int
}

// Option configures the simulated device.
type Option func(*Simulated)

// WithAmbient sets the ambient temperature the die relaxes towards.
func WithAmbient(celsius float64) Option {
	return func(d *Simulated) {
		d.ambient = celsius
		d.die = celsius
	}
}

// WithFrequencyLimit rejects requests above the given clock, simulating
// a part that cannot reach its table maximum.
func WithFrequencyLimit(khz int) Option {
	return func(d *Simulated) {
		d.limitKHz = khz
	}
}

func New(chip governor.Chip, opts ...Option) (*Simulated, error) {
	if !chip.Valid() {
		return nil, errors.New().WithData(ErrUnknownChip, int(chip))
	}

	maxKHz := 250000
	if chip == governor.ChipRP2350 {
		maxKHz = 300000
	}

	d := &Simulated{
		chip:      chip,
		maxKHz:    maxKHz,
		limitKHz:  maxKHz,
		freqKHz:   governor.BaselineFrequencyKHz,
		voltageMV: 1050,
		ambient:   25,
		die:       25,
	}
	for _, opt := range opts {
		opt(d)
	}

	logger.Debug().
		Str("chip", chip.String()).
		Int("max_khz", d.limitKHz).
		Msg("Simulated device ready")

	return d, nil
}

// SetVoltage quantizes to the regulator's 50 mV steps, like the real
// vreg does.
func (d *Simulated) SetVoltage(millivolts int) error {
	if millivolts < minVoltageMV || millivolts > maxVoltageMV {
		return errors.New().WithData(ErrUnsupportedVoltage, millivolts)
	}

	d.voltageMV = quantizeVoltage(millivolts)

	return nil
}

// SetFrequency applies the requested clock, or falls back to the safe
// baseline when the request is out of range, reporting what the chip is
// actually running at.
func (d *Simulated) SetFrequency(khz int) (int, error) {
	if khz < minFrequencyKHz || khz > d.limitKHz {
		d.freqKHz = governor.BaselineFrequencyKHz
		return d.freqKHz, errors.New().WithData(ErrUnsupportedFrequency, khz)
	}

	d.freqKHz = khz

	return d.freqKHz, nil
}

// WaitForInterrupt models the halt as a short host sleep.
func (d *Simulated) WaitForInterrupt() {
	d.wfiCount++
	time.Sleep(time.Millisecond)
}

// ReadTemperature advances the thermal model one step and returns the
// die temperature. Heating scales with the running clock and follows a
// first-order lag towards its target.
func (d *Simulated) ReadTemperature() (float64, error) {
	target := d.ambient + heatSpan*float64(d.freqKHz)/float64(d.maxKHz)
	d.die += (target - d.die) * heatLag

	return d.die, nil
}

func (d *Simulated) FrequencyKHz() int {
	return d.freqKHz
}

func (d *Simulated) VoltageMV() int {
	return d.voltageMV
}

func (d *Simulated) WFICount() int {
	return d.wfiCount
}

// quantizeVoltage rounds up to the next regulator step.
func quantizeVoltage(mv int) int {
	for v := minVoltageMV; v <= maxVoltageMV; v += voltageStepMV {
		if mv <= v {
			return v
		}
	}

	return maxVoltageMV
}
