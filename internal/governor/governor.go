package governor

import (
	"sync/atomic"
	"time"

	"codeberg.org/mutker/picoctl/internal/errors"
	"codeberg.org/mutker/picoctl/internal/logger"
)

// Default override durations for the turbo/powersave convenience calls.
const (
	DefaultTurboSeconds     = 30
	DefaultPowersaveSeconds = 60

	// MaxOverrideSeconds caps a requested override duration.
	MaxOverrideSeconds = 3600
)

// Governor is the power/performance state machine for one chip. It is
// single-threaded by contract: every method except InputBoost must be
// called from the host loop that drives Tick. InputBoost may fire from
// any context; the pending request is a single atomic word consumed by
// the next Tick.
type Governor struct {
	chip     Chip
	table    pointTable
	params   Params
	clock    Clock
	actuator Actuator

	load    *loadSampler
	thermal *thermalMonitor

	initialized bool
	profile     Profile
	freqKHz     int

	lastScaleMS int64

	turboOn      bool
	turboStartMS int64

	boostOn      bool
	boostStartMS int64

	overrideOn      bool
	overrideProfile Profile
	overrideEndMS   int64

	boostRequestUS atomic.Int64
}

// Option configures a Governor at construction.
type Option func(*Governor)

// WithClock replaces the monotonic wall clock, for simulation and tests.
func WithClock(c Clock) Option {
	return func(g *Governor) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithParams overrides the default tunables. Zero fields keep their
// defaults.
func WithParams(p Params) Option {
	return func(g *Governor) {
		g.params = p
	}
}

// New constructs a governor for the given chip variant, actuates the
// BALANCED baseline, and resets all counters.
func New(chip Chip, actuator Actuator, sensor TemperatureSensor, opts ...Option) (*Governor, error) {
	errFactory := errors.New()

	if !chip.Valid() {
		return nil, errFactory.WithData(ErrUnknownChip, int(chip))
	}
	if actuator == nil {
		return nil, errFactory.New(ErrNilActuator)
	}
	if sensor == nil {
		return nil, errFactory.New(ErrNilSensor)
	}

	g := &Governor{
		chip:     chip,
		table:    tableFor(chip),
		params:   DefaultParams(),
		clock:    NewWallClock(),
		actuator: actuator,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.params = g.params.sanitize()

	nowUS := g.clock.Micros()
	g.load = newLoadSampler(g.params, nowUS)
	g.thermal = newThermalMonitor(sensor, g.params)
	g.lastScaleMS = g.clock.Millis()
	g.initialized = true

	g.apply(ProfileBalanced)

	logger.Info().
		Str("chip", chip.String()).
		Str("profile", g.profile.String()).
		Int("frequency_khz", g.freqKHz).
		Msg("Governor initialized")

	return g, nil
}

// Tick is the single entry point; the host loop must call it once per
// iteration. It samples the interval since the previous call and, every
// scale interval, runs the thermal check, the timing supervisor and
// (unless an override is active) the profile evaluation.
func (g *Governor) Tick() {
	if g == nil || !g.initialized {
		return
	}

	g.load.tick(g.clock.Micros())
	g.consumeBoost()

	nowMS := g.clock.Millis()
	if nowMS-g.lastScaleMS >= g.params.ScaleInterval.Milliseconds() {
		g.checkThermal()
		g.superviseTimers(nowMS)
		if !g.overrideOn {
			g.evaluateScale()
		}
		g.lastScaleMS = nowMS
	}

	if g.chip.hasWFI() && g.profile == ProfileUltraLow &&
		g.load.smoothed < g.params.WFIThreshold && !g.thermal.throttled {
		g.actuator.WaitForInterrupt()
	}

	g.load.settle(g.clock.Micros())
}

// Idle blocks for the given number of milliseconds and records the time
// as idle, excluding it from the next tick's work accounting. The host
// loop must use this instead of an untracked wait.
func (g *Governor) Idle(ms int64) {
	g.IdleMicros(ms * 1000)
}

// IdleMicros is Idle with microsecond resolution.
func (g *Governor) IdleMicros(us int64) {
	if g == nil || !g.initialized || us <= 0 {
		return
	}

	g.load.addIdleMicros(us)
	g.clock.Sleep(time.Duration(us) * time.Microsecond)
}

// InputBoost requests the temporary performance floor of an external
// trigger. Safe to call from an interrupt or a goroutine other than the
// tick loop.
func (g *Governor) InputBoost() {
	if g == nil || !g.initialized {
		return
	}

	us := g.clock.Micros()
	if us == 0 {
		us = 1
	}
	g.boostRequestUS.Store(us)
}

// consumeBoost applies a pending boost request inside the tick context.
func (g *Governor) consumeBoost() {
	if g.boostRequestUS.Swap(0) == 0 {
		return
	}
	if g.thermal.throttled {
		return
	}

	g.boostOn = true
	g.boostStartMS = g.clock.Millis()
	if g.profile < ProfilePerformance {
		g.apply(ProfilePerformance)
	}
}

// checkThermal runs the thermal monitor and applies a forced downgrade
// when the current profile sits above the thermal ceiling. This runs
// even while a manual override is active: thermal safety wins over a
// pin.
func (g *Governor) checkThermal() {
	if force, ok := g.thermal.update(g.profile); ok {
		logger.Warn().
			Float64("temperature", g.thermal.temperature).
			Str("forced_profile", force.String()).
			Msg("thermal throttling engaged")
		g.apply(force)
	}
}

// SetProfile pins a profile for durationSec seconds (0 = until SetAuto),
// suppressing automatic scaling. An invalid profile is a no-op.
func (g *Governor) SetProfile(p Profile, durationSec int) {
	if g == nil || !g.initialized || !p.Valid() {
		return
	}
	if durationSec > MaxOverrideSeconds {
		durationSec = MaxOverrideSeconds
	}

	g.overrideOn = true
	g.overrideProfile = p
	if durationSec > 0 {
		g.overrideEndMS = g.clock.Millis() + int64(durationSec)*1000
	} else {
		g.overrideEndMS = 0
	}

	g.apply(p)
}

// SetTurbo pins TURBO for the given duration.
func (g *Governor) SetTurbo(durationSec int) {
	g.SetProfile(ProfileTurbo, durationSec)
}

// SetPowersave pins POWERSAVE for the given duration.
func (g *Governor) SetPowersave(durationSec int) {
	g.SetProfile(ProfilePowersave, durationSec)
}

// SetAuto clears any manual override and returns control to automatic
// scaling on the next scale cycle.
func (g *Governor) SetAuto() {
	if g == nil || !g.initialized {
		return
	}

	g.overrideOn = false
	g.overrideEndMS = 0
}

// apply actuates a profile's operating point and updates turbo residency
// tracking.
func (g *Governor) apply(p Profile) {
	if !p.Valid() {
		return
	}

	g.actuate(g.table[p])
	g.profile = p

	if p == ProfileTurbo {
		if !g.turboOn {
			g.turboStartMS = g.clock.Millis()
			g.turboOn = true
		}
	} else {
		g.turboOn = false
	}
}

// actuate applies an operating point with the stability ordering the
// hardware requires: voltage rises before the clock does, and drops only
// after the clock has come down. A rejected frequency leaves the chip on
// the adapter's baseline, and the governor records that outcome.
func (g *Governor) actuate(op OperatingPoint) {
	raising := op.FrequencyKHz > g.freqKHz

	if raising {
		if err := g.actuator.SetVoltage(op.VoltageMV); err != nil {
			logger.Warn().Err(err).
				Int("millivolts", op.VoltageMV).
				Msg("voltage raise rejected")
		}
	}

	actual, err := g.actuator.SetFrequency(op.FrequencyKHz)
	if err != nil {
		g.freqKHz = actual
		logger.Warn().Err(err).
			Int("requested_khz", op.FrequencyKHz).
			Int("actual_khz", actual).
			Msg("frequency rejected, running at fallback")
		return
	}

	if !raising {
		if err := g.actuator.SetVoltage(op.VoltageMV); err != nil {
			logger.Warn().Err(err).
				Int("millivolts", op.VoltageMV).
				Msg("voltage drop rejected")
		}
	}

	g.freqKHz = actual
}

// Status accessors. All return zero values on an uninitialized governor.

func (g *Governor) FrequencyMHz() int {
	if g == nil || !g.initialized {
		return 0
	}

	return g.freqKHz / 1000
}

// Load returns the smoothed load percentage.
func (g *Governor) Load() float64 {
	if g == nil || !g.initialized {
		return 0
	}

	return g.load.smoothed
}

// InstantLoad returns the load of the last completed sample period.
func (g *Governor) InstantLoad() float64 {
	if g == nil || !g.initialized {
		return 0
	}

	return g.load.instant
}

func (g *Governor) Temperature() float64 {
	if g == nil || !g.initialized {
		return 0
	}

	return g.thermal.temperature
}

func (g *Governor) CurrentProfile() Profile {
	if g == nil || !g.initialized {
		return ProfileUltraLow
	}

	return g.profile
}

func (g *Governor) ProfileName() string {
	return g.CurrentProfile().String()
}

func (g *Governor) IsTurbo() bool {
	return g != nil && g.initialized && g.turboOn
}

func (g *Governor) IsThrottled() bool {
	return g != nil && g.initialized && g.thermal.throttled
}

// Status is a point-in-time snapshot for the console, telemetry and
// state publishing. Read it from the tick context only.
type Status struct {
	Chip              Chip
	Profile           Profile
	FrequencyKHz      int
	Load              float64
	InstantLoad       float64
	Temperature       float64
	Throttled         bool
	TurboActive       bool
	BoostActive       bool
	OverrideActive    bool
	OverrideRemaining time.Duration // zero when inactive or indefinite
}

func (g *Governor) Status() Status {
	if g == nil || !g.initialized {
		return Status{}
	}

	s := Status{
		Chip:           g.chip,
		Profile:        g.profile,
		FrequencyKHz:   g.freqKHz,
		Load:           g.load.smoothed,
		InstantLoad:    g.load.instant,
		Temperature:    g.thermal.temperature,
		Throttled:      g.thermal.throttled,
		TurboActive:    g.turboOn,
		BoostActive:    g.boostOn,
		OverrideActive: g.overrideOn,
	}
	if g.overrideOn && g.overrideEndMS > 0 {
		if remaining := g.overrideEndMS - g.clock.Millis(); remaining > 0 {
			s.OverrideRemaining = time.Duration(remaining) * time.Millisecond
		}
	}

	return s
}
