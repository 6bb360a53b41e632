package governor

import "time"

// Params holds all governor tunables. Zero values are replaced with the
// defaults below, so callers can set only what they care about.
type Params struct {
	// SamplePeriod is the wall-clock window over which instantaneous
	// load is recomputed.
	SamplePeriod time.Duration
	// ScaleInterval is the cadence of thermal checks, timer supervision
	// and profile evaluation.
	ScaleInterval time.Duration
	// MinWork is the per-period work floor below which the load is
	// reported as zero; it separates genuine idling from loop overhead.
	MinWork time.Duration
	// Smoothing is the exponential moving average factor applied to the
	// instantaneous load each period, in (0, 1].
	Smoothing float64

	// Escalation thresholds (smoothed load percentage).
	TurboUp    float64
	PerfUp     float64
	BalancedUp float64

	// De-escalation thresholds. Kept below the corresponding escalation
	// thresholds so each profile has a hysteresis band.
	TurboDown    float64
	PerfDown     float64
	BalancedDown float64
	SaveDown     float64

	// WFIThreshold is the smoothed load below which an ultra-low RP2350
	// halts until the next interrupt.
	WFIThreshold float64

	// TurboMax caps automatic turbo residency.
	TurboMax time.Duration
	// BoostDuration is how long an input boost holds the performance floor.
	BoostDuration time.Duration

	// Thermal thresholds in degrees Celsius. Release sits below Warn so
	// the throttled flag has its own hysteresis band.
	ThermalCritical float64
	ThermalWarn     float64
	ThermalRelease  float64
}

func DefaultParams() Params {
	return Params{
		SamplePeriod:    200 * time.Millisecond,
		ScaleInterval:   100 * time.Millisecond,
		MinWork:         time.Millisecond,
		Smoothing:       0.3,
		TurboUp:         70,
		PerfUp:          45,
		BalancedUp:      20,
		TurboDown:       55,
		PerfDown:        30,
		BalancedDown:    12,
		SaveDown:        5,
		WFIThreshold:    2,
		TurboMax:        10 * time.Second,
		BoostDuration:   300 * time.Millisecond,
		ThermalCritical: 80,
		ThermalWarn:     70,
		ThermalRelease:  60,
	}
}

// sanitize fills zero fields with defaults and clamps values that would
// break the control loop.
func (p Params) sanitize() Params {
	def := DefaultParams()

	if p.SamplePeriod <= 0 {
		p.SamplePeriod = def.SamplePeriod
	}
	if p.ScaleInterval <= 0 {
		p.ScaleInterval = def.ScaleInterval
	}
	if p.MinWork <= 0 {
		p.MinWork = def.MinWork
	}
	if p.Smoothing <= 0 || p.Smoothing > 1 {
		p.Smoothing = def.Smoothing
	}
	if p.TurboUp <= 0 {
		p.TurboUp = def.TurboUp
	}
	if p.PerfUp <= 0 {
		p.PerfUp = def.PerfUp
	}
	if p.BalancedUp <= 0 {
		p.BalancedUp = def.BalancedUp
	}
	if p.TurboDown <= 0 {
		p.TurboDown = def.TurboDown
	}
	if p.PerfDown <= 0 {
		p.PerfDown = def.PerfDown
	}
	if p.BalancedDown <= 0 {
		p.BalancedDown = def.BalancedDown
	}
	if p.SaveDown <= 0 {
		p.SaveDown = def.SaveDown
	}
	if p.WFIThreshold <= 0 {
		p.WFIThreshold = def.WFIThreshold
	}
	if p.TurboMax <= 0 {
		p.TurboMax = def.TurboMax
	}
	if p.BoostDuration <= 0 {
		p.BoostDuration = def.BoostDuration
	}
	if p.ThermalCritical <= 0 {
		p.ThermalCritical = def.ThermalCritical
	}
	if p.ThermalWarn <= 0 || p.ThermalWarn > p.ThermalCritical {
		p.ThermalWarn = def.ThermalWarn
	}
	if p.ThermalRelease <= 0 || p.ThermalRelease > p.ThermalWarn {
		p.ThermalRelease = def.ThermalRelease
	}

	return p
}
