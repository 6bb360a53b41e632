package governor

// loadSampler converts tick timestamps and idle annotations into a
// smoothed load percentage. Real work takes time: the gap between two
// consecutive ticks, minus whatever the caller explicitly marked idle,
// is counted as work. Once per sample period the accumulated work is
// turned into an instantaneous load and folded into the moving average.
type loadSampler struct {
	periodUS  int64
	minWorkUS int64
	alpha     float64

	lastTickUS    int64
	periodStartUS int64
	workUS        int64
	idleUS        int64
	firstTick     bool

	instant  float64
	smoothed float64
}

func newLoadSampler(p Params, nowUS int64) *loadSampler {
	return &loadSampler{
		periodUS:      p.SamplePeriod.Microseconds(),
		minWorkUS:     p.MinWork.Microseconds(),
		alpha:         p.Smoothing,
		lastTickUS:    nowUS,
		periodStartUS: nowUS,
		firstTick:     true,
	}
}

// addIdleMicros records explicitly annotated idle time. The accumulator
// applies to exactly one inter-tick interval and is consumed by the next
// tick.
func (s *loadSampler) addIdleMicros(us int64) {
	if us > 0 {
		s.idleUS += us
	}
}

// tick accounts the interval since the previous tick and, when a sample
// period has elapsed, recomputes the load figures.
func (s *loadSampler) tick(nowUS int64) {
	if !s.firstTick {
		work := nowUS - s.lastTickUS - s.idleUS
		if work > 0 {
			s.workUS += work
		}
	}
	s.firstTick = false
	s.idleUS = 0
	s.lastTickUS = nowUS

	periodElapsed := nowUS - s.periodStartUS
	if periodElapsed < s.periodUS {
		return
	}

	if s.workUS < s.minWorkUS {
		// below the noise floor: genuine idling, not light work
		s.instant = 0
	} else {
		s.instant = clampLoad(100 * float64(s.workUS) / float64(periodElapsed))
	}

	s.smoothed = clampLoad(s.smoothed*(1-s.alpha) + s.instant*s.alpha)

	s.periodStartUS = nowUS
	s.workUS = 0
}

// settle moves the tick reference point to after the governor's own
// bookkeeping, so governor overhead is not billed as caller work.
func (s *loadSampler) settle(nowUS int64) {
	s.lastTickUS = nowUS
}

func clampLoad(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}

	return v
}
