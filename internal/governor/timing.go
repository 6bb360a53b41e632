package governor

import "codeberg.org/mutker/picoctl/internal/logger"

// superviseTimers expires the three residency trackers: the turbo
// ceiling, the boost floor and the manual override. Runs once per scale
// cycle.
func (g *Governor) superviseTimers(nowMS int64) {
	if g.turboOn && nowMS-g.turboStartMS >= g.params.TurboMax.Milliseconds() {
		g.turboOn = false
		if g.profile == ProfileTurbo {
			logger.Debug().
				Int64("residency_ms", nowMS-g.turboStartMS).
				Msg("turbo residency cap reached, downgrading to performance")
			g.apply(ProfilePerformance)
		}
	}

	if g.boostOn && nowMS-g.boostStartMS >= g.params.BoostDuration.Milliseconds() {
		g.boostOn = false
	}

	if g.overrideOn && g.overrideEndMS > 0 && nowMS >= g.overrideEndMS {
		g.overrideOn = false
		g.overrideEndMS = 0
		logger.Debug().Msg("override expired, resuming automatic scaling")
	}
}
