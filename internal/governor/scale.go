package governor

// evaluateScale picks the next profile from the smoothed load. Runs once
// per scale cycle while no override is active.
//
// Upward and downward checks use separate thresholds: a profile is only
// left upward once the load climbs past its up threshold, and only left
// downward once the load drops below the (lower) down threshold of the
// profile itself, so a load sitting between the two holds the profile.
func (g *Governor) evaluateScale() {
	// an active boost holds the performance floor; a coincidentally low
	// sample must not undercut it
	if g.boostOn && g.profile >= ProfilePerformance {
		return
	}

	load := g.load.smoothed
	target := g.profile

	if !g.thermal.throttled {
		switch {
		case load >= g.params.TurboUp && g.profile < ProfileTurbo:
			target = ProfileTurbo
		case load >= g.params.PerfUp && g.profile < ProfilePerformance:
			target = ProfilePerformance
		case load >= g.params.BalancedUp && g.profile < ProfileBalanced:
			target = ProfileBalanced
		}
	}

	switch {
	case g.profile == ProfileTurbo && load < g.params.TurboDown:
		target = ProfilePerformance
	case g.profile == ProfilePerformance && load < g.params.PerfDown:
		target = ProfileBalanced
	case g.profile == ProfileBalanced && load < g.params.BalancedDown:
		target = ProfilePowersave
	case g.profile == ProfilePowersave && load < g.params.SaveDown:
		target = ProfileUltraLow
	}

	if g.thermal.throttled && target > ProfileBalanced {
		target = ProfileBalanced
	}

	if target != g.profile {
		g.apply(target)
	}
}
