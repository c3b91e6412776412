package solver

// Restart policies. The glue policy follows recent-LBD-vs-global-average
// triggering; a blocking rule suppresses restarts while the trail is growing
// fast, since the solver is then likely to be completing an assignment.

const nbMaxRecent = 50 // How many recent LBD values we consider

type restartStats struct {
	totalNb    int              // Total number of values considered
	totalSum   int              // Sum of all LBD so far
	nbRecent   int              // Nb of values useful in recentVals
	recentVals [nbMaxRecent]int // Last LBD values
	ptr        int              // Current index of oldest value in recentVals
	recentAvg  float64          // Average LBD for recentVals

	trailAvg   float64 // Long-run average of trail sizes at conflicts
	trailNb    int
	blockedBy  int   // Nb of restarts suppressed by the blocking rule
	lubyIdx    int64 // Index in the luby sequence of the current restart
	geomLimit  int64 // Nb of conflicts before the next geometric restart
	sinceStart int64 // Conflicts since the last restart
}

// addLbd adds information about a recent learnt clause's LBD.
func (r *restartStats) addLbd(lbd int) {
	r.totalNb++
	r.totalSum += lbd
	if r.nbRecent < nbMaxRecent {
		r.recentVals[r.nbRecent] = lbd
		oldNb := float64(r.nbRecent)
		newNb := float64(r.nbRecent + 1)
		r.recentAvg = (r.recentAvg*oldNb)/newNb + float64(lbd)/newNb
		r.nbRecent++
	} else {
		oldVal := r.recentVals[r.ptr]
		r.recentVals[r.ptr] = lbd
		r.ptr++
		if r.ptr == nbMaxRecent {
			r.ptr = 0
		}
		r.recentAvg = r.recentAvg - float64(oldVal)/nbMaxRecent + float64(lbd)/nbMaxRecent
	}
}

// addConflict records the trail size at a conflict, for the blocking rule.
func (r *restartStats) addConflict(trailSize int) {
	r.sinceStart++
	r.trailNb++
	r.trailAvg += (float64(trailSize) - r.trailAvg) / float64(r.trailNb)
}

// clear clears the recent window. It should be called after a restart.
func (r *restartStats) clear() {
	r.ptr = 0
	r.nbRecent = 0
	r.recentAvg = 0.0
	r.sinceStart = 0
}

// mustRestart applies the configured restart policy.
func (s *Solver) mustRestart() bool {
	r := &s.restart
	switch s.conf.RestartType {
	case RestartLuby:
		return r.sinceStart >= luby(r.lubyIdx+1)*int64(s.conf.RestartFirst)
	case RestartGeom:
		return r.sinceStart >= r.geomLimit
	default: // RestartGlue
		if r.nbRecent < nbMaxRecent {
			return false
		}
		if r.recentAvg*s.conf.LocalGlueMultiplier <= float64(r.totalSum)/float64(r.totalNb) {
			return false
		}
		// Blocking rule: while the trail at conflicts keeps outgrowing its
		// long-run average, the solver is making assignments, not thrashing.
		if s.conf.DoBlockingRestart &&
			s.Stats.NbConflicts > s.conf.LowerBoundForBlockingRestart &&
			float64(len(s.trail)) > s.conf.BlockingRestartMultip*r.trailAvg {
			r.blockedBy++
			r.clear()
			return false
		}
		return true
	}
}

// onRestart updates the per-policy counters once a restart was decided.
func (s *Solver) onRestart() {
	r := &s.restart
	switch s.conf.RestartType {
	case RestartLuby:
		r.lubyIdx++
	case RestartGeom:
		r.geomLimit = int64(float64(r.geomLimit) * s.conf.RestartInc)
	}
	r.clear()
}

// luby returns the i-th element (1-based) of the luby sequence
// 1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, ...
// The element is found by locating the index inside the smallest complete
// subsequence containing it, then reducing into that subsequence.
func luby(i int64) int64 {
	x := i - 1
	size, value := int64(1), int64(1)
	for size <= x {
		size = 2*size + 1
		value *= 2
	}
	for size-1 != x {
		size = (size - 1) / 2
		value /= 2
		x %= size
	}
	return value
}
