package executor

const (
	minUrgencyToAct = 0.5
	maxUrgency      = 20.0
	urgencyRiseFactor = 1.02
)

// UrgencyTable is the per-category build pressure Executor maintains and
// drains, one slow step at a time (spec §4.I urgency[category]).
type UrgencyTable [numCategories]float64

// Rise multiplies every urgency by the slow-rise factor and clamps each to
// [0, maxUrgency] (spec §4.I step 2).
func (u *UrgencyTable) Rise() {
	for i := range u {
		v := u[i] * urgencyRiseFactor
		if v > maxUrgency {
			v = maxUrgency
		}
		u[i] = v
	}
}

// RaiseTo sets u[cat] to v if v is higher than the current value — the
// "urgency ← telemetry, but only upward" pattern every per-tick recompute
// in spec §4.I step 1 uses.
func (u *UrgencyTable) RaiseTo(cat Category, v float64) {
	if v > u[cat] {
		u[cat] = v
	}
}

// Clear zeroes a category's urgency after a successful try_build_* call
// (spec §4.I step 3).
func (u *UrgencyTable) Clear(cat Category) {
	u[cat] = 0
}

// SelectNextBuild returns the highest-urgency category that clears the
// action threshold, or false if none does (spec §4.I step 3).
func (u *UrgencyTable) SelectNextBuild() (Category, bool) {
	best := Category(-1)
	bestVal := minUrgencyToAct
	for i := 0; i < int(numCategories); i++ {
		if u[i] > bestVal {
			bestVal = u[i]
			best = Category(i)
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
