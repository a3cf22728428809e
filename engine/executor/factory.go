package executor

// CheckFactories implements spec §4.I check_factories: periodically
// reconsiders whether the AI's factory roster needs reinforcing. The
// original requests a second factory of an existing type once its build
// queue and assistant count are both saturated; CheckFactories is given
// only the active/future factory counts, not the build queues or
// assistant counts (see DESIGN.md), so it instead only asks for a replacement once the roster would otherwise
// drop below minFactories — a bootstrap-and-replace policy rather than
// the original's overload trigger, reusing the same urgency/Attempt path
// try_build_factory runs on.
func CheckFactories(urgency *UrgencyTable, activeFactories, futureFactories, minFactories int) {
	if activeFactories+futureFactories < minFactories {
		urgency.RaiseTo(CategoryStaticConstructor, 1)
	}
}

// CheckConstructionOfNanoTurret implements spec §4.I
// check_construction_of_nano_turret: once at least one factory is active,
// a construction-assist turret near the base speeds up everything the
// base still has queued, so Executor asks for one per maxNanoTurrets
// the same way CheckFactories asks for a second factory.
func CheckConstructionOfNanoTurret(urgency *UrgencyTable, activeFactories, nanoTurrets, maxNanoTurrets int) {
	if activeFactories > 0 && nanoTurrets < maxNanoTurrets {
		urgency.RaiseTo(CategoryNanoTurret, 1)
	}
}
