package buildtree

import "math"

// computeStatistics rolls up per-side, per-category min/max/avg of cost,
// buildtime and the two ability fields, plus a sensor-only statistic,
// per spec §4.A step 9.
func (bt *BuildTree) computeStatistics() {
	bt.unitStatistics = make(map[int]map[UnitCategory]UnitStatistics)
	bt.sensorStatistics = make(map[int]SensorStatistics)

	type accum struct {
		minCost, maxCost, sumCost             float64
		minBuild, maxBuild, sumBuild           float64
		minPrimary, maxPrimary, sumPrimary     float64
		minSecondary, maxSecondary, sumSecondary float64
		n int
	}
	type sensorAccum struct {
		minRadar, maxRadar, sumRadar float64
		minSonar, maxSonar, sumSonar float64
		n                            int
	}

	acc := make(map[int]map[UnitCategory]*accum)
	sensorAcc := make(map[int]*sensorAccum)

	feed := func(a *accum, v, cost, build, primary, secondary float64) {
		_ = v
		if a.n == 0 {
			a.minCost, a.maxCost = cost, cost
			a.minBuild, a.maxBuild = build, build
			a.minPrimary, a.maxPrimary = primary, primary
			a.minSecondary, a.maxSecondary = secondary, secondary
		} else {
			a.minCost = math.Min(a.minCost, cost)
			a.maxCost = math.Max(a.maxCost, cost)
			a.minBuild = math.Min(a.minBuild, build)
			a.maxBuild = math.Max(a.maxBuild, build)
			a.minPrimary = math.Min(a.minPrimary, primary)
			a.maxPrimary = math.Max(a.maxPrimary, primary)
			a.minSecondary = math.Min(a.minSecondary, secondary)
			a.maxSecondary = math.Max(a.maxSecondary, secondary)
		}
		a.sumCost += cost
		a.sumBuild += build
		a.sumPrimary += primary
		a.sumSecondary += secondary
		a.n++
	}

	for id := 1; id < len(bt.defs); id++ {
		side := bt.side[id]
		if side == 0 {
			continue
		}
		p := bt.props[id]

		if acc[side] == nil {
			acc[side] = make(map[UnitCategory]*accum)
		}
		if acc[side][p.Category] == nil {
			acc[side][p.Category] = &accum{}
		}
		feed(acc[side][p.Category], 0, p.TotalCost, p.BuildTime, p.PrimaryAbility, p.SecondaryAbility)

		if p.UnitType.Has(TypeRadar) || p.UnitType.Has(TypeSonar) {
			if sensorAcc[side] == nil {
				sensorAcc[side] = &sensorAccum{}
			}
			sa := sensorAcc[side]
			def := bt.defs[id]
			if sa.n == 0 {
				sa.minRadar, sa.maxRadar = def.RadarRange, def.RadarRange
				sa.minSonar, sa.maxSonar = def.SonarRange, def.SonarRange
			} else {
				sa.minRadar = math.Min(sa.minRadar, def.RadarRange)
				sa.maxRadar = math.Max(sa.maxRadar, def.RadarRange)
				sa.minSonar = math.Min(sa.minSonar, def.SonarRange)
				sa.maxSonar = math.Max(sa.maxSonar, def.SonarRange)
			}
			sa.sumRadar += def.RadarRange
			sa.sumSonar += def.SonarRange
			sa.n++
		}
	}

	for side, byCat := range acc {
		bt.unitStatistics[side] = make(map[UnitCategory]UnitStatistics)
		for cat, a := range byCat {
			n := float64(a.n)
			bt.unitStatistics[side][cat] = UnitStatistics{
				MinCost: a.minCost, MaxCost: a.maxCost, AvgCost: a.sumCost / n,
				MinBuildTime: a.minBuild, MaxBuildTime: a.maxBuild, AvgBuildTime: a.sumBuild / n,
				MinPrimary: a.minPrimary, MaxPrimary: a.maxPrimary, AvgPrimary: a.sumPrimary / n,
				MinSecondary: a.minSecondary, MaxSecondary: a.maxSecondary, AvgSecondary: a.sumSecondary / n,
				Count: a.n,
			}
		}
	}
	for side, sa := range sensorAcc {
		n := float64(sa.n)
		bt.sensorStatistics[side] = SensorStatistics{
			MinRadarRange: sa.minRadar, MaxRadarRange: sa.maxRadar, AvgRadarRange: sa.sumRadar / n,
			MinSonarRange: sa.minSonar, MaxSonarRange: sa.maxSonar, AvgSonarRange: sa.sumSonar / n,
			Count: sa.n,
		}
	}
}

// UnitStatisticsFor returns the rolled-up statistics for a side/category
// pair, or the zero value with ok=false if no def landed in that bucket.
func (bt *BuildTree) UnitStatisticsFor(side int, cat UnitCategory) (UnitStatistics, bool) {
	byCat, ok := bt.unitStatistics[side]
	if !ok {
		return UnitStatistics{}, false
	}
	s, ok := byCat[cat]
	return s, ok
}

// SensorStatisticsFor returns the radar/sonar roll-up for a side.
func (bt *BuildTree) SensorStatisticsFor(side int) (SensorStatistics, bool) {
	s, ok := bt.sensorStatistics[side]
	return s, ok
}
