package executor

import (
	"github.com/bklimczak/aaicore/engine/buildtree"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// BuildOrderStatus reports how a single construction attempt went (spec
// §4.I try_construction_of, grounded on AAIExecute's BuildOrderStatus).
type BuildOrderStatus int

const (
	BuildingInvalid BuildOrderStatus = iota
	NoBuildsiteFound
	NoBuilderAvailable
	Successful
)

// BuildsiteFinder locates a placement for defID within a sector; ok is
// false if no legal site exists there.
type BuildsiteFinder func(defID buildtree.UnitDefId) (pos emath.Vec2, ok bool)

// BuilderFinder returns the closest available builder that can construct
// defID near pos.
type BuilderFinder func(defID buildtree.UnitDefId, pos emath.Vec2) (unitID int, ok bool)

// TryConstructionOf attempts to place and order construction of a single
// building def, and expands the base on failure to find a site (spec
// §4.I try_construction_of, grounded on AAIExecute::TryConstructionOf).
// findSite/findBuilder/order/expandBase are closures so this package need
// not import gamemap, unittable or brain directly to run the protocol.
func TryConstructionOf(
	defID buildtree.UnitDefId,
	findSite BuildsiteFinder,
	findBuilder BuilderFinder,
	order func(builderUnitID int, defID buildtree.UnitDefId, pos emath.Vec2) bool,
	expandBase func(),
) BuildOrderStatus {
	if defID == 0 {
		return BuildingInvalid
	}

	pos, ok := findSite(defID)
	if !ok {
		expandBase()
		return NoBuildsiteFound
	}

	builderUnitID, ok := findBuilder(defID, pos)
	if !ok {
		return NoBuilderAvailable
	}

	if order(builderUnitID, defID, pos) {
		return Successful
	}
	return NoBuilderAvailable
}

// TryConstructionOfEither picks the land or sea variant of a building
// based on a sector's water ratio and tries the land variant first in a
// mixed sector, falling back to the sea variant only if land fails (spec
// §4.I, grounded on AAIExecute::TryConstructionOf's two-def overload).
func TryConstructionOfEither(
	landDefID, seaDefID buildtree.UnitDefId,
	waterRatio float64,
	findSite BuildsiteFinder,
	findBuilder BuilderFinder,
	order func(builderUnitID int, defID buildtree.UnitDefId, pos emath.Vec2) bool,
	expandBase func(),
) BuildOrderStatus {
	switch {
	case waterRatio < 0.15:
		return TryConstructionOf(landDefID, findSite, findBuilder, order, expandBase)
	case waterRatio < 0.85:
		status := TryConstructionOf(landDefID, findSite, findBuilder, order, expandBase)
		if status != Successful {
			return TryConstructionOf(seaDefID, findSite, findBuilder, order, expandBase)
		}
		return status
	default:
		return TryConstructionOf(seaDefID, findSite, findBuilder, order, expandBase)
	}
}

// SectorRanker yields candidate sectors for a construction category in
// priority order — the shared shape behind every try_build_* loop (spec
// §4.I, grounded on AAIExecute::BuildPowerPlant/BuildExtractor/etc, each
// of which walks a ranked sector list and stops at the first success).
type SectorRanker func(yield func(sectorIndex int) bool)

// TryConstructionAcrossSectors walks rankedSectors in priority order,
// attempting construction in each; it stops at the first Successful or
// BuildingInvalid result, and keeps trying further sectors only after
// NoBuildsiteFound. A NoBuilderAvailable result also stops the walk since
// the original retries that case on the next tick rather than burning
// through every remaining sector (spec §4.I, grounded on the per-sector
// loop shared by every AAIExecute::Build* function).
func TryConstructionAcrossSectors(
	rankedSectors SectorRanker,
	attempt func(sectorIndex int) BuildOrderStatus,
) BuildOrderStatus {
	status := NoBuildsiteFound
	rankedSectors(func(sectorIndex int) bool {
		status = attempt(sectorIndex)
		return status == NoBuildsiteFound
	})
	return status
}
