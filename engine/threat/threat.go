// Package threat is a thin compositing layer over the sector grid: it
// snapshots each sector's estimated enemy combat power once per update
// and answers the two queries Group/AirForceManager need that a raw
// sector lookup can't give them directly — "which sector is the best
// attack target from here" and "how much enemy power lies on a line
// between two points" (spec §4.D).
package threat

import (
	"math"

	emath "github.com/bklimczak/aaicore/engine/math"
	"github.com/bklimczak/aaicore/engine/sector"
)

const numTargetTypes = 5

// Map holds one combat-power snapshot per sector, indexed [x][y].
type Map struct {
	width, height int
	combatPower   [][][numTargetTypes]float64
}

// New returns a zeroed threat map sized to the sector grid.
func New(xSectors, ySectors int) *Map {
	cp := make([][][numTargetTypes]float64, xSectors)
	for x := range cp {
		cp[x] = make([][numTargetTypes]float64, ySectors)
	}
	return &Map{width: xSectors, height: ySectors, combatPower: cp}
}

// UpdateLocalEnemyCombatPower snapshots sectors[x][y].EnemyCombatPowerOf(t)
// for every target type into the map (spec §4.D update_local_enemy_combat_power).
// Called once per Brain update tick, not on every query, so line-sampling
// queries stay cheap.
func (m *Map) UpdateLocalEnemyCombatPower(sectors [][]*sector.Sector) {
	for x := 0; x < m.width && x < len(sectors); x++ {
		col := sectors[x]
		for y := 0; y < m.height && y < len(col); y++ {
			s := col[y]
			if s == nil {
				continue
			}
			for t := 0; t < numTargetTypes; t++ {
				m.combatPower[x][y][t] = s.EnemyCombatPowerOf(t)
			}
		}
	}
}

// DetermineSectorToAttack scores every sector with at least one enemy
// building and returns the highest-rated one, or (nil, false) if no
// sector qualifies (spec §4.D determine_sector_to_attack). maxSquaredMapDist
// is the map's diagonal squared, used to normalize the distance term.
func (m *Map) DetermineSectorToAttack(
	attackerTargetType int,
	position emath.Vec2,
	sectors [][]*sector.Sector,
	sectorSizeX, sectorSizeY, maxSquaredMapDist float64,
) (*sector.Sector, bool) {
	startX := int(position.X / sectorSizeX)
	startY := int(position.Y / sectorSizeY)

	var best *sector.Sector
	highest := 0.0

	for x := 0; x < m.width && x < len(sectors); x++ {
		col := sectors[x]
		for y := 0; y < m.height && y < len(col); y++ {
			s := col[y]
			if s == nil || s.NumberOfEnemyBuildings() == 0 {
				continue
			}

			center := s.Center(sectorSizeX, sectorSizeY)
			dx := center.X - position.X
			dy := center.Y - position.Y
			distSquared := dx*dx + dy*dy

			distRating := distSquared / (0.5 * maxSquaredMapDist)
			if distRating > 0.9 {
				distRating = 0.9
			}

			lostUnitsRating := 1.0 - s.TotalLostUnits()/15.0
			if lostUnitsRating < 0.1 {
				lostUnitsRating = 0.1
			}

			enemyCombatPower := m.calculateCombatPower(attackerTargetType, startX, startY, x, y)

			rating := float64(s.NumberOfEnemyBuildings()) / (0.1 + enemyCombatPower) * (1 - distRating) * lostUnitsRating

			if rating > highest {
				best = s
				highest = rating
			}
		}
	}

	return best, best != nil
}

// CalculateEnemyDefencePower walks the straight line from start to target
// one sector at a time and sums the snapshotted enemy combat power against
// attackerTargetType along the way (spec §4.D calculate_enemy_defence_power).
// Used by Group to estimate the cost of a planned approach path.
func (m *Map) CalculateEnemyDefencePower(attackerTargetType int, start, target emath.Vec2, sectorSizeX, sectorSizeY float64) float64 {
	startX := int(start.X / sectorSizeX)
	startY := int(start.Y / sectorSizeY)
	targetX := int(target.X / sectorSizeX)
	targetY := int(target.Y / sectorSizeY)
	return m.calculateCombatPower(attackerTargetType, startX, startY, targetX, targetY)
}

// calculateCombatPower steps from (startX,startY) to (targetX,targetY)
// sector by sector along the straight line between them, summing the
// snapshotted enemy combat power of each newly-entered sector.
func (m *Map) calculateCombatPower(targetType, startX, startY, targetX, targetY int) float64 {
	dx := float64(targetX - startX)
	dy := float64(targetY - startY)

	dist := dx*dx + dy*dy
	if dist == 0 {
		return m.valueAt(startX, startY, targetType)
	}
	invDist := 1.0 / math.Sqrt(dist)

	lastX, lastY := startX, startY
	var combatPower float64
	step := 1.0

	for {
		x := startX + int(step*dx*invDist)
		y := startY + int(step*dy*invDist)

		if x != lastX || y != lastY {
			combatPower += m.valueAt(x, y, targetType)
			lastX, lastY = x, y
		}

		if (x == targetX && y == targetY) || step > (math.Abs(dx)+math.Abs(dy)) {
			break
		}
		step++
	}

	return combatPower
}

func (m *Map) valueAt(x, y, targetType int) float64 {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0
	}
	return m.combatPower[x][y][targetType]
}
