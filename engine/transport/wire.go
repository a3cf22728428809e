package transport

import (
	"github.com/bklimczak/aaicore/engine/callback"
	emath "github.com/bklimczak/aaicore/engine/math"
)

// The wire structs below are the JSON shape this binding actually puts on
// the socket, kept separate from callback.UnitDef/Command/EnemyUnit so
// that package — the pure interface contract spec §6 names — carries no
// serialization concerns of its own (the teacher draws the same line
// between its wire UnitState/BuildingState and whatever the simulation's
// own unit struct looks like).

type weaponWire struct {
	Range            float64 `json:"range"`
	MaxDamage        float64 `json:"max_damage"`
	StockpileWeapon  bool    `json:"stockpile_weapon"`
	TargetCategories uint8   `json:"target_categories"`
}

func toWeapon(w weaponWire) callback.Weapon {
	return callback.Weapon{
		Range:            w.Range,
		MaxDamage:        w.MaxDamage,
		StockpileWeapon:  w.StockpileWeapon,
		TargetCategories: callback.WeaponTargets(w.TargetCategories),
	}
}

type unitDefWire struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	IsBuilding bool `json:"is_building"`

	MetalCost  float64 `json:"metal_cost"`
	EnergyCost float64 `json:"energy_cost"`
	BuildTime  float64 `json:"build_time"`
	Health     float64 `json:"health"`
	FootprintX int     `json:"footprint_x"`
	FootprintZ int     `json:"footprint_z"`

	BuildOptions []int `json:"build_options"`

	MoveFamily    string  `json:"move_family"`
	CanFly        bool    `json:"can_fly"`
	MinWaterDepth float64 `json:"min_water_depth"`
	Floater       bool    `json:"floater"`
	Speed         float64 `json:"speed"`

	CanAssist    bool `json:"can_assist"`
	CanResurrect bool `json:"can_resurrect"`
	IsCommander  bool `json:"is_commander"`
	IsScout      bool `json:"is_scout"`
	IsTransport  bool `json:"is_transport"`
	IsAirBase    bool `json:"is_air_base"`

	ExtractsMetal float64 `json:"extracts_metal"`
	EnergyMake    float64 `json:"energy_make"`
	EnergyUpkeep  float64 `json:"energy_upkeep"`
	Tidal         bool    `json:"tidal"`
	Wind          bool    `json:"wind"`
	MetalMake     float64 `json:"metal_make"`
	MetalStorage  float64 `json:"metal_storage"`
	EnergyStorage float64 `json:"energy_storage"`

	Weapons     []weaponWire `json:"weapons"`
	HasShield   bool         `json:"has_shield"`
	HasRadar    bool         `json:"has_radar"`
	HasSonar    bool         `json:"has_sonar"`
	HasSeismic  bool         `json:"has_seismic"`
	RadarRange  float64      `json:"radar_range"`
	SonarRange  float64      `json:"sonar_range"`
	HasJammer   bool         `json:"has_jammer"`
	JammerRange float64      `json:"jammer_range"`
	HasSonarJam bool         `json:"has_sonar_jam"`

	LOS float64 `json:"los"`
}

func toUnitDef(w unitDefWire) callback.UnitDef {
	weapons := make([]callback.Weapon, len(w.Weapons))
	for i, ww := range w.Weapons {
		weapons[i] = toWeapon(ww)
	}
	return callback.UnitDef{
		ID:            w.ID,
		Name:          w.Name,
		IsBuilding:    w.IsBuilding,
		MetalCost:     w.MetalCost,
		EnergyCost:    w.EnergyCost,
		BuildTime:     w.BuildTime,
		Health:        w.Health,
		FootprintX:    w.FootprintX,
		FootprintZ:    w.FootprintZ,
		BuildOptions:  w.BuildOptions,
		MoveFamily:    w.MoveFamily,
		CanFly:        w.CanFly,
		MinWaterDepth: w.MinWaterDepth,
		Floater:       w.Floater,
		Speed:         w.Speed,
		CanAssist:     w.CanAssist,
		CanResurrect:  w.CanResurrect,
		IsCommander:   w.IsCommander,
		IsScout:       w.IsScout,
		IsTransport:   w.IsTransport,
		IsAirBase:     w.IsAirBase,
		ExtractsMetal: w.ExtractsMetal,
		EnergyMake:    w.EnergyMake,
		EnergyUpkeep:  w.EnergyUpkeep,
		Tidal:         w.Tidal,
		Wind:          w.Wind,
		MetalMake:     w.MetalMake,
		MetalStorage:  w.MetalStorage,
		EnergyStorage: w.EnergyStorage,
		Weapons:       weapons,
		HasShield:     w.HasShield,
		HasRadar:      w.HasRadar,
		HasSonar:      w.HasSonar,
		HasSeismic:    w.HasSeismic,
		RadarRange:    w.RadarRange,
		SonarRange:    w.SonarRange,
		HasJammer:     w.HasJammer,
		JammerRange:   w.JammerRange,
		HasSonarJam:   w.HasSonarJam,
		LOS:           w.LOS,
	}
}

type commandWire struct {
	Order    int        `json:"order"`
	Pos      emath.Vec2 `json:"pos"`
	TargetID int        `json:"target_id,omitempty"`
	BuildDef int        `json:"build_def,omitempty"`
	Queued   bool       `json:"queued,omitempty"`
}

func fromCommand(cmd callback.Command) commandWire {
	return commandWire{
		Order:    int(cmd.Order),
		Pos:      cmd.Pos,
		TargetID: cmd.TargetID,
		BuildDef: cmd.BuildDef,
		Queued:   cmd.Queued,
	}
}

type enemyUnitWire struct {
	UnitID int        `json:"unit_id"`
	DefID  int        `json:"def_id"`
	Pos    emath.Vec2 `json:"pos"`
}

func toEnemyUnit(w enemyUnitWire) callback.EnemyUnit {
	return callback.EnemyUnit{UnitID: w.UnitID, DefID: w.DefID, Pos: w.Pos}
}
