// Package config loads the game-specific tuning keys (spec §6) the rest of
// the engine packages read at Brain/Executor init time.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config enumerates every key spec §6 lists. All are optional except Sides
// and StartUnits, which the loader rejects on if absent.
type Config struct {
	Sides      int      `yaml:"SIDES"`
	SideNames  []string `yaml:"SIDE_NAMES"`
	StartUnits []string `yaml:"START_UNITS"`
	Scouts     []string `yaml:"SCOUTS"`
	Transporters []string `yaml:"TRANSPORTERS"`
	MetalMakers  []string `yaml:"METAL_MAKERS"`
	DontBuild    []string `yaml:"DONT_BUILD"`

	MinEnergy             float64 `yaml:"MIN_ENERGY"`
	MaxUnits              int     `yaml:"MAX_UNITS"`
	MaxScouts             int     `yaml:"MAX_SCOUTS"`
	MaxSectorImportance   float64 `yaml:"MAX_SECTOR_IMPORTANCE"`
	MaxXRow               int     `yaml:"MAX_XROW"`
	MaxYRow               int     `yaml:"MAX_YROW"`
	XSpace                float64 `yaml:"X_SPACE"`
	YSpace                float64 `yaml:"Y_SPACE"`
	MaxGroupSize          int     `yaml:"MAX_GROUP_SIZE"`
	MaxAirGroupSize       int     `yaml:"MAX_AIR_GROUP_SIZE"`
	MaxAntiAirGroupSize   int     `yaml:"MAX_ANTI_AIR_GROUP_SIZE"`
	MaxSubmarineGroupSize int     `yaml:"MAX_SUBMARINE_GROUP_SIZE"`
	MaxNavalGroupSize     int     `yaml:"MAX_NAVAL_GROUP_SIZE"`
	MaxArtyGroupSize      int     `yaml:"MAX_ARTY_GROUP_SIZE"`
	MaxBuilders           int     `yaml:"MAX_BUILDERS"`
	MaxBuildersPerType    int     `yaml:"MAX_BUILDERS_PER_TYPE"`
	MaxFactoriesPerType   int     `yaml:"MAX_FACTORIES_PER_TYPE"`
	MaxBuildQueueSize     int     `yaml:"MAX_BUILDQUE_SIZE"`
	MaxAssistants         int     `yaml:"MAX_ASSISTANTS"`
	MinAssistanceBuildtime float64 `yaml:"MIN_ASSISTANCE_BUILDTIME"`
	MinAssistanceBuildspeed float64 `yaml:"MIN_ASSISTANCE_BUILDSPEED"`
	MaxBaseSize           float64 `yaml:"MAX_BASE_SIZE"`
	ScoutSpeed            float64 `yaml:"SCOUT_SPEED"`
	GroundArtyRange       float64 `yaml:"GROUND_ARTY_RANGE"`
	SeaArtyRange          float64 `yaml:"SEA_ARTY_RANGE"`
	HoverArtyRange        float64 `yaml:"HOVER_ARTY_RANGE"`
	StationaryArtyRange   float64 `yaml:"STATIONARY_ARTY_RANGE"`
	AirDefence            float64 `yaml:"AIR_DEFENCE"`
	MinEnergyStorage      float64 `yaml:"MIN_ENERGY_STORAGE"`
	MinMetalStorage       float64 `yaml:"MIN_METAL_STORAGE"`
	MinAirAttackCost      float64 `yaml:"MIN_AIR_ATTACK_COST"`
	MaxAirTargets         int     `yaml:"MAX_AIR_TARGETS"`
	AircraftRate          float64 `yaml:"AIRCRAFT_RATE"`
	HighRangeUnitsRate    float64 `yaml:"HIGH_RANGE_UNITS_RATE"`
	FastUnitsRate         float64 `yaml:"FAST_UNITS_RATE"`
	MetalEnergyRatio      float64 `yaml:"METAL_ENERGY_RATIO"`
	MaxDefences           int     `yaml:"MAX_DEFENCES"`
	MinSectorThreat       float64 `yaml:"MIN_SECTOR_THREAT"`
	MaxStatArty           int     `yaml:"MAX_STAT_ARTY"`
	MaxStorage            int     `yaml:"MAX_STORAGE"`
	MaxAirBase            int     `yaml:"MAX_AIR_BASE"`
	AirOnlyMod            bool    `yaml:"AIR_ONLY_MOD"`
	MaxMetalMakers        int     `yaml:"MAX_METAL_MAKERS"`
	MinMetalMakerEnergy   float64 `yaml:"MIN_METAL_MAKER_ENERGY"`
	MaxMexDistance        float64 `yaml:"MAX_MEX_DISTANCE"`
	MaxMexDefenceDistance float64 `yaml:"MAX_MEX_DEFENCE_DISTANCE"`
	MinFactoriesForDefences    int `yaml:"MIN_FACTORIES_FOR_DEFENCES"`
	MinFactoriesForStorage     int `yaml:"MIN_FACTORIES_FOR_STORAGE"`
	MinFactoriesForRadarJammer int `yaml:"MIN_FACTORIES_FOR_RADAR_JAMMER"`
	MinAirSupportEfficiency   float64 `yaml:"MIN_AIR_SUPPORT_EFFICIENCY"`
	MinSubmarineWaterline     float64 `yaml:"MIN_SUBMARINE_WATERLINE"`
	MaxAttacks                int     `yaml:"MAX_ATTACKS"`
	NonAmphibMaxWaterdepth    float64 `yaml:"NON_AMPHIB_MAX_WATERDEPTH"`
	MaxCostLightAssault    float64 `yaml:"MAX_COST_LIGHT_ASSAULT"`
	MaxCostMediumAssault   float64 `yaml:"MAX_COST_MEDIUM_ASSAULT"`
	MaxCostHeavyAssault    float64 `yaml:"MAX_COST_HEAVY_ASSAULT"`
	LightAssaultRatio      float64 `yaml:"LIGHT_ASSAULT_RATIO"`
	MediumAssaultRatio     float64 `yaml:"MEDIUM_ASSAULT_RATIO"`
	HeavyAssaultRatio      float64 `yaml:"HEAVY_ASSAULT_RATIO"`
	SuperHeavyAssaultRatio float64 `yaml:"SUPER_HEAVY_ASSAULT_RATIO"`
	MinFallbackTurnrate    float64 `yaml:"MIN_FALLBACK_TURNRATE"`
	MaxMilitaryTargets     int     `yaml:"MAX_MILITARY_TARGETS"`
	MaxEconomyTargets      int     `yaml:"MAX_ECONOMY_TARGETS"`
	HealthPerBomber        float64 `yaml:"HEALTH_PER_BOMBER"`

	SectorSize         float64 `yaml:"SECTOR_SIZE"`
	LearnRate          float64 `yaml:"LEARN_RATE"`
	ConstructionTimeout float64 `yaml:"CONSTRUCTION_TIMEOUT"`
	CliffSlope         float64 `yaml:"CLIFF_SLOPE"`
	WaterMapRatio      float64 `yaml:"WATER_MAP_RATIO"`
	LandWaterMapRatio  float64 `yaml:"LAND_WATER_MAP_RATIO"`
}

// Load reads and strictly decodes a YAML config file, rejecting unknown
// keywords per spec §6 ("unknown keywords abort config loading").
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.Sides <= 0 {
		return nil, fmt.Errorf("config: %s: SIDES is required", path)
	}
	if len(cfg.StartUnits) == 0 {
		return nil, fmt.Errorf("config: %s: START_UNITS is required", path)
	}
	return &cfg, nil
}

// Default returns a Config with every tunable at the mid-range value this
// core's own packages fall back to when a key is not worth exposing to
// every mod's game.cfg (the constants spec §4 calls out by name, e.g.
// INCOME_SAMPLE_POINTS, stay as Go constants next to their package instead
// of being re-declared here).
func Default() *Config {
	return &Config{
		Sides:                 2,
		MaxGroupSize:          8,
		MaxAirGroupSize:       6,
		MaxAntiAirGroupSize:   6,
		MaxSubmarineGroupSize: 4,
		MaxNavalGroupSize:     6,
		MaxArtyGroupSize:      4,
		MaxBuilders:           12,
		MaxBuildersPerType:    4,
		MaxFactoriesPerType:   2,
		MaxBuildQueueSize:     3,
		MaxAssistants:         4,
		MaxBaseSize:           8,
		ScoutSpeed:            90,
		GroundArtyRange:       700,
		SeaArtyRange:          900,
		HoverArtyRange:        700,
		StationaryArtyRange:   700,
		MetalEnergyRatio:      60,
		MaxDefences:           30,
		MinSectorThreat:       0.1,
		MaxAttacks:            3,
		NonAmphibMaxWaterdepth: 20,
		LightAssaultRatio:      0.4,
		MediumAssaultRatio:     0.3,
		HeavyAssaultRatio:      0.2,
		SuperHeavyAssaultRatio: 0.1,
		MinFallbackTurnrate:    0.02,
		MaxMilitaryTargets:     3,
		MaxEconomyTargets:      3,
		HealthPerBomber:        300,
		SectorSize:             800,
		LearnRate:              0.1,
		ConstructionTimeout:    1800,
	}
}
