package root

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Snapshot is a debug-only point-in-time dump of AAIRoot's high-level
// state: enough to diff two frames of a run without dragging in every
// unit's full Entry. It is never read back by the AI itself — it exists
// for a human staring at a replay, the same role AAI's own debug logging
// plays in the original.
type Snapshot struct {
	Frame int `yaml:"frame"`
	Team  int `yaml:"team"`

	BaseSectors    int `yaml:"base_sectors"`
	Groups         int `yaml:"groups"`
	Attacks        int `yaml:"attacks"`
	ActiveFactories int `yaml:"active_factories"`

	MetalSurplus  float64 `yaml:"metal_surplus"`
	EnergySurplus float64 `yaml:"energy_surplus"`
}

// Snapshot captures the current state for SaveSnapshot, or for a caller
// that just wants to log it directly.
func (r *AAIRoot) Snapshot() Snapshot {
	return Snapshot{
		Frame:           r.lastFrame,
		Team:            r.team,
		BaseSectors:     r.brain.BaseSize(),
		Groups:          len(r.grps.Groups()),
		Attacks:         len(r.grps.Attacks()),
		ActiveFactories: r.table.ActiveFactories(),
		MetalSurplus:    r.brain.MetalSurplus.AverageValue(),
		EnergySurplus:   r.brain.EnergySurplus.AverageValue(),
	}
}

// SaveSnapshot writes the current Snapshot to w as YAML, in the same
// gopkg.in/yaml.v3 format config.Config itself is loaded from.
func (r *AAIRoot) SaveSnapshot(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r.Snapshot())
}
