package buildtree

import (
	"bufio"
	"fmt"
	"io"
)

// ModLearnVersion is the magic string leading a combat-power/attacked-by
// learn file (spec §6.1). Bumping it invalidates every existing save.
const ModLearnVersion = "AAICORE_MOD_LEARN_V1"

const (
	numMapTypes   = 4
	numGamePhases = 4
	// numAttackedByTargetTypes covers the mobile target types only
	// (Surface/Air/Floater/Submerged); Static never attacks.
	numAttackedByTargetTypes = 4
)

// AttackedByRates is the 4x4x4 (map-type x game-phase x target-type) table
// persisted alongside the combat-power matrix.
type AttackedByRates [numMapTypes][numGamePhases][numAttackedByTargetTypes]float64

// Save writes the combat-power matrix and attacked-by-rates table to w in
// the plain-text format spec §6.1 mandates: magic line, then the 4x4x4
// table flattened row-major, then def count N followed by N lines of five
// floats each.
func (bt *BuildTree) Save(w io.Writer, rates AttackedByRates) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, ModLearnVersion); err != nil {
		return err
	}
	for m := 0; m < numMapTypes; m++ {
		for p := 0; p < numGamePhases; p++ {
			for t := 0; t < numAttackedByTargetTypes; t++ {
				if _, err := fmt.Fprintf(bw, "%.6f ", rates[m][p][t]); err != nil {
					return err
				}
			}
		}
	}
	if _, err := fmt.Fprintln(bw); err != nil {
		return err
	}

	n := len(bt.defs) - 1
	if _, err := fmt.Fprintln(bw, n); err != nil {
		return err
	}
	for id := 1; id <= n; id++ {
		cp := bt.combatPower[id]
		if _, err := fmt.Fprintf(bw, "%.6f %.6f %.6f %.6f %.6f\n",
			cp[TargetSurface], cp[TargetAir], cp[TargetFloater], cp[TargetSubmerged], cp[TargetStatic]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ErrVersionMismatch is returned by Load when the file's magic line doesn't
// match ModLearnVersion. Per spec §6.1, this should invalidate the save and
// fall back to the computed combat-power seed silently.
type ErrVersionMismatch struct {
	Found string
}

func (e ErrVersionMismatch) Error() string {
	return fmt.Sprintf("buildtree: mod-learn file version mismatch (found %q)", e.Found)
}

// Load reads a combat-power/attacked-by-rates file written by Save. The
// number of def lines must match bt.NumDefs(); a mismatch is treated the
// same as corruption, not as a partial-load opportunity.
func (bt *BuildTree) Load(r io.Reader) (AttackedByRates, error) {
	var rates AttackedByRates
	br := bufio.NewReader(r)

	var version string
	if _, err := fmt.Fscanln(br, &version); err != nil {
		return rates, fmt.Errorf("buildtree: read version: %w", err)
	}
	if version != ModLearnVersion {
		return rates, ErrVersionMismatch{Found: version}
	}

	for m := 0; m < numMapTypes; m++ {
		for p := 0; p < numGamePhases; p++ {
			for t := 0; t < numAttackedByTargetTypes; t++ {
				if _, err := fmt.Fscan(br, &rates[m][p][t]); err != nil {
					return rates, fmt.Errorf("buildtree: read attacked-by-rates: %w", err)
				}
			}
		}
	}

	var n int
	if _, err := fmt.Fscan(br, &n); err != nil {
		return rates, fmt.Errorf("buildtree: read def count: %w", err)
	}
	if n != bt.NumDefs() {
		return rates, fmt.Errorf("buildtree: def count mismatch: file has %d, catalog has %d", n, bt.NumDefs())
	}

	for id := 1; id <= n; id++ {
		var cp CombatPower
		if _, err := fmt.Fscan(br, &cp[TargetSurface], &cp[TargetAir], &cp[TargetFloater], &cp[TargetSubmerged], &cp[TargetStatic]); err != nil {
			return rates, fmt.Errorf("buildtree: read combat power for def %d: %w", id, err)
		}
		bt.combatPower[id] = cp
	}
	return rates, nil
}
