package sector

import (
	"bufio"
	"fmt"
	"io"
)

// MapLearnVersion is the magic string leading a per-map sector learn file
// (spec §6.4 item 4).
const MapLearnVersion = "AAICORE_MAP_LEARN_V1"

// SaveLearnFile writes, in row-major order, each sector's
// {flat_ratio, water_ratio, importance_this_game} followed by its
// per-target-type attack rates (spec §6.4).
func SaveLearnFile(w io.Writer, sectors []*Sector) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, MapLearnVersion); err != nil {
		return err
	}
	for _, s := range sectors {
		if _, err := fmt.Fprintf(bw, "%.6f %.6f %.6f ", s.FlatRatio, s.WaterRatio, s.ImportanceThisGame); err != nil {
			return err
		}
		for _, v := range s.AttacksPreviousGames {
			if _, err := fmt.Fprintf(bw, "%.6f ", v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ErrVersionMismatch signals a learn-file magic-string mismatch; the
// caller discards the file and starts fresh (spec §7 CacheVersionMismatch).
type ErrVersionMismatch struct{ Found string }

func (e ErrVersionMismatch) Error() string {
	return fmt.Sprintf("sector: map learn file version mismatch (found %q)", e.Found)
}

// LoadLearnFile reads back what SaveLearnFile wrote and applies the §4.C
// cross-game blending formulas as each record lands on its sector:
// importance_this_game = 0.93 * (importance_this_game + 3*importance_learned) / 4
// attacks_previous_games = (3*prev + current) / 4 * 0.9
func LoadLearnFile(r io.Reader, sectors []*Sector) error {
	br := bufio.NewReader(r)
	var version string
	if _, err := fmt.Fscanln(br, &version); err != nil {
		return fmt.Errorf("sector: read learn file version: %w", err)
	}
	if version != MapLearnVersion {
		return ErrVersionMismatch{Found: version}
	}

	for _, s := range sectors {
		var flat, water, importanceLearned float64
		var rates [5]float64
		if _, err := fmt.Fscan(br, &flat, &water, &importanceLearned); err != nil {
			return fmt.Errorf("sector (%d,%d): read header: %w", s.X, s.Y, err)
		}
		for i := range rates {
			if _, err := fmt.Fscan(br, &rates[i]); err != nil {
				return fmt.Errorf("sector (%d,%d): read attack rate %d: %w", s.X, s.Y, i, err)
			}
		}

		s.ImportanceThisGame = 0.93 * (s.ImportanceThisGame + 3*importanceLearned) / 4
		for t := range s.AttacksPreviousGames {
			current := s.AttacksThisGame[t]
			s.AttacksPreviousGames[t] = (3*rates[t] + current) / 4 * 0.9
		}
	}
	return nil
}
