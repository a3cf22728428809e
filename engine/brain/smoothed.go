// Package brain owns base-sector bookkeeping, resource/threat smoothing
// and the combat-unit-mix decisions spec §4.H assigns to AAIBrain: which
// sectors count as "the base", rally points, construction urgencies and
// what to roll off the production queue next.
package brain

// SmoothedData is an O(1) running average over a fixed-size ring buffer,
// grounded on aidef.h's SmoothedData class. AddValue evicts the oldest
// sample and folds the delta into the running average instead of
// re-summing the whole window every call.
type SmoothedData struct {
	values      []float64
	averageValue float64
	nextIndex   int
}

// NewSmoothedData returns a zeroed smoother with the given window size.
func NewSmoothedData(smoothingLength int) *SmoothedData {
	return &SmoothedData{values: make([]float64, smoothingLength)}
}

// AddValue folds a new sample into the running average.
func (s *SmoothedData) AddValue(value float64) {
	s.averageValue += (value - s.values[s.nextIndex]) / float64(len(s.values))
	s.values[s.nextIndex] = value
	s.nextIndex++
	if s.nextIndex >= len(s.values) {
		s.nextIndex = 0
	}
}

// AverageValue returns the current running average.
func (s *SmoothedData) AverageValue() float64 {
	return s.averageValue
}

// incomeSamplePoints is spec §3/§4.H's INCOME_SAMPLE_POINTS constant: the
// ring buffer width for every resource smoother Brain owns.
const incomeSamplePoints = 16

// statisticalData tracks running min/max/avg over a batch of samples,
// grounded on AAIUnitStatistics.h's StatisticalData, used by BuildUnits
// to normalise attacked-by/spotted/defence values into [0,1] deviations.
type statisticalData struct {
	minValue, maxValue, avgValue float64
	valueRange                   float64
	dataPoints                   int
}

func (d *statisticalData) AddValue(value float64) {
	if value < d.minValue || d.dataPoints == 0 {
		d.minValue = value
	}
	if value > d.maxValue {
		d.maxValue = value
	}
	d.avgValue += value
	d.dataPoints++
}

func (d *statisticalData) Finalize() {
	if d.dataPoints > 0 {
		d.avgValue /= float64(d.dataPoints)
	}
	if d.dataPoints > 1 {
		d.valueRange = d.maxValue - d.minValue
		if d.valueRange < 0.00001 {
			d.valueRange = 0
		}
	}
}

// NormalizedDeviationFromMax returns (max-value)/range, or 0 if the batch
// had no meaningful spread.
func (d *statisticalData) NormalizedDeviationFromMax(value float64) float64 {
	if d.valueRange != 0 {
		return (d.maxValue - value) / d.valueRange
	}
	return 0
}

// NormalizedDeviationFromMin returns (value-min)/range, or 0 if the batch
// had no meaningful spread.
func (d *statisticalData) NormalizedDeviationFromMin(value float64) float64 {
	if d.valueRange != 0 {
		return (value - d.minValue) / d.valueRange
	}
	return 0
}
