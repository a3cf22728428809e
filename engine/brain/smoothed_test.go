package brain

import "testing"

// I10: SmoothedData maintains a running average over exactly its window
// size, so once the window fills, adding a new value evicts the oldest one
// rather than growing an unbounded sum.
func TestSmoothedDataRunningAverage(t *testing.T) {
	s := NewSmoothedData(4)
	for _, v := range []float64{10, 20, 30, 40} {
		s.AddValue(v)
	}
	if got, want := s.AverageValue(), 25.0; got != want {
		t.Fatalf("average after filling window = %v, want %v", got, want)
	}

	// Window is full; the next value evicts the oldest sample (10).
	s.AddValue(50)
	if got, want := s.AverageValue(), 35.0; got != want {
		t.Fatalf("average after eviction = %v, want %v", got, want)
	}
}

func TestSmoothedDataStartsAtZero(t *testing.T) {
	s := NewSmoothedData(16)
	if s.AverageValue() != 0 {
		t.Fatalf("new SmoothedData should average 0, got %v", s.AverageValue())
	}
}
