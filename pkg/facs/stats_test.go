package facs

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd", []float64{1, 3, 2}, 2},
		{"even", []float64{1, 4, 3, 2}, 2.5},
		{"negative", []float64{-5, -1, -3}, -3},
		{"duplicates", []float64{2, 2, 2, 9}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Median reordered its input: %v", values)
	}
}

func TestRobustStats(t *testing.T) {
	// median 2, deviations [1,1,0], MAD 1
	stats := RobustStats([]float64{1, 2, 3})
	if stats.Median != 2 {
		t.Errorf("Median = %v, want 2", stats.Median)
	}
	if math.Abs(stats.Sigma-1.4826) > 1e-4 {
		t.Errorf("Sigma = %v, want 1.4826", stats.Sigma)
	}
}

func TestRobustStats_SigmaFloor(t *testing.T) {
	stats := RobustStats([]float64{5, 5, 5, 5})
	if stats.Sigma != minSigma {
		t.Errorf("Sigma = %v, want floor %v", stats.Sigma, minSigma)
	}

	stats = RobustStats(nil)
	if stats.Median != 0 || stats.Sigma != minSigma {
		t.Errorf("RobustStats(nil) = %+v, want {0 %v}", stats, minSigma)
	}
}

func TestRobustStats_OutlierResistant(t *testing.T) {
	clean := RobustStats([]float64{10, 11, 12, 11, 10})
	dirty := RobustStats([]float64{10, 11, 12, 11, 1000})
	if clean.Median != dirty.Median {
		t.Errorf("outlier moved median: %v vs %v", clean.Median, dirty.Median)
	}
	if clean.Sigma != dirty.Sigma {
		t.Errorf("outlier moved sigma: %v vs %v", clean.Sigma, dirty.Sigma)
	}
}
