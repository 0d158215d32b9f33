package similarity

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, expected: 1},
		{name: "scaled", a: []float64{1, 2, 3}, b: []float64{2, 4, 6}, expected: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, expected: 0},
		{name: "opposite", a: []float64{1, 1}, b: []float64{-1, -1}, expected: -1},
		{name: "mismatched lengths", a: []float64{1, 2}, b: []float64{1, 2, 3}, expected: 0},
		{name: "zero left vector", a: []float64{0, 0}, b: []float64{1, 1}, expected: 0},
		{name: "zero right vector", a: []float64{1, 1}, b: []float64{0, 0}, expected: 0},
		{name: "both empty", a: nil, b: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := []float64{0.3, 1.2, 0.05, 4.1}
	b := []float64{0.1, 0.9, 0.3, 3.2}
	if Cosine(a, b) != Cosine(b, a) {
		t.Error("Cosine is not symmetric")
	}
}
