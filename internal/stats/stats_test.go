package stats

import (
	"errors"
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{name: "single value", values: []float64{4}, expected: 4},
		{name: "odd length", values: []float64{5, 1, 3}, expected: 3},
		{name: "even length averages middle pair", values: []float64{4, 1, 3, 2}, expected: 2.5},
		{name: "negative values", values: []float64{-1, -7, 2}, expected: -1},
		{name: "ties", values: []float64{2, 2, 2, 9}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Median(tt.values)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Median(%v) = %v, expected %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestMedianDoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	if _, err := Median(values); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestMedianAbsoluteDeviation(t *testing.T) {
	got, err := MedianAbsoluteDeviation([]float64{1, 3, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-2.9652) > 0.001 {
		t.Errorf("MAD = %.4f, expected 2.9652", got)
	}

	got, err = MedianAbsoluteDeviation([]float64{7, 7, 7, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("MAD of constant series = %v, expected 0", got)
	}
}

func TestEmptyInput(t *testing.T) {
	if _, err := Median(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Median(nil) error = %v, expected ErrEmptyInput", err)
	}
	if _, err := MedianAbsoluteDeviation([]float64{}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("MedianAbsoluteDeviation([]) error = %v, expected ErrEmptyInput", err)
	}
	if _, err := Mean(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Mean(nil) error = %v, expected ErrEmptyInput", err)
	}
}

func TestMean(t *testing.T) {
	got, err := Mean([]float64{2, 3, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Errorf("Mean = %v, expected 2", got)
	}
}
