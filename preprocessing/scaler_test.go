package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	r, c := scaled.Dims()
	if r != 4 || c != 2 {
		t.Fatalf("Expected shape (4, 2), got (%d, %d)", r, c)
	}

	// Each column should have mean 0 and population std 1
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += scaled.At(i, j)
		}
		mean := sum / float64(r)
		if math.Abs(mean) > 1e-10 {
			t.Errorf("Column %d mean should be 0, got %v", j, mean)
		}

		sumSq := 0.0
		for i := 0; i < r; i++ {
			sumSq += scaled.At(i, j) * scaled.At(i, j)
		}
		std := math.Sqrt(sumSq / float64(r))
		if math.Abs(std-1.0) > 1e-10 {
			t.Errorf("Column %d std should be 1, got %v", j, std)
		}
	}
}

func TestStandardScaler_InverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1.5, -2,
		3.0, 4,
		4.5, 10,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("Failed to inverse-transform: %v", err)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(restored.At(i, j)-X.At(i, j)) > 1e-10 {
				t.Errorf("Restored value at (%d, %d): expected %v, got %v",
					i, j, X.At(i, j), restored.At(i, j))
			}
		}
	}
}

func TestStandardScaler_ConstantFeature(t *testing.T) {
	// A constant column must not produce NaN
	X := mat.NewDense(3, 2, []float64{
		5, 1,
		5, 2,
		5, 3,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	for i := 0; i < 3; i++ {
		if v := scaled.At(i, 0); v != 0 || math.IsNaN(v) {
			t.Errorf("Constant column should scale to 0, got %v", v)
		}
	}
}

func TestStandardScaler_NotFitted(t *testing.T) {
	scaler := NewStandardScalerDefault()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	if _, err := scaler.Transform(X); err == nil {
		t.Error("Expected error when transforming without fitting")
	}
	if _, err := scaler.InverseTransform(X); err == nil {
		t.Error("Expected error when inverse-transforming without fitting")
	}
}

func TestStandardScaler_DimensionMismatch(t *testing.T) {
	scaler := NewStandardScalerDefault()
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	if err := scaler.Fit(X); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	XWide := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if _, err := scaler.Transform(XWide); err == nil {
		t.Error("Expected error for feature count mismatch")
	}
}

func TestMinMaxScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, -10,
		2, 0,
		4, 10,
		8, 30,
	})

	scaler := NewMinMaxScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	// Minimum maps to 0, maximum maps to 1
	for j := 0; j < 2; j++ {
		min, max := scaled.At(0, j), scaled.At(0, j)
		for i := 1; i < 4; i++ {
			v := scaled.At(i, j)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if math.Abs(min) > 1e-10 || math.Abs(max-1.0) > 1e-10 {
			t.Errorf("Column %d should span [0, 1], got [%v, %v]", j, min, max)
		}
	}
}

func TestMinMaxScaler_CustomRange(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 5, 10})

	scaler := NewMinMaxScaler([2]float64{-1, 1})
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	want := []float64{-1, 0, 1}
	for i, w := range want {
		if math.Abs(scaled.At(i, 0)-w) > 1e-10 {
			t.Errorf("Sample %d: expected %v, got %v", i, w, scaled.At(i, 0))
		}
	}

	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("Failed to inverse-transform: %v", err)
	}
	for i := 0; i < 3; i++ {
		if math.Abs(restored.At(i, 0)-X.At(i, 0)) > 1e-10 {
			t.Errorf("Restored sample %d: expected %v, got %v", i, X.At(i, 0), restored.At(i, 0))
		}
	}
}

func TestMinMaxScaler_InvalidRange(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	scaler := NewMinMaxScaler([2]float64{1, 0})
	if err := scaler.Fit(X); err == nil {
		t.Error("Expected error for inverted feature range")
	}
}
