package grid

import (
	"bytes"
	"math"
	"testing"
)

func TestNewArrayShapes(t *testing.T) {
	tests := []struct {
		name  string
		etype ElementType
		shape []int
		want  int
	}{
		{"1d float", Float32, []int{5}, 5},
		{"2d float", Float32, []int{3, 4}, 12},
		{"3d double", Float64, []int{2, 3, 4}, 24},
		{"empty dimension", Float32, []int{0, 7}, 0},
		{"short", Int16, []int{6}, 6},
		{"byte", Byte, []int{2, 2}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArray(tt.etype, tt.shape...)
			if a.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", a.Len(), tt.want)
			}
			if a.Rank() != len(tt.shape) {
				t.Errorf("Rank() = %d, want %d", a.Rank(), len(tt.shape))
			}
			if a.ElementType() != tt.etype {
				t.Errorf("ElementType() = %v, want %v", a.ElementType(), tt.etype)
			}
		})
	}
}

func TestArrayRowMajorOrder(t *testing.T) {
	a := NewArray(Float32, 2, 3)
	v := 0.0
	for x := 0; x < 2; x++ {
		for y := 0; y < 3; y++ {
			a.SetValue(v, x, y)
			v++
		}
	}
	f := a.Float32s()
	for i := 0; i < 6; i++ {
		if f[i] != float32(i) {
			t.Fatalf("flat[%d] = %v, want %d", i, f[i], i)
		}
	}
	if got := a.Value(1, 2); got != 5 {
		t.Errorf("Value(1,2) = %v, want 5", got)
	}
}

func TestArrayFillAndClone(t *testing.T) {
	a := NewArray(Float32, 4, 5)
	a.Fill(MissingData)
	for i := 0; i < a.Len(); i++ {
		if !IsSentinel(a.FlatValue(i), MissingData) {
			t.Fatalf("flat[%d] = %v not MissingData", i, a.FlatValue(i))
		}
	}
	a.SetValue(35.5, 2, 3)
	c := a.Clone()
	if !a.Equal(c) {
		t.Fatal("clone not equal to source")
	}
	c.SetValue(1, 0, 0)
	if a.Equal(c) {
		t.Fatal("mutating clone changed source comparison")
	}
}

func TestArrayNarrowing(t *testing.T) {
	a := NewArray(Int16, 2)
	a.SetValue(300.7, 0)
	if got := a.Value(0); got != 300 {
		t.Errorf("int16 narrowing got %v, want 300", got)
	}
}

func TestArrayFromData(t *testing.T) {
	arr, err := ArrayFromData([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	if err != nil {
		t.Fatalf("ArrayFromData: %v", err)
	}
	if got := arr.Value(1, 0); got != 4 {
		t.Errorf("Value(1,0) = %v, want 4", got)
	}
	if _, err := ArrayFromData([]float32{1, 2}, 2, 3); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := ArrayFromData("nope", 1); err == nil {
		t.Error("expected unsupported type error")
	}
}

func TestArrayPrintTo(t *testing.T) {
	a := NewArray(Int32, 2, 3)
	n := 0
	for x := 0; x < 2; x++ {
		for y := 0; y < 3; y++ {
			a.SetValue(float64(n), x, y)
			n++
		}
	}
	var buf bytes.Buffer
	a.PrintTo(&buf)
	want := "0 1 2\n3 4 5\n"
	if buf.String() != want {
		t.Errorf("PrintTo = %q, want %q", buf.String(), want)
	}
}

func TestIsGood(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want bool
	}{
		{"plain value", 35.5, true},
		{"zero", 0, true},
		{"missing", MissingData, false},
		{"range folded", RangeFolded, false},
		{"unavailable", DataUnavailable, false},
		{"missing within tolerance", MissingData + 5e-6, false},
		{"missing outside tolerance", MissingData + 1e-3, true},
		{"deeply negative real value", -120000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGood(tt.v); got != tt.want {
				t.Errorf("IsGood(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestSentinelSurvivesFloat32(t *testing.T) {
	// Sentinels must survive a float32 round trip within tolerance.
	for _, s := range []float64{MissingData, RangeFolded, DataUnavailable} {
		narrowed := float64(float32(s))
		if math.Abs(narrowed-s) > SentinelTolerance {
			t.Errorf("sentinel %v does not survive float32 round trip", s)
		}
		if IsGood(narrowed) {
			t.Errorf("IsGood(float32(%v)) = true", s)
		}
	}
}
