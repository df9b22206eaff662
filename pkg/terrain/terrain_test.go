package terrain

import (
	"testing"
)

func TestHeightfieldDeterministic(t *testing.T) {
	a := NewHeightfield(42)
	b := NewHeightfield(42)

	points := [][2]float64{{0, 0}, {50, -30}, {-90, 90}, {123.4, -567.8}}
	for _, p := range points {
		ha := a.HeightAt(p[0], p[1])
		hb := b.HeightAt(p[0], p[1])
		if ha != hb {
			t.Errorf("Same seed produced different heights at (%f, %f): %f vs %f", p[0], p[1], ha, hb)
		}
	}
}

func TestHeightfieldSeedVariation(t *testing.T) {
	a := NewHeightfield(1)
	b := NewHeightfield(2)

	same := true
	for x := -100.0; x <= 100; x += 25 {
		for z := -100.0; z <= 100; z += 25 {
			if a.HeightAt(x, z) != b.HeightAt(x, z) {
				same = false
			}
		}
	}
	if same {
		t.Error("Different seeds produced identical terrain")
	}
}

func TestHeightfieldNonNegative(t *testing.T) {
	hf := NewHeightfield(7)

	for x := -200.0; x <= 200; x += 17 {
		for z := -200.0; z <= 200; z += 17 {
			if h := hf.HeightAt(x, z); h < 0 {
				t.Errorf("Negative elevation %f at (%f, %f)", h, x, z)
			}
		}
	}
}

func TestFlat(t *testing.T) {
	f := Flat{Elevation: 5}
	if h := f.HeightAt(100, -100); h != 5 {
		t.Errorf("Expected elevation 5, got %f", h)
	}
}
