package render

import (
	"fmt"
	"math"

	"github.com/gistemp/gistemp-tools/internal/gistemp"
)

// ScaleMode selects the values a color scale is computed over.
type ScaleMode string

const (
	// ScaleGlobal uses the range of the whole variable for every image.
	ScaleGlobal ScaleMode = "global"
	// ScaleYear uses the range of the twelve months of each year.
	ScaleYear ScaleMode = "year"
)

// ParseScaleMode parses a --scale value.
func ParseScaleMode(s string) (ScaleMode, error) {
	switch m := ScaleMode(s); m {
	case ScaleGlobal, ScaleYear:
		return m, nil
	}
	return "", fmt.Errorf("unknown color scale %q, want %q or %q", s, ScaleGlobal, ScaleYear)
}

// ColorScale is the value range mapped onto the color map.
type ColorScale struct {
	Min float64
	Max float64
}

func newColorScale(min, max float64, ok bool) ColorScale {
	if !ok {
		return ColorScale{Min: 0, Max: 1}
	}
	if !(max > min) {
		// The color map needs a non-empty range.
		return ColorScale{Min: min - 0.5, Max: min + 0.5}
	}
	return ColorScale{Min: min, Max: max}
}

// GlobalScale returns the range of every value of the field.
func GlobalScale(f *gistemp.Field) (ColorScale, error) {
	min, max, ok, err := f.Range(0, f.Len())
	if err != nil {
		return ColorScale{}, err
	}
	return newColorScale(min, max, ok), nil
}

// FramesScale returns the range of the values at the given time indices.
func FramesScale(f *gistemp.Field, indices []int) (ColorScale, error) {
	min, max, ok := math.Inf(1), math.Inf(-1), false
	for _, t := range indices {
		lo, hi, has, err := f.Range(t, t+1)
		if err != nil {
			return ColorScale{}, err
		}
		if has {
			min, max, ok = math.Min(min, lo), math.Max(max, hi), true
		}
	}
	return newColorScale(min, max, ok), nil
}
