package gistemp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Frame is a single time step of a field. Row i of Data holds the values at
// Lat[i], column j the values at Lon[j]. Missing values are NaN.
type Frame struct {
	Index int
	Lat   []float64
	Lon   []float64
	Data  *mat.Dense
}

// Flip returns a copy of the frame with the latitude axis reversed, so that
// row 0 holds the northernmost latitude when the file stores them south to
// north.
func (fr *Frame) Flip() *Frame {
	rows, cols := fr.Data.Dims()
	flipped := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		flipped.SetRow(rows-1-i, fr.Data.RawRowView(i))
	}
	lat := append([]float64(nil), fr.Lat...)
	floats.Reverse(lat)
	return &Frame{Index: fr.Index, Lat: lat, Lon: fr.Lon, Data: flipped}
}

// Range returns the minimum and maximum non-NaN values of the frame.
func (fr *Frame) Range() (min, max float64, ok bool) {
	rows, cols := fr.Data.Dims()
	vals := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for _, v := range fr.Data.RawRowView(i) {
			if !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return 0, 0, false
	}
	return floats.Min(vals), floats.Max(vals), true
}
