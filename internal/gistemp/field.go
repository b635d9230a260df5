package gistemp

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"gonum.org/v1/gonum/mat"
)

// Field is a (time, latitude, longitude) variable with CF packing applied.
type Field struct {
	Name   string
	vg     api.VarGetter
	lat    []float64
	lon    []float64
	nt     int
	scale  float64
	offset float64
	fills  []float64
}

// Field looks up a 3-D data variable by name.
func (d *Dataset) Field(name string) (*Field, error) {
	vg, err := d.nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	dims := vg.Dimensions()
	if len(dims) != 3 {
		return nil, fmt.Errorf("variable %q: want 3 dimensions (time, lat, lon), got %v", name, dims)
	}
	if dims[1] != d.latName || dims[2] != d.lonName {
		return nil, fmt.Errorf("variable %q: dimensions %v do not match (%s, %s)",
			name, dims, d.latName, d.lonName)
	}
	f := &Field{
		Name:  name,
		vg:    vg,
		lat:   d.lat,
		lon:   d.lon,
		nt:    int(vg.Len()),
		scale: 1,
	}
	attrs := vg.Attributes()
	if v, ok := attrFloat(attrs, "scale_factor"); ok {
		f.scale = v
	}
	if v, ok := attrFloat(attrs, "add_offset"); ok {
		f.offset = v
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloat(attrs, key); ok {
			f.fills = append(f.fills, v)
		}
	}
	return f, nil
}

// Len returns the number of time steps of the field.
func (f *Field) Len() int {
	return f.nt
}

// Frame reads and unpacks the latitude by longitude slice at time index t.
func (f *Field) Frame(t int) (*Frame, error) {
	if t < 0 || t >= f.nt {
		return nil, fmt.Errorf("%s: time index %d out of range [0, %d)", f.Name, t, f.nt)
	}
	raw, err := f.vg.GetSlice(int64(t), int64(t)+1)
	if err != nil {
		return nil, fmt.Errorf("%s: read time index %d: %w", f.Name, t, err)
	}
	var data *mat.Dense
	switch raw := raw.(type) {
	case [][][]int8:
		data, err = unpack(f, raw)
	case [][][]int16:
		data, err = unpack(f, raw)
	case [][][]int32:
		data, err = unpack(f, raw)
	case [][][]float32:
		data, err = unpack(f, raw)
	case [][][]float64:
		data, err = unpack(f, raw)
	default:
		err = fmt.Errorf("unsupported variable type %T", raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: time index %d: %w", f.Name, t, err)
	}
	return &Frame{Index: t, Lat: f.lat, Lon: f.lon, Data: data}, nil
}

func unpack[T number](f *Field, raw [][][]T) (*mat.Dense, error) {
	if len(raw) != 1 || len(raw[0]) != len(f.lat) {
		return nil, fmt.Errorf("unexpected slice shape")
	}
	rows, cols := len(f.lat), len(f.lon)
	vals := make([]float64, 0, rows*cols)
	for _, row := range raw[0] {
		if len(row) != cols {
			return nil, fmt.Errorf("row has %d values, want %d", len(row), cols)
		}
		for _, v := range row {
			vals = append(vals, f.value(float64(v)))
		}
	}
	return mat.NewDense(rows, cols, vals), nil
}

func (f *Field) value(raw float64) float64 {
	for _, fill := range f.fills {
		if raw == fill {
			return math.NaN()
		}
	}
	return raw*f.scale + f.offset
}

// Range returns the minimum and maximum non-missing value over the time
// steps [begin, end). ok is false when every value is missing.
func (f *Field) Range(begin, end int) (min, max float64, ok bool, err error) {
	min, max = math.Inf(1), math.Inf(-1)
	for t := begin; t < end; t++ {
		fr, err := f.Frame(t)
		if err != nil {
			return 0, 0, false, err
		}
		lo, hi, has := fr.Range()
		if !has {
			continue
		}
		min, max, ok = math.Min(min, lo), math.Max(max, hi), true
	}
	if !ok {
		return 0, 0, false, nil
	}
	return min, max, true, nil
}
