// Package gistemptest writes small synthetic GISTEMP-shaped NetCDF files for
// tests.
package gistemptest

import (
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

const (
	// TimeUnits are the units of the time coordinate, as in GISTEMP.
	TimeUnits = "days since 1800-01-01 00:00:00"
	// Fill is the raw _FillValue of tempanomaly.
	Fill int16 = 32767
	// Scale is the scale_factor of tempanomaly.
	Scale float32 = 0.01
)

var epoch = time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC)

// Options describes the fixture layout.
type Options struct {
	StartYear int // first year of the monthly time axis
	Months    int // number of monthly time steps
	Lat       int // number of latitudes, south to north
	Lon       int // number of longitudes, west to east
	NoTime    bool
}

// Defaults is a two-year grid starting January 2000.
var Defaults = Options{StartYear: 2000, Months: 24, Lat: 6, Lon: 8}

// GlobalKeys are the global attribute names written to every fixture, in
// order.
var GlobalKeys = []string{"title", "institution", "source", "Conventions", "history"}

// GlobalAttrs are the global attribute values written to every fixture.
var GlobalAttrs = map[string]interface{}{
	"title":       "GISTEMP Surface Temperature Analysis",
	"institution": "NASA Goddard Institute for Space Studies",
	"source":      "http://data.giss.nasa.gov/gistemp/",
	"Conventions": "CF-1.6",
	"history":     "synthetic fixture",
}

// Date returns the mid-month label of time step i.
func (o Options) Date(i int) time.Time {
	return time.Date(o.StartYear, time.Month(1+i), 15, 0, 0, 0, 0, time.UTC)
}

// Raw returns the packed tempanomaly value at (t, i, j). The south-west cell
// of every frame is missing.
func Raw(t, i, j int) int16 {
	if i == 0 && j == 0 {
		return Fill
	}
	return int16(t*7 + i*3 - j*2)
}

// Value returns the unpacked tempanomaly value at (t, i, j).
func Value(t, i, j int) float64 {
	return float64(Raw(t, i, j)) * float64(Scale)
}

// WriteDataset writes a fixture to path and fails the test on error.
func WriteDataset(tb testing.TB, path string, o Options) {
	tb.Helper()
	if err := write(path, o); err != nil {
		tb.Fatalf("writing fixture %s: %v", path, err)
	}
}

func write(path string, o Options) error {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return err
	}
	lat := make([]float32, o.Lat)
	for i := range lat {
		lat[i] = float32(-90 + (2*i+1)*90/o.Lat)
	}
	lon := make([]float32, o.Lon)
	for j := range lon {
		lon[j] = float32(-180 + (2*j+1)*180/o.Lon)
	}
	days := make([]int32, o.Months)
	bnds := make([][]int32, o.Months)
	for t := range days {
		first := time.Date(o.StartYear, time.Month(1+t), 1, 0, 0, 0, 0, time.UTC)
		days[t] = int32(o.Date(t).Sub(epoch).Hours() / 24)
		bnds[t] = []int32{
			int32(first.Sub(epoch).Hours() / 24),
			int32(first.AddDate(0, 1, 0).Sub(epoch).Hours() / 24),
		}
	}
	anom := make([][][]int16, o.Months)
	for t := range anom {
		anom[t] = make([][]int16, o.Lat)
		for i := range anom[t] {
			anom[t][i] = make([]int16, o.Lon)
			for j := range anom[t][i] {
				anom[t][i][j] = Raw(t, i, j)
			}
		}
	}

	vars := []struct {
		name  string
		v     interface{}
		dims  []string
		keys  []string
		attrs map[string]interface{}
	}{
		{"lat", lat, []string{"lat"}, []string{"standard_name", "units"},
			map[string]interface{}{"standard_name": "latitude", "units": "degrees_north"}},
		{"lon", lon, []string{"lon"}, []string{"standard_name", "units"},
			map[string]interface{}{"standard_name": "longitude", "units": "degrees_east"}},
		{"time", days, []string{"time"}, []string{"units", "bounds"},
			map[string]interface{}{"units": TimeUnits, "bounds": "time_bnds"}},
		{"time_bnds", bnds, []string{"time", "nv"}, nil, nil},
		{"tempanomaly", anom, []string{"time", "lat", "lon"},
			[]string{"long_name", "units", "scale_factor", "cell_methods", "_FillValue"},
			map[string]interface{}{
				"long_name":    "Surface temperature anomaly",
				"units":        "K",
				"scale_factor": Scale,
				"cell_methods": "time: mean",
				"_FillValue":   Fill,
			}},
	}
	for _, v := range vars {
		if o.NoTime && (v.name == "time" || v.name == "time_bnds") {
			continue
		}
		var attrs api.AttributeMap
		if v.keys != nil {
			om, err := util.NewOrderedMap(v.keys, v.attrs)
			if err != nil {
				return err
			}
			attrs = om
		}
		if err := cw.AddVar(v.name, api.Variable{Values: v.v, Dimensions: v.dims, Attributes: attrs}); err != nil {
			return err
		}
	}
	global, err := util.NewOrderedMap(GlobalKeys, GlobalAttrs)
	if err != nil {
		return err
	}
	if err := cw.AddGlobalAttrs(global); err != nil {
		return err
	}
	return cw.Close()
}
