package gistemp

import (
	"errors"
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Names of the coordinate variables. GISTEMP files use the short names; the
// long ones are accepted as well.
var (
	latNames  = []string{"lat", "latitude"}
	lonNames  = []string{"lon", "longitude"}
	timeNames = []string{"time"}
)

// ErrNoCoordinate is returned when none of the accepted names of a coordinate
// variable is present in the file.
var ErrNoCoordinate = errors.New("coordinate variable not found")

// Dataset is a gridded (time, latitude, longitude) NetCDF file opened for
// reading.
type Dataset struct {
	nc      api.Group
	path    string
	latName string
	lonName string
	lat     []float64
	lon     []float64
	times   *TimeAxis
	timeErr error
}

// Open opens a CDF or HDF5 flavoured NetCDF file. The latitude and longitude
// coordinates must be present. A missing or undecodable time coordinate is
// not an error here; it is reported by TimeAxis.
func Open(path string) (*Dataset, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	d := &Dataset{nc: nc, path: path}
	d.latName, d.lat, err = coordValues(nc, latNames)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: latitude: %w", path, err)
	}
	d.lonName, d.lon, err = coordValues(nc, lonNames)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: longitude: %w", path, err)
	}
	d.times, d.timeErr = decodeTimeAxis(nc)
	return d, nil
}

func coordValues(nc api.Group, names []string) (string, []float64, error) {
	for _, name := range names {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			continue
		}
		v, err := vg.Values()
		if err != nil {
			return name, nil, err
		}
		vals, err := toFloat64s(v)
		if err != nil {
			return name, nil, fmt.Errorf("%s: %w", name, err)
		}
		return name, vals, nil
	}
	return "", nil, fmt.Errorf("%w: tried %v", ErrNoCoordinate, names)
}

// Close closes the underlying file.
func (d *Dataset) Close() {
	d.nc.Close()
}

// Path returns the path the dataset was opened from.
func (d *Dataset) Path() string {
	return d.path
}

// Group exposes the underlying NetCDF group.
func (d *Dataset) Group() api.Group {
	return d.nc
}

// Attributes returns the dataset-level attributes in file order.
func (d *Dataset) Attributes() api.AttributeMap {
	return d.nc.Attributes()
}

// Variables lists the names of all variables in the file.
func (d *Dataset) Variables() []string {
	return d.nc.ListVariables()
}

// Latitudes returns the latitude coordinate values in file order.
func (d *Dataset) Latitudes() []float64 {
	return d.lat
}

// Longitudes returns the longitude coordinate values in file order.
func (d *Dataset) Longitudes() []float64 {
	return d.lon
}

// TimeAxis returns the decoded time coordinate or the reason it could not be
// decoded.
func (d *Dataset) TimeAxis() (*TimeAxis, error) {
	if d.timeErr != nil {
		return nil, d.timeErr
	}
	return d.times, nil
}

// Summary returns the summary information about the dataset suitable for
// logging.
func (d *Dataset) Summary() []any {
	summary := []any{
		"path", d.path,
		"vars", d.Variables(),
		"latCnt", len(d.lat),
		"lonCnt", len(d.lon),
	}
	if d.times == nil {
		return append(summary, "timeCnt", 0)
	}
	summary = append(summary, "timeCnt", d.times.Len())
	if n := d.times.Len(); n > 0 {
		summary = append(summary,
			"first", d.times.At(0).Format(dateLayout),
			"last", d.times.At(n-1).Format(dateLayout))
	}
	return summary
}
