// Package subset extracts a calendar-date window of a gridded NetCDF dataset
// into a new file.
package subset

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"

	"github.com/gistemp/gistemp-tools/internal/gistemp"
)

const (
	// DefaultSource is the full GISTEMP v4 dataset as distributed by GISS.
	DefaultSource = "gistemp1200_GHCNv4_ERSSTv5.nc"
	// DefaultOutput is the 21st century subset.
	DefaultOutput = "gistemp1200-21c.nc"

	timeDim = "time"
)

var (
	// DefaultWindow covers January 2000 through February 2024.
	DefaultWindow = Window{
		Start: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
	}

	// ErrInvalidWindow is returned when the window starts after it ends.
	ErrInvalidWindow = errors.New("window start is after its end")
	// ErrEmptyWindow is returned when no time step falls inside the window.
	ErrEmptyWindow = errors.New("no time steps inside window")
)

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return w.Start.Format(time.DateOnly) + ".." + w.End.Format(time.DateOnly)
}

// Result describes a written subset.
type Result struct {
	Begin, End int // index window into the source time axis
	Variables  []string
	Times      []time.Time
}

type options struct {
	logger *slog.Logger
	vars   []string
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger used to report the source and result summaries.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithVariables restricts the output to the named variables and the
// coordinate variables they are defined on.
func WithVariables(names ...string) Option {
	return func(o *options) { o.vars = names }
}

// Run writes the time steps of src whose calendar date lies within w to dst.
// Variables defined on the time dimension are sliced; all others are copied
// whole. Global and variable attributes are copied verbatim. An existing dst
// is replaced; nothing is written when the window selects no time steps.
func Run(src, dst string, w Window, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	if w.Start.After(w.End) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWindow, w)
	}

	ds, err := gistemp.Open(src)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	o.logger.Info("old dataset", ds.Summary()...)

	ta, err := ds.TimeAxis()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	begin, end := ta.Window(w.Start, w.End)
	if begin == end {
		return nil, fmt.Errorf("%w: %s in %s", ErrEmptyWindow, w, src)
	}

	names, err := selectVariables(ds.Group(), o.vars)
	if err != nil {
		return nil, err
	}

	vars := make([]api.Variable, len(names))
	for i, name := range names {
		vars[i], err = readVariable(ds.Group(), name, begin, end)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
	}
	if err := write(dst, names, vars, ds.Attributes()); err != nil {
		return nil, err
	}

	res := &Result{
		Begin:     begin,
		End:       end,
		Variables: names,
		Times:     ta.Times()[begin:end],
	}
	o.logger.Info("new dataset",
		"path", dst,
		"vars", names,
		"timeCnt", end-begin,
		"first", res.Times[0].Format(time.DateOnly),
		"last", res.Times[len(res.Times)-1].Format(time.DateOnly))
	return res, nil
}

// selectVariables returns the variables to copy in file order. With an
// explicit list, the coordinate variables of every listed variable are
// added.
func selectVariables(g api.Group, wanted []string) ([]string, error) {
	all := g.ListVariables()
	if len(wanted) == 0 {
		return all, nil
	}
	keep := make(map[string]bool)
	for _, name := range wanted {
		vg, err := g.GetVarGetter(name)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		keep[name] = true
		for _, dim := range vg.Dimensions() {
			if slices.Contains(all, dim) {
				keep[dim] = true
			}
		}
	}
	var names []string
	for _, name := range all {
		if keep[name] {
			names = append(names, name)
		}
	}
	return names, nil
}

func readVariable(g api.Group, name string, begin, end int) (api.Variable, error) {
	vg, err := g.GetVarGetter(name)
	if err != nil {
		return api.Variable{}, fmt.Errorf("variable %q: %w", name, err)
	}
	dims := vg.Dimensions()
	var values interface{}
	if len(dims) > 0 && dims[0] == timeDim {
		values, err = vg.GetSlice(int64(begin), int64(end))
	} else {
		values, err = vg.Values()
	}
	if err != nil {
		return api.Variable{}, fmt.Errorf("variable %q: %w", name, err)
	}
	return api.Variable{
		Values:     values,
		Dimensions: dims,
		Attributes: vg.Attributes(),
	}, nil
}

// write creates the output under a unique name next to dst and renames it
// into place, so a failed run leaves any previous output untouched and
// concurrent runs do not share a temporary file.
func write(dst string, names []string, vars []api.Variable, global api.AttributeMap) error {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file for %s: %w", dst, err)
	}
	tmp := f.Name()
	f.Close()
	cw, err := cdf.OpenWriter(tmp)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	fail := func(err error) error {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	for i, name := range names {
		if err := cw.AddVar(name, vars[i]); err != nil {
			cw.Close()
			return fail(fmt.Errorf("variable %q: %w", name, err))
		}
	}
	if err := cw.AddGlobalAttrs(global); err != nil {
		cw.Close()
		return fail(err)
	}
	if err := cw.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fail(err)
	}
	return nil
}
