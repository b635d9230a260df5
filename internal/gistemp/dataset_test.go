package gistemp_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/gistemp/gistemp-tools/internal/gistemp"
	"github.com/gistemp/gistemp-tools/internal/gistemp/gistemptest"
)

func openFixture(t *testing.T, o gistemptest.Options) *gistemp.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.nc")
	gistemptest.WriteDataset(t, path, o)
	d, err := gistemp.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestOpen(t *testing.T) {
	o := gistemptest.Defaults
	d := openFixture(t, o)

	if got := len(d.Latitudes()); got != o.Lat {
		t.Errorf("latitudes: got %d, want %d", got, o.Lat)
	}
	if got := len(d.Longitudes()); got != o.Lon {
		t.Errorf("longitudes: got %d, want %d", got, o.Lon)
	}
	lat := d.Latitudes()
	for i := 1; i < len(lat); i++ {
		if lat[i] <= lat[i-1] {
			t.Fatalf("latitudes not ascending: %v", lat)
		}
	}
	ta, err := d.TimeAxis()
	if err != nil {
		t.Fatal(err)
	}
	if ta.Len() != o.Months {
		t.Fatalf("time steps: got %d, want %d", ta.Len(), o.Months)
	}
	for i := 0; i < ta.Len(); i++ {
		if !ta.At(i).Equal(o.Date(i)) {
			t.Errorf("time %d: got %v, want %v", i, ta.At(i), o.Date(i))
		}
	}
	keys := d.Attributes().Keys()
	if len(keys) != len(gistemptest.GlobalKeys) {
		t.Fatalf("global attributes: got %v, want %v", keys, gistemptest.GlobalKeys)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := gistemp.Open(filepath.Join(t.TempDir(), "missing.nc"))
	if err == nil {
		t.Fatal("expected error opening a missing file")
	}
}

func TestTimeAxisMissing(t *testing.T) {
	o := gistemptest.Defaults
	o.NoTime = true
	d := openFixture(t, o)
	if _, err := d.TimeAxis(); !errors.Is(err, gistemp.ErrNoTimeAxis) {
		t.Fatalf("got %v, want %v", err, gistemp.ErrNoTimeAxis)
	}
}

func TestFieldFrame(t *testing.T) {
	o := gistemptest.Defaults
	d := openFixture(t, o)
	f, err := d.Field("tempanomaly")
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != o.Months {
		t.Fatalf("field length: got %d, want %d", f.Len(), o.Months)
	}
	const step = 13
	fr, err := f.Frame(step)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := fr.Data.Dims()
	if rows != o.Lat || cols != o.Lon {
		t.Fatalf("dims: got %dx%d, want %dx%d", rows, cols, o.Lat, o.Lon)
	}
	if v := fr.Data.At(0, 0); !math.IsNaN(v) {
		t.Errorf("fill value decoded as %v, want NaN", v)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if i == 0 && j == 0 {
				continue
			}
			want := gistemptest.Value(step, i, j)
			if got := fr.Data.At(i, j); math.Abs(got-want) > 1e-6 {
				t.Errorf("(%d,%d): got %v, want %v", i, j, got, want)
			}
		}
	}

	if _, err := f.Frame(o.Months); err == nil {
		t.Error("expected error for out of range time index")
	}
}

func TestFieldMissing(t *testing.T) {
	d := openFixture(t, gistemptest.Defaults)
	if _, err := d.Field("nosuchvar"); err == nil {
		t.Fatal("expected error for an absent variable")
	}
	if _, err := d.Field("time_bnds"); err == nil {
		t.Fatal("expected error for a variable that is not 3-D")
	}
}

func TestFrameFlip(t *testing.T) {
	d := openFixture(t, gistemptest.Defaults)
	f, err := d.Field("tempanomaly")
	if err != nil {
		t.Fatal(err)
	}
	fr, err := f.Frame(0)
	if err != nil {
		t.Fatal(err)
	}
	flipped := fr.Flip()
	rows, cols := fr.Data.Dims()
	if flipped.Lat[0] != fr.Lat[rows-1] {
		t.Errorf("first latitude after flip: got %v, want %v", flipped.Lat[0], fr.Lat[rows-1])
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			a, b := fr.Data.At(i, j), flipped.Data.At(rows-1-i, j)
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				t.Fatalf("(%d,%d): got %v, want %v", rows-1-i, j, b, a)
			}
		}
	}
	if fr.Lat[0] > fr.Lat[rows-1] {
		t.Error("flip modified the source frame")
	}
}

func TestFieldRange(t *testing.T) {
	o := gistemptest.Defaults
	d := openFixture(t, o)
	f, err := d.Field("tempanomaly")
	if err != nil {
		t.Fatal(err)
	}
	min, max, ok, err := f.Range(0, 12)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("range reported no values")
	}
	// Raw grows with t and i and shrinks with j.
	wantMin := gistemptest.Value(0, 0, o.Lon-1)
	wantMax := gistemptest.Value(11, o.Lat-1, 0)
	if math.Abs(min-wantMin) > 1e-6 || math.Abs(max-wantMax) > 1e-6 {
		t.Errorf("range: got [%v, %v], want [%v, %v]", min, max, wantMin, wantMax)
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		units   string
		step    time.Duration
		ref     time.Time
		wantErr bool
	}{
		{"days since 1800-01-01 00:00:00", 24 * time.Hour, time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"hours since 1900-01-01", time.Hour, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"seconds since 1970-01-01T00:00:00Z", time.Second, time.Unix(0, 0).UTC(), false},
		{"days since 1800-1-1 0:0:0", 24 * time.Hour, time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"fortnights since 1800-01-01", 0, time.Time{}, true},
		{"days", 0, time.Time{}, true},
		{"days since yesterday", 0, time.Time{}, true},
	}
	for _, tt := range tests {
		step, ref, err := gistemp.ParseUnits(tt.units)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: error %v, wantErr %v", tt.units, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if step != tt.step || !ref.Equal(tt.ref) {
			t.Errorf("%q: got (%v, %v), want (%v, %v)", tt.units, step, ref, tt.step, tt.ref)
		}
	}
}

func TestTimeAxisNotIncreasing(t *testing.T) {
	_, err := gistemp.NewTimeAxis("days since 2000-01-01", []float64{0, 31, 31})
	if !errors.Is(err, gistemp.ErrNotIncreasing) {
		t.Fatalf("got %v, want %v", err, gistemp.ErrNotIncreasing)
	}
}

func TestTimeAxisOldReference(t *testing.T) {
	tests := []struct {
		units  string
		offset float64
		want   time.Time
	}{
		{"days since 0001-01-01 00:00:00", 730133, time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"days since 1700-01-01", 109572, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"days since 1700-01-01", 109572.5, time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"hours since 0001-01-01", 730133 * 24, time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"seconds since 1970-01-01", -86400 * 365 * 400, time.Date(1570, 4, 8, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		ta, err := gistemp.NewTimeAxis(tt.units, []float64{tt.offset})
		if err != nil {
			t.Errorf("%q %v: %v", tt.units, tt.offset, err)
			continue
		}
		if got := ta.At(0); !got.Equal(tt.want) {
			t.Errorf("%q %v: got %v, want %v", tt.units, tt.offset, got, tt.want)
		}
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), 1e30} {
		if _, err := gistemp.NewTimeAxis("days since 1800-01-01", []float64{v}); err == nil {
			t.Errorf("offset %v: expected error", v)
		}
	}
}

func TestTimeAxisWindow(t *testing.T) {
	// Mid-month labels from January 2000 to December 2001.
	offsets := make([]float64, 24)
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range offsets {
		offsets[i] = time.Date(2000, time.Month(1+i), 15, 0, 0, 0, 0, time.UTC).Sub(ref).Hours() / 24
	}
	ta, err := gistemp.NewTimeAxis("days since 2000-01-01", offsets)
	if err != nil {
		t.Fatal(err)
	}
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name       string
		from, to   time.Time
		begin, end int
	}{
		{"all", day(1999, 1, 1), day(2030, 1, 1), 0, 24},
		{"first year", day(2000, 1, 1), day(2000, 12, 31), 0, 12},
		{"inclusive bounds", day(2000, 3, 15), day(2000, 5, 15), 2, 5},
		{"exclusive of neighbours", day(2000, 3, 16), day(2000, 5, 14), 3, 4},
		{"before", day(1990, 1, 1), day(1990, 12, 31), 0, 0},
		{"after", day(2005, 1, 1), day(2005, 12, 31), 24, 24},
		{"reversed", day(2001, 1, 1), day(2000, 1, 1), 12, 12},
	}
	for _, tt := range tests {
		begin, end := ta.Window(tt.from, tt.to)
		if begin != tt.begin || end != tt.end {
			t.Errorf("%s: got [%d, %d), want [%d, %d)", tt.name, begin, end, tt.begin, tt.end)
		}
	}

	if i, ok := ta.MonthIndex(2001, time.March); !ok || i != 14 {
		t.Errorf("MonthIndex(2001, March) = %d, %v; want 14, true", i, ok)
	}
	if _, ok := ta.MonthIndex(2002, time.January); ok {
		t.Error("MonthIndex found a month past the end of the axis")
	}
}
