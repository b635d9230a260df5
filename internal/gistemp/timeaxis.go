package gistemp

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

const dateLayout = "2006-01-02"

var (
	// ErrNoTimeAxis is returned when the file has no time coordinate.
	ErrNoTimeAxis = errors.New("no time coordinate")
	// ErrNotIncreasing is returned when the time coordinate is not strictly
	// increasing.
	ErrNotIncreasing = errors.New("time coordinate is not strictly increasing")
)

var unitSteps = map[string]time.Duration{
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"d":       24 * time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"h":       time.Hour,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"min":     time.Minute,
	"second":  time.Second,
	"seconds": time.Second,
	"s":       time.Second,
}

var refLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-1-2 15:4:5",
	"2006-1-2",
	"2006-01-02",
}

// TimeAxis is a decoded CF time coordinate.
type TimeAxis struct {
	Units string
	times []time.Time
}

// ParseUnits parses CF time units of the form "<unit> since <reference>".
func ParseUnits(units string) (time.Duration, time.Time, error) {
	unit, ref, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("time units %q: missing \"since\"", units)
	}
	step, ok := unitSteps[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("time units %q: unsupported unit %q", units, unit)
	}
	ref = strings.TrimSuffix(strings.TrimSpace(ref), " UTC")
	for _, layout := range refLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			return step, t.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("time units %q: cannot parse reference date %q", units, ref)
}

// NewTimeAxis decodes raw time offsets expressed in the given CF units.
func NewTimeAxis(units string, offsets []float64) (*TimeAxis, error) {
	step, ref, err := ParseUnits(units)
	if err != nil {
		return nil, err
	}
	ta := &TimeAxis{Units: units, times: make([]time.Time, len(offsets))}
	for i, v := range offsets {
		if ta.times[i], err = offsetTime(ref, step, v); err != nil {
			return nil, fmt.Errorf("time units %q: step %d: %w", units, i, err)
		}
		if i > 0 && !ta.times[i].After(ta.times[i-1]) {
			return nil, fmt.Errorf("%w: step %d (%s) after %s", ErrNotIncreasing, i,
				ta.times[i].Format(dateLayout), ta.times[i-1].Format(dateLayout))
		}
	}
	return ta, nil
}

// maxOffset bounds the whole steps accepted in an offset: an int64 with room
// to spare.
const maxOffset = 1 << 62

// offsetTime returns ref plus v steps. Whole days are added with AddDate and
// only the remainder within a day as a Duration, so offsets spanning
// centuries do not overflow.
func offsetTime(ref time.Time, step time.Duration, v float64) (time.Time, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxOffset {
		return time.Time{}, fmt.Errorf("offset %v out of range", v)
	}
	whole := math.Floor(v)
	perDay := int64(24 * time.Hour / step)
	n := int64(whole)
	days := n / perDay
	rem := n % perDay
	if rem < 0 {
		days, rem = days-1, rem+perDay
	}
	if days > math.MaxInt32 || days < math.MinInt32 {
		return time.Time{}, fmt.Errorf("offset %v out of range", v)
	}
	t := ref.AddDate(0, 0, int(days))
	return t.Add(time.Duration(rem)*step + time.Duration((v-whole)*float64(step))), nil
}

func decodeTimeAxis(nc api.Group) (*TimeAxis, error) {
	for _, name := range timeNames {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			continue
		}
		units, ok := attrString(vg.Attributes(), "units")
		if !ok {
			return nil, fmt.Errorf("%s: missing units attribute", name)
		}
		v, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		offsets, err := toFloat64s(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return NewTimeAxis(units, offsets)
	}
	return nil, ErrNoTimeAxis
}

// Len returns the number of time steps.
func (ta *TimeAxis) Len() int {
	return len(ta.times)
}

// At returns the i-th time step.
func (ta *TimeAxis) At(i int) time.Time {
	return ta.times[i]
}

// Times returns a copy of all time steps.
func (ta *TimeAxis) Times() []time.Time {
	return append([]time.Time(nil), ta.times...)
}

// MonthIndex returns the index of the first time step falling in the given
// calendar month.
func (ta *TimeAxis) MonthIndex(year int, month time.Month) (int, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	i := sort.Search(len(ta.times), func(i int) bool {
		return !ta.times[i].Before(first)
	})
	if i == len(ta.times) {
		return 0, false
	}
	if t := ta.times[i]; t.Year() != year || t.Month() != month {
		return 0, false
	}
	return i, true
}

// Window returns the half-open index range [begin, end) of the time steps
// whose calendar date lies within [from, to], both ends inclusive. Time of
// day is ignored on both sides of the comparison.
func (ta *TimeAxis) Window(from, to time.Time) (int, int) {
	lo := truncateDay(from)
	hi := truncateDay(to).AddDate(0, 0, 1)
	begin := sort.Search(len(ta.times), func(i int) bool {
		return !ta.times[i].Before(lo)
	})
	end := sort.Search(len(ta.times), func(i int) bool {
		return !ta.times[i].Before(hi)
	})
	if end < begin {
		end = begin
	}
	return begin, end
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
