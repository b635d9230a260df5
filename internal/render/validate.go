package render

import (
	"strconv"
	"strings"
)

// Supported year bounds. The start year is inclusive, the end year exclusive.
const (
	MinStartYear = 2000
	MaxStartYear = 2023
	MinEndYear   = 2001
	MaxEndYear   = 2024
)

// ValidationError reports an invalid year range. Its message is meant to be
// shown to the user as is.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func invalid(msg string) error {
	return &ValidationError{msg: msg}
}

// YearRange is the half-open range of years [Start, End) to render.
type YearRange struct {
	Start int
	End   int
}

// ParseYears parses the start and end years as given on the command line.
func ParseYears(start, end string) (YearRange, error) {
	s, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return YearRange{}, invalid("Start date must be a year, got " + strconv.Quote(start) + ".")
	}
	e, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		return YearRange{}, invalid("End date must be a year, got " + strconv.Quote(end) + ".")
	}
	return YearRange{Start: s, End: e}, nil
}

// Validate checks the range against the supported years. The checks run in a
// fixed order and the first failing one is reported.
func (r YearRange) Validate() error {
	switch {
	case r.Start >= r.End:
		return invalid("Start date must be before end date.")
	case r.Start < MinStartYear:
		return invalid("Start date must be 2000 or later.")
	case r.Start > MaxStartYear:
		return invalid("Start date must be before 2023.")
	case r.End < MinEndYear:
		return invalid("End date must be after 2001.")
	case r.End > MaxEndYear:
		return invalid("End date must be no later than 2024.")
	}
	return nil
}

// Years returns the years of the range in ascending order.
func (r YearRange) Years() []int {
	var years []int
	for y := r.Start; y < r.End; y++ {
		years = append(years, y)
	}
	return years
}
