package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gistemp/gistemp-tools/internal/gistemp"
)

// IndexMode selects how a (year, month) pair is mapped to a time index.
type IndexMode string

const (
	// IndexCalendar looks months up in the file's own time coordinate and
	// falls back to IndexArithmetic when the file has none.
	IndexCalendar IndexMode = "calendar"
	// IndexArithmetic assumes the time axis starts in January 2000.
	IndexArithmetic IndexMode = "arithmetic"
)

// BaseYear is the first year of the time axis assumed by IndexArithmetic.
const BaseYear = 2000

// ParseIndexMode parses an --index value.
func ParseIndexMode(s string) (IndexMode, error) {
	switch m := IndexMode(s); m {
	case IndexCalendar, IndexArithmetic:
		return m, nil
	}
	return "", fmt.Errorf("unknown index mode %q, want %q or %q", s, IndexCalendar, IndexArithmetic)
}

// ErrMonthNotFound is returned when a month to render is not on the time
// axis.
var ErrMonthNotFound = errors.New("month not found on time axis")

type monthIndexer func(year int, month time.Month) (int, error)

func arithmeticIndex(year int, month time.Month) (int, error) {
	return (year-BaseYear)*12 + int(month-time.January), nil
}

func calendarIndex(ta *gistemp.TimeAxis) monthIndexer {
	return func(year int, month time.Month) (int, error) {
		i, ok := ta.MonthIndex(year, month)
		if !ok {
			return 0, fmt.Errorf("%w: %d-%02d", ErrMonthNotFound, year, int(month))
		}
		return i, nil
	}
}

// Config describes a rendering run.
type Config struct {
	Path     string // dataset file
	Variable string
	Years    YearRange
	OutDir   string
	Scale    ScaleMode
	Index    IndexMode
	Renderer *Renderer
	Progress io.Writer // receives one "<year>-<month>" line per image
	Logger   *slog.Logger
}

// FileName returns the name of the image for a year and month.
func FileName(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d.png", year, int(month))
}

// Run validates the year range, then renders one image per month of every
// year in the range. It returns the paths of the images written.
func Run(cfg Config) ([]string, error) {
	if err := cfg.Years.Validate(); err != nil {
		return nil, err
	}
	if cfg.Renderer == nil {
		cfg.Renderer = NewRenderer()
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Scale == "" {
		cfg.Scale = ScaleGlobal
	}
	if cfg.Index == "" {
		cfg.Index = IndexCalendar
	}

	ds, err := gistemp.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	cfg.Logger.Info("dataset summary", ds.Summary()...)

	field, err := ds.Field(cfg.Variable)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Path, err)
	}

	var index monthIndexer = arithmeticIndex
	if cfg.Index == IndexCalendar {
		ta, err := ds.TimeAxis()
		if err != nil {
			cfg.Logger.Warn("no usable time axis, assuming it starts in January 2000", "err", err)
		} else {
			index = calendarIndex(ta)
		}
	}

	var scale ColorScale
	if cfg.Scale == ScaleGlobal {
		if scale, err = GlobalScale(field); err != nil {
			return nil, err
		}
		cfg.Logger.Info("color scale", "min", scale.Min, "max", scale.Max)
	}

	var written []string
	for _, year := range cfg.Years.Years() {
		indices := make([]int, 12)
		for m := range indices {
			if indices[m], err = index(year, time.Month(m+1)); err != nil {
				return written, err
			}
		}
		if cfg.Scale == ScaleYear {
			if scale, err = FramesScale(field, indices); err != nil {
				return written, err
			}
			cfg.Logger.Info("color scale", "year", year, "min", scale.Min, "max", scale.Max)
		}
		for m, t := range indices {
			month := time.Month(m + 1)
			fmt.Fprintf(cfg.Progress, "%d-%d\n", year, m+1)
			path := filepath.Join(cfg.OutDir, FileName(year, month))
			if err := renderMonth(cfg.Renderer, field, t, path, fmt.Sprintf("%d-%02d", year, m+1), scale); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func renderMonth(r *Renderer, field *gistemp.Field, t int, path, title string, scale ColorScale) error {
	fr, err := field.Frame(t)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.RenderFrame(f, fr.Flip(), title, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
