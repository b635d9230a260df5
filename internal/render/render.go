// Package render draws monthly heatmaps of a gridded variable.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/gistemp/gistemp-tools/internal/gistemp"
)

// Renderer draws frames as PNG heatmaps with a colorbar. Every call to
// RenderFrame draws onto a fresh canvas, so a Renderer holds no drawing
// state between images.
type Renderer struct {
	Width    vg.Length
	Height   vg.Length
	DPI      int
	BarWidth vg.Length // width of the colorbar panel on the right
	Colors   int       // number of palette entries
	ColorMap func() palette.ColorMap
	Missing  color.Color // fill for missing values
}

// NewRenderer returns a renderer producing 640x480 pixel images.
func NewRenderer() *Renderer {
	return &Renderer{
		Width:    6.4 * vg.Inch,
		Height:   4.8 * vg.Inch,
		DPI:      100,
		BarWidth: 0.9 * vg.Inch,
		Colors:   256,
		ColorMap: func() palette.ColorMap { return moreland.SmoothBlueRed() },
		Missing:  color.Transparent,
	}
}

// ErrNotNorthUp is returned by RenderFrame for a frame whose first row is
// not its northernmost latitude.
var ErrNotNorthUp = errors.New("frame is not north-up")

// raster presents a north-up frame to the heatmap. Heatmap row r is drawn at
// Y(r), which must ascend, so raster rows are read from the bottom.
type raster struct {
	fr *gistemp.Frame
}

func (g raster) Dims() (c, r int) {
	r, c = g.fr.Data.Dims()
	return c, r
}

func (g raster) Z(c, r int) float64 {
	rows, _ := g.fr.Data.Dims()
	return g.fr.Data.At(rows-1-r, c)
}

func (g raster) X(c int) float64 {
	return g.fr.Lon[c]
}

func (g raster) Y(r int) float64 {
	return g.fr.Lat[len(g.fr.Lat)-1-r]
}

// RenderFrame writes a PNG heatmap of a north-up frame, as returned by
// gistemp.Frame.Flip, to w, colored over the fixed range s.
func (r *Renderer) RenderFrame(w io.Writer, fr *gistemp.Frame, title string, s ColorScale) error {
	if n := len(fr.Lat); n > 1 && fr.Lat[0] < fr.Lat[n-1] {
		return fmt.Errorf("render %q: %w", title, ErrNotNorthUp)
	}
	cmap := r.ColorMap()
	cmap.SetMax(s.Max)
	cmap.SetMin(s.Min)

	heat := plotter.NewHeatMap(raster{fr: fr}, cmap.Palette(r.Colors))
	heat.Min, heat.Max = s.Min, s.Max
	heat.NaN = r.Missing

	p := plot.New()
	p.Title.Text = title
	p.Add(heat)

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})
	bar.HideX()
	bar.Y.Padding = 0

	img := vgimg.NewWith(vgimg.UseWH(r.Width, r.Height), vgimg.UseDPI(r.DPI))
	dc := draw.New(img)
	p.Draw(draw.Crop(dc, 0, -r.BarWidth, 0, 0))
	bar.Draw(draw.Crop(dc, r.Width-r.BarWidth, 0, 0, 0))

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode %q: %w", title, err)
	}
	return nil
}
