package cli

import (
	"github.com/spf13/cobra"

	"github.com/gistemp/gistemp-tools/internal/render"
)

// NewPlotCommand returns the plot_tempanomaly command.
func NewPlotCommand() *cobra.Command {
	cmd := silence(&cobra.Command{
		Use:   "plot_tempanomaly <filename>",
		Short: "Plots the temperature anomaly from the GISS Surface Temperature Analysis version 4.",
		Long: `Plots the temperature anomaly from the GISS Surface Temperature Analysis version 4.
One PNG image named <year>-<month>.png is written per month of every year
from --start up to, but not including, --end.

You will need a copy of the dataset in NetCDF format from
https://data.giss.nasa.gov/pub/gistemp/gistemp1200_GHCNv4_ERSSTv5.nc.gz`,
		Args: cobra.ExactArgs(1),
	})

	flags := cmd.Flags()
	flags.String("start", "2000", "first year to plot")
	flags.String("end", "2024", "year to stop at, not plotted itself")
	flags.String("var", "tempanomaly", "name of the (time, lat, lon) variable to plot")
	flags.String("outdir", ".", "directory the images are written to")
	flags.String("scale", string(render.ScaleGlobal), `color scale range: "global" over the whole variable or "year" over each year`)
	flags.String("index", string(render.IndexCalendar), `month lookup: "calendar" from the time coordinate or "arithmetic" from January 2000`)
	v := newConfig(cmd.Flags(), EnvPrefix)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		years, err := render.ParseYears(v.GetString("start"), v.GetString("end"))
		if err != nil {
			return err
		}
		if err := years.Validate(); err != nil {
			return err
		}
		scale, err := render.ParseScaleMode(v.GetString("scale"))
		if err != nil {
			return err
		}
		index, err := render.ParseIndexMode(v.GetString("index"))
		if err != nil {
			return err
		}
		_, err = render.Run(render.Config{
			Path:     args[0],
			Variable: v.GetString("var"),
			Years:    years,
			OutDir:   v.GetString("outdir"),
			Scale:    scale,
			Index:    index,
			Progress: cmd.OutOrStdout(),
			Logger:   newLogger(cmd),
		})
		return err
	}
	return cmd
}
