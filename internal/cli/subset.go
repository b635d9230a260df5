package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gistemp/gistemp-tools/internal/fetch"
	"github.com/gistemp/gistemp-tools/internal/subset"
)

// NewSubsetCommand returns the gistemp_subset command. Run without flags it
// writes the 21st century subset of the distributed GISTEMP file.
func NewSubsetCommand() *cobra.Command {
	cmd := silence(&cobra.Command{
		Use:   "gistemp_subset",
		Short: "Creates a subset of the GISS Surface Temperature Analysis version 4 dataset.",
		Long: `Creates a subset of just the 21st century data of the GISS Surface
Temperature Analysis version 4 dataset. Time steps are selected by calendar
date; both ends of the window are inclusive. Dataset attributes are copied
unchanged. The original dataset can be fetched with "gistemp_subset fetch".`,
		Args: cobra.NoArgs,
	})

	flags := cmd.Flags()
	flags.String("in", subset.DefaultSource, "source dataset")
	flags.String("out", subset.DefaultOutput, "output dataset, replaced if it exists")
	flags.String("from", subset.DefaultWindow.Start.Format(time.DateOnly), "first date of the window (YYYY-MM-DD)")
	flags.String("to", subset.DefaultWindow.End.Format(time.DateOnly), "last date of the window (YYYY-MM-DD)")
	flags.StringSlice("vars", nil, "variables to copy along with their coordinates (default all)")
	v := newConfig(cmd.Flags(), EnvPrefix)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		from, err := parseDate("from", v.GetString("from"))
		if err != nil {
			return err
		}
		to, err := parseDate("to", v.GetString("to"))
		if err != nil {
			return err
		}
		opts := []subset.Option{subset.WithLogger(newLogger(cmd))}
		if vars := v.GetStringSlice("vars"); len(vars) > 0 {
			opts = append(opts, subset.WithVariables(vars...))
		}
		_, err = subset.Run(v.GetString("in"), v.GetString("out"), subset.Window{Start: from, End: to}, opts...)
		return err
	}

	cmd.AddCommand(newFetchCommand())
	return cmd
}

func parseDate(flag, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %q is not a YYYY-MM-DD date", flag, s)
	}
	return t, nil
}

func newFetchCommand() *cobra.Command {
	cmd := silence(&cobra.Command{
		Use:   "fetch",
		Short: "Downloads and decompresses the GISTEMP dataset.",
		Args:  cobra.NoArgs,
	})

	flags := cmd.Flags()
	flags.String("url", fetch.DefaultURL, "location of the gzipped dataset")
	flags.String("out", subset.DefaultSource, "where to write the decompressed dataset")
	flags.Duration("timeout", 10*time.Minute, "overall download timeout, 0 for none")
	v := newConfig(cmd.Flags(), EnvPrefix+"_FETCH")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cli := fetch.NewClient(newLogger(cmd), v.GetDuration("timeout"))
		_, err := cli.Download(cmd.Context(), v.GetString("url"), v.GetString("out"))
		return err
	}
	return cmd
}
