// Command plot_tempanomaly renders one heatmap per month of the GISTEMP
// temperature anomaly.
package main

import (
	"os"

	"github.com/gistemp/gistemp-tools/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewPlotCommand(), os.Args[1:], os.Stderr))
}
