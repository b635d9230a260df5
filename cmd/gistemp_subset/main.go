// Command gistemp_subset writes a calendar-date window of the GISTEMP dataset
// to a new NetCDF file.
package main

import (
	"os"

	"github.com/gistemp/gistemp-tools/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewSubsetCommand(), os.Args[1:], os.Stderr))
}
