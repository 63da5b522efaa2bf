// Command ptvlineage runs lineage and hierarchy maintenance against a
// service registry database.
package main

import (
	"fmt"
	"os"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		code := cli.GetExitCode(err)
		// Findings were already written to stdout.
		if code != cli.ExitFailure {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(code)
	}
}
