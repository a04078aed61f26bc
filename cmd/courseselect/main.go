// @MX:ANCHOR: [AUTO] main is the entry point of the courseselect binary; it exits 1 on error.
// @MX:REASON: [AUTO] the only executable entry point; delegates to cli.Execute
package main

import (
	"os"

	"github.com/hycracing/courseselect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
