// Package main provides the CLI for the Leapion macro workbench.
package main

import (
	"os"

	"github.com/leapstack-labs/leapion/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
