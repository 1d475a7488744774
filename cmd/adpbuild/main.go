// Package main provides the adpbuild CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/adpbuild/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
