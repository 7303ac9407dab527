// Package main provides the edumetric command.
package main

import (
	"os"

	"github.com/edumetric-labs/edumetric/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
