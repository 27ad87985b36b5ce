// Package main is the entry point for the avt CLI tool.
package main

import (
	"os"

	"github.com/kstrand/autovault/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
