// Package main provides the runlens command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/runlens/internal/cli"

	// Register database adapters
	_ "github.com/leapstack-labs/runlens/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/runlens/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/runlens/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
