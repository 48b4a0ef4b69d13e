// Package main provides the lumen CLI.
package main

import (
	"fmt"
	"os"

	"github.com/lumen-ml/lumen/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
