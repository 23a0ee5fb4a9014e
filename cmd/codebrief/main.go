// Package main is the entry point for the codebrief CLI tool.
package main

import (
	"os"

	"github.com/codebrief/codebrief/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
