// Command dirsum computes deterministic composite digests of directory trees.
package main

import (
	"os"

	"github.com/dirsum/dirsum/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
