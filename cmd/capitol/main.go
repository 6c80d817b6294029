// Command capitol runs the political career simulation.
package main

import (
	"os"

	"github.com/talgya/capitol/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
