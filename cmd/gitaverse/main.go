// Command gitaverse answers questions with verses from the Bhagavad Gita.
package main

import (
	"os"

	"github.com/kailas-cloud/gitaverse/cmd/gitaverse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
