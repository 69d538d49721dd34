// Command beadhub-server runs the BeadHub coordination backend.
package main

import (
	"os"

	"github.com/beadhub/beadhub/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
