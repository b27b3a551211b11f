// Command estimator runs the conflict detector and the pricing engine on
// JSON files without a server.
package main

import (
	"os"

	"github.com/warp/panel-estimator/cli"
)

func main() {
	os.Exit(cli.Execute())
}
