// logtriage - Log Error Triage Tool
//
// logtriage reads log files in a single pass and reports error counts,
// recurring messages, an hourly histogram and recommendations.
package main

import (
	"os"

	"github.com/ccollicutt/logtriage/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
