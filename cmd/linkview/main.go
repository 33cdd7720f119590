// Command linkview inspects and mutates persisted object lists.
//
// Usage:
//
//	linkview validate ./schemas
//	linkview create --db kennel.db ./schemas Dog '{"_id":"rex","name":"Rex"}'
//	linkview exec --db kennel.db --owner alice --property dogs ./schemas push '{"_id":"rex"}'
//	linkview inspect --db kennel.db --owner alice --property dogs ./schemas
//	linkview test ./testdata/scenarios
package main

import (
	"fmt"
	"os"

	"github.com/roach88/linkview/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linkview:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
