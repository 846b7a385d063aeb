// cmd/web/main.go
//
// adept-rest – command-line entry point.
//
// Commands
// --------
//
//	web serve     boot config, logger, DB, tracing, and the HTTP server
//	web migrate   apply every component's migrations
//	web routes    print the mounted route table
//
// Every command loads configuration first (conf/global.yaml, ADEPT_ env,
// vault: secrets) so flags only override what the file cannot know.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/yanizio/adept-rest/components/debug"
	_ "github.com/yanizio/adept-rest/components/notes"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "web",
		Short:         "Declarative REST resources over SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("root", "", "project root holding conf/ (default: discovered)")
	root.AddCommand(newServeCmd(), newMigrateCmd(), newRoutesCmd())
	return root
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
