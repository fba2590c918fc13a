// Command binpacker packs rectangular items into identical bins using
// first-fit decreasing followed by an optional local search, and writes
// the result as JSON plus optional PDF, label, spreadsheet, DXF and PNG
// layouts.
//
// Build:
//
//	go build -o binpacker ./cmd/binpacker
//
// Examples:
//
//	binpacker solve instance.txt --local-search bi --pdf
//	binpacker solve --interactive
//	binpacker compare instance.txt
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	cmd := newRootCommand()
	cmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	if err := cmd.Execute(); err != nil {
		klog.ErrorS(err, "binpacker failed")
		klog.Flush()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "binpacker",
		Short: "Pack rectangles into identical bins",
		Long: `binpacker reads a list of rectangular items and a bin size, packs the
items with first-fit decreasing on candidate points and optionally
improves the packing by relocating single items between bins.

Instances are read from the text format, CSV, Excel or DXF part lists.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.addCommonFlags(cmd.PersistentFlags())

	cmd.AddCommand(newSolveCommand(opts))
	cmd.AddCommand(newCompareCommand(opts))
	return cmd
}
