// Package cli implements the bluntify command-line interface.
//
// The root command runs the blunting pipeline directly on a GFA file;
// `render` draws small graphs for debugging. All commands support
// --verbose (-v) for debug-level logging; loggers travel through
// context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. It is
// called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the bluntify CLI and returns an error if any command
// fails.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "bluntify <input.gfa>",
		Short:        "Bluntify rewrites overlapped assembly graphs into overlap-free ones",
		Long: `Bluntify takes an assembly graph whose adjacent nodes share sequence
(stated as CIGAR overlaps on GFA links) and rewrites it into an equivalent
graph in which adjacent nodes share nothing, for downstream tools that
assume overlap-free graphs. It writes the blunted GFA and a provenance
report mapping every output node onto intervals of the input nodes.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
		RunE: runBluntify,
	}

	root.SetVersionTemplate(fmt.Sprintf("bluntify %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	addRunFlags(root)

	root.AddCommand(newRenderCmd())

	return root
}
