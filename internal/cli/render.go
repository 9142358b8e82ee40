package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlorigro/GetBlunted/pkg/gfa"
	"github.com/rlorigro/GetBlunted/pkg/render"
)

// newRenderCmd creates the diagnostic render command: it draws a GFA graph
// as DOT, SVG, or PNG. Useful for eyeballing small graphs before and after
// blunting.
func newRenderCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <input.gfa>",
		Short: "Draw a GFA graph for debugging",
		Long: `Render converts a GFA graph to Graphviz DOT and optionally renders it
to SVG or PNG (inferred from the output extension). With no output flag
the DOT text goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			res, err := gfa.ReadFile(args[0])
			if err != nil {
				return err
			}
			dot := render.ToDOT(res.Graph, render.Options{})

			if output == "" {
				fmt.Print(dot)
				return nil
			}

			var data []byte
			switch render.FormatFromPath(output) {
			case "svg":
				data, err = render.RenderSVG(dot)
			case "png":
				data, err = render.RenderPNG(dot)
			case "dot", "":
				data = []byte(dot)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			logger.Info("rendered graph", "path", output,
				"nodes", res.Graph.NodeCount(), "edges", res.Graph.EdgeCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .svg, or .png); stdout when omitted")
	return cmd
}
