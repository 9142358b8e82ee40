// Package render draws handle graphs for debugging.
//
// Assembly subgraphs small enough to eyeball convert to Graphviz DOT and
// render to SVG or PNG. This is diagnostic tooling; nothing in the
// pipeline depends on it.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// Options configures DOT conversion.
type Options struct {
	// MaxLabelBases truncates node sequence labels; zero means 12.
	MaxLabelBases int
}

// ToDOT converts a handle graph to Graphviz DOT. Nodes are labeled with
// their id and (possibly truncated) sequence; edge heads and tails carry
// orientation marks.
func ToDOT(g *handlegraph.Graph, opts Options) string {
	maxBases := opts.MaxLabelBases
	if maxBases <= 0 {
		maxBases = 12
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\"];\n")
	buf.WriteString("\n")

	g.ForEachHandle(func(h handlegraph.Handle) bool {
		seq := string(g.Sequence(h))
		if len(seq) > maxBases {
			seq = seq[:maxBases] + "…"
		}
		fmt.Fprintf(&buf, "  %d [label=\"%d\\n%s\"];\n", h.ID(), h.ID(), seq)
		return true
	})

	buf.WriteString("\n")
	g.ForEachEdge(func(e handlegraph.Edge) bool {
		fmt.Fprintf(&buf, "  %d -> %d [taillabel=%q, headlabel=%q];\n",
			e.From.ID(), e.To.ID(), orientMark(e.From), orientMark(e.To))
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func orientMark(h handlegraph.Handle) string {
	if h.IsReverse() {
		return "-"
	}
	return "+"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatFromPath infers the render format from a file extension; empty
// means DOT text.
func FormatFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".svg"):
		return "svg"
	case strings.HasSuffix(path, ".png"):
		return "png"
	case strings.HasSuffix(path, ".dot"):
		return "dot"
	}
	return ""
}
