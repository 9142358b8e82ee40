package gfa

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// WriteFile writes the graph as GFA 1.0 to path. Every link is emitted
// with a 0M overlap: callers write blunted graphs.
func WriteFile(g *handlegraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()
	return Write(g, f)
}

// Write writes the graph as GFA 1.0 to w.
func Write(g *handlegraph.Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "H\tHVN:Z:1.0\n")
	g.ForEachHandle(func(h handlegraph.Handle) bool {
		fmt.Fprintf(bw, "S\t%d\t%s\n", h.ID(), g.Sequence(h))
		return true
	})
	g.ForEachEdge(func(e handlegraph.Edge) bool {
		fmt.Fprintf(bw, "L\t%d\t%s\t%d\t%s\t0M\n",
			e.From.ID(), reversalMark(e.From),
			e.To.ID(), reversalMark(e.To))
		return true
	})
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write GFA")
	}
	return nil
}

func reversalMark(h handlegraph.Handle) string {
	if h.IsReverse() {
		return "-"
	}
	return "+"
}
