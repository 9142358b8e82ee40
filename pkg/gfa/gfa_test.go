package gfa

import (
	"bufio"
	"strings"
	"testing"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

func parse(t *testing.T, text string) *Result {
	t.Helper()
	res, err := ToHandleGraph(bufio.NewScanner(strings.NewReader(text)))
	if err != nil {
		t.Fatalf("ToHandleGraph: %v", err)
	}
	return res
}

func TestReadSimplePair(t *testing.T) {
	res := parse(t, strings.Join([]string{
		"H\tVN:Z:1.0",
		"S\tA\tACGTACGT",
		"S\tB\tACGTGGGG",
		"L\tA\t+\tB\t+\t4M",
	}, "\n"))

	if got := res.Graph.NodeCount(); got != 2 {
		t.Fatalf("NodeCount() = %d, want 2", got)
	}
	idA, ok := res.IDMap.Get("A")
	if !ok {
		t.Fatal("segment A not in id map")
	}
	idB, _ := res.IDMap.Get("B")
	if res.IDMap.Name(idA) != "A" || res.IDMap.Name(idB) != "B" {
		t.Error("id map does not round-trip names")
	}

	edge := handlegraph.Edge{
		From: handlegraph.PackHandle(idA, false),
		To:   handlegraph.PackHandle(idB, false),
	}
	if !res.Graph.HasEdge(edge) {
		t.Fatal("edge A+ -> B+ missing from graph")
	}
	u, v, err := res.Overlaps.ComputeLengths(edge)
	if err != nil {
		t.Fatalf("ComputeLengths: %v", err)
	}
	if u != 4 || v != 4 {
		t.Errorf("overlap lengths = (%d, %d), want (4, 4)", u, v)
	}

	// Each segment gets an identity path.
	for _, name := range []string{"1", "2"} {
		if !res.Graph.HasPath(name) {
			t.Errorf("identity path %q missing", name)
		}
	}
}

func TestReadOutOfOrderSegments(t *testing.T) {
	res := parse(t, strings.Join([]string{
		"L\tX\t+\tY\t-\t3M",
		"S\tY\tAACCGG",
		"S\tX\tTTGGCC",
	}, "\n"))
	if got := res.Graph.NodeCount(); got != 2 {
		t.Fatalf("NodeCount() = %d, want 2", got)
	}
	idX, _ := res.IDMap.Get("X")
	if got := string(res.Graph.Sequence(handlegraph.PackHandle(idX, false))); got != "TTGGCC" {
		t.Errorf("sequence of X = %q, want %q", got, "TTGGCC")
	}
}

func TestReadEmptyCigars(t *testing.T) {
	for _, cigar := range []string{"*", "0M"} {
		res := parse(t, strings.Join([]string{
			"S\tA\tAAAA",
			"S\tB\tCCCC",
			"L\tA\t+\tB\t+\t" + cigar,
		}, "\n"))
		idA, _ := res.IDMap.Get("A")
		idB, _ := res.IDMap.Get("B")
		edge := handlegraph.Edge{
			From: handlegraph.PackHandle(idA, false),
			To:   handlegraph.PackHandle(idB, false),
		}
		u, v, err := res.Overlaps.ComputeLengths(edge)
		if err != nil {
			t.Fatalf("cigar %q: ComputeLengths: %v", cigar, err)
		}
		if u != 0 || v != 0 {
			t.Errorf("cigar %q: lengths = (%d, %d), want (0, 0)", cigar, u, v)
		}
	}
}

func TestReadErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"truncated S", "S\tA"},
		{"truncated L", "S\tA\tAA\nS\tB\tCC\nL\tA\t+\tB\t+"},
		{"bad orientation", "S\tA\tAA\nS\tB\tCC\nL\tA\t*\tB\t+\t0M"},
		{"bad cigar", "S\tA\tAA\nS\tB\tCC\nL\tA\t+\tB\t+\t4Q"},
		{"unknown record", "Q\tstuff"},
		{"duplicate segment", "S\tA\tAA\nS\tA\tCC"},
		{"undefined segment", "S\tA\tAA\nL\tA\t+\tB\t+\t0M"},
		{"bad base", "S\tA\tAXGT"},
	}
	for _, c := range cases {
		_, err := ToHandleGraph(bufio.NewScanner(strings.NewReader(c.text)))
		if err == nil {
			t.Errorf("%s: no error", c.name)
			continue
		}
		if !errors.Is(err, errors.ErrCodeParse) {
			t.Errorf("%s: code = %v, want PARSE_ERROR", c.name, errors.GetCode(err))
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	g := handlegraph.New()
	a := g.CreateHandle([]byte("ACGT"))
	b := g.CreateHandle([]byte("GGGG"))
	g.CreateEdge(handlegraph.Edge{From: a, To: b.Flip()})

	var sb strings.Builder
	if err := Write(g, &sb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"H\tHVN:Z:1.0\n",
		"S\t1\tACGT\n",
		"S\t2\tGGGG\n",
		"L\t1\t+\t2\t-\t0M\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// The written graph parses back to the same shape.
	res, err := ToHandleGraph(bufio.NewScanner(strings.NewReader(out)))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if res.Graph.NodeCount() != 2 || res.Graph.EdgeCount() != 1 {
		t.Errorf("round trip = %d nodes %d edges, want 2 nodes 1 edge",
			res.Graph.NodeCount(), res.Graph.EdgeCount())
	}
}
