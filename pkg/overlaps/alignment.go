// Package overlaps stores the overlap alignment for every edge of an
// assembly graph.
//
// An overlap record is a CIGAR-like alignment between the end of an edge's
// From sequence and the start of its To sequence, together with the number
// of bases each side consumes. The Map keys records by edge; an edge and
// its reverse complement resolve to the same record.
package overlaps

import (
	"strings"

	"github.com/rlorigro/GetBlunted/pkg/errors"
)

// Operation is one CIGAR operation.
type Operation struct {
	Length int
	Code   byte
}

// Alignment is a parsed CIGAR overlap.
type Alignment struct {
	Ops []Operation
}

// validOps are the operation codes accepted in GFA overlap CIGARs.
const validOps = "MIDNSHP=X"

// ParseCigar parses a CIGAR string. Empty strings and "*" parse as the
// zero-length alignment.
func ParseCigar(s string) (*Alignment, error) {
	a := &Alignment{}
	if s == "" || s == "*" {
		return a, nil
	}
	length := 0
	sawDigit := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			length = length*10 + int(c-'0')
			sawDigit = true
		case strings.IndexByte(validOps, c) >= 0:
			if !sawDigit {
				return nil, errors.New(errors.ErrCodeParse, "cigar %q: operation %q has no length", s, string(c))
			}
			a.Ops = append(a.Ops, Operation{Length: length, Code: c})
			length = 0
			sawDigit = false
		default:
			return nil, errors.New(errors.ErrCodeParse, "cigar %q: invalid character %q", s, string(c))
		}
	}
	if sawDigit {
		return nil, errors.New(errors.ErrCodeParse, "cigar %q: trailing length", s)
	}
	return a, nil
}

// String renders the alignment back to CIGAR form; the zero-length
// alignment renders as "*".
func (a *Alignment) String() string {
	if len(a.Ops) == 0 {
		return "*"
	}
	var b strings.Builder
	for _, op := range a.Ops {
		b.WriteString(itoa(op.Length))
		b.WriteByte(op.Code)
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ComputeLengths returns how many bases the alignment consumes on the From
// side (its suffix) and on the To side (its prefix), in input-strand
// coordinates. M, =, and X consume both sides; D and N consume only the
// From side; I and S consume only the To side.
func (a *Alignment) ComputeLengths() (fromConsumed, toConsumed int) {
	for _, op := range a.Ops {
		switch op.Code {
		case 'M', '=', 'X':
			fromConsumed += op.Length
			toConsumed += op.Length
		case 'D', 'N':
			fromConsumed += op.Length
		case 'I', 'S':
			toConsumed += op.Length
		}
	}
	return fromConsumed, toConsumed
}

// IsEmpty reports whether the alignment consumes no sequence on either
// side.
func (a *Alignment) IsEmpty() bool {
	u, v := a.ComputeLengths()
	return u == 0 && v == 0
}
