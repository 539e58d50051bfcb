// Package codec converts sensor samples, points and sensor listings to and
// from the line-oriented text records stored on the medium.
package codec

import (
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"
)

// Codec formats records, stamping each line with the time read from its clock.
// A Codec has no mutable state and is safe for concurrent use.
type Codec struct {
	clock clock.Clock
}

// New creates a Codec that reads timestamps from clk.
func New(clk clock.Clock) *Codec {
	if clk == nil {
		clk = clock.New()
	}
	return &Codec{clock: clk}
}

// Default returns a Codec backed by the wall clock.
func Default() *Codec {
	return New(clock.New())
}

// NowMillis returns the current clock reading in milliseconds since epoch.
func (c *Codec) NowMillis() int64 {
	return c.clock.Now().UnixMilli()
}

// FormatFloat renders a float32 as the shortest decimal text that parses
// back to the same float32. Integral values keep a trailing ".0".
func FormatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// ParseFloat parses a field written by FormatFloat.
func ParseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}

func appendValues(b *strings.Builder, values []float32) {
	for _, v := range values {
		b.WriteByte(',')
		b.WriteString(FormatFloat(v))
	}
}
