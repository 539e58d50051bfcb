package models

// Point is a named 2-D coordinate.
type Point struct {
	Name string  `json:"name"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
}

// Coords returns the coordinate pair in the slice form the codec writes.
func (p Point) Coords() []float32 {
	return []float32{p.X, p.Y}
}

// PointMap maps a point name to its coordinate pair.
type PointMap map[string][2]float32

// LineStatus is the outcome of parsing one line of a point file.
type LineStatus string

const (
	LineKept    LineStatus = "kept"
	LineSkipped LineStatus = "skipped"
)

// LineResult records what happened to a single non-empty line.
type LineResult struct {
	Line    int        `json:"line"`
	Content string     `json:"content"`
	Status  LineStatus `json:"status"`
	Reason  string     `json:"reason,omitempty"`
	Name    string     `json:"name,omitempty"`
	X       float32    `json:"x"`
	Y       float32    `json:"y"`
}
