package codec

import (
	"strconv"
	"strings"

	"github.com/sensor-spy/backend/internal/models"
)

// FormatPoint renders a point stream line "<ts>,<x>,<y>\n".
// point must hold exactly two values; anything else panics.
func (c *Codec) FormatPoint(point []float32) string {
	if len(point) != 2 {
		panic("codec: FormatPoint needs exactly 2 coordinates, got " + strconv.Itoa(len(point)))
	}

	var b strings.Builder
	b.WriteString(strconv.FormatInt(c.NowMillis(), 10))
	b.WriteByte(',')
	b.WriteString(FormatFloat(point[0]))
	b.WriteByte(',')
	b.WriteString(FormatFloat(point[1]))
	b.WriteByte('\n')
	return b.String()
}

// FormatPointAnnotation renders "<name>:<x>,<y>\n", the shape ParsePointMap
// reads. It is not the point stream format written by FormatPoint.
func FormatPointAnnotation(p models.Point) string {
	return p.Name + ":" + FormatFloat(p.X) + "," + FormatFloat(p.Y) + "\n"
}

// ParsePointMap builds a name -> coordinate map from point annotation text.
// A nil text means nothing was read and yields an empty map.
func ParsePointMap(text *string) models.PointMap {
	if text == nil {
		return models.PointMap{}
	}
	return ParsePointMapString(*text)
}

// ParsePointMapString is ParsePointMap for text that is known to be present.
// Malformed lines are dropped; a later line for the same name wins.
func ParsePointMapString(text string) models.PointMap {
	points := models.PointMap{}
	for _, r := range ParsePointLines(text) {
		if r.Status == models.LineKept {
			points[r.Name] = [2]float32{r.X, r.Y}
		}
	}
	return points
}

// ParsePointLines walks point annotation text and reports the outcome of
// every non-empty line in order.
func ParsePointLines(text string) []models.LineResult {
	results := make([]models.LineResult, 0)
	if text == "" {
		return results
	}

	for i, line := range strings.Split(text, "\n") {
		if len(line) == 0 {
			continue
		}
		results = append(results, parsePointLine(line, i+1))
	}
	return results
}

func parsePointLine(line string, lineNum int) models.LineResult {
	skip := func(reason string) models.LineResult {
		return models.LineResult{Line: lineNum, Content: line, Status: models.LineSkipped, Reason: reason}
	}

	name, rest, ok := strings.Cut(line, ":")
	if !ok {
		return skip("missing ':' separator")
	}

	xy := splitFields(rest)
	if len(xy) != 2 {
		return skip("expected 2 coordinates, got " + strconv.Itoa(len(xy)))
	}

	x, err := ParseFloat(strings.TrimSpace(xy[0]))
	if err != nil {
		return skip("invalid x coordinate")
	}
	y, err := ParseFloat(strings.TrimSpace(xy[1]))
	if err != nil {
		return skip("invalid y coordinate")
	}

	return models.LineResult{
		Line:    lineNum,
		Content: line,
		Status:  models.LineKept,
		Name:    name,
		X:       x,
		Y:       y,
	}
}

// splitFields splits on ',' and drops trailing empty fields, so "1,2," has
// two fields while "1,,2" has three.
func splitFields(s string) []string {
	fields := strings.Split(s, ",")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}
