package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sensor-spy/backend/internal/models"
)

// FormatSensorSample renders one sample stream line:
//
//	<ts>,<acc...>,<gyro...>,<mag...>,<quat...>\n
//
// Vector lengths are not checked.
func (c *Codec) FormatSensorSample(acc, gyro, mag, quat []float32) string {
	var b strings.Builder
	b.Grow(16 * (1 + len(acc) + len(gyro) + len(mag) + len(quat)))

	b.WriteString(strconv.FormatInt(c.NowMillis(), 10))
	appendValues(&b, acc)
	appendValues(&b, gyro)
	appendValues(&b, mag)
	appendValues(&b, quat)
	b.WriteByte('\n')

	return b.String()
}

// FormatSample is FormatSensorSample for a models.SensorSample.
func (c *Codec) FormatSample(s models.SensorSample) string {
	return c.FormatSensorSample(s.Acc, s.Gyro, s.Mag, s.Quat)
}

// ParseSensorSampleLine reads back a line written by FormatSensorSample.
// The layout decides how the value fields are split between the vectors.
func ParseSensorSampleLine(line string, layout models.SampleLayout) (models.TimedSample, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, ",")
	if len(fields) != 1+layout.Width() {
		return models.TimedSample{}, fmt.Errorf("expected %d fields, got %d", 1+layout.Width(), len(fields))
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return models.TimedSample{}, fmt.Errorf("invalid timestamp %q: %w", fields[0], err)
	}

	values := make([]float32, 0, layout.Width())
	for i, f := range fields[1:] {
		v, err := ParseFloat(f)
		if err != nil {
			return models.TimedSample{}, fmt.Errorf("invalid value in field %d: %w", i+2, err)
		}
		values = append(values, v)
	}

	next := func(n int) []float32 {
		out := values[:n:n]
		values = values[n:]
		return out
	}

	return models.TimedSample{
		TimestampMs: ts,
		SensorSample: models.SensorSample{
			Acc:  next(layout.Acc),
			Gyro: next(layout.Gyro),
			Mag:  next(layout.Mag),
			Quat: next(layout.Quat),
		},
	}, nil
}
