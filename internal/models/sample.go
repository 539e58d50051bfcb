// Package models contains domain types for the Sensor Spy backend.
package models

// SensorSample is one reading of the motion sensors.
// The capture timestamp is not stored here; it is taken from the clock
// when the sample is formatted into a line.
type SensorSample struct {
	Acc  []float32 `json:"acc" msgpack:"acc"`
	Gyro []float32 `json:"gyro" msgpack:"gyro"`
	Mag  []float32 `json:"mag" msgpack:"mag"`
	Quat []float32 `json:"quat" msgpack:"quat"`
}

// SampleLayout is the number of values each vector contributes to a line.
type SampleLayout struct {
	Acc  int `json:"acc"`
	Gyro int `json:"gyro"`
	Mag  int `json:"mag"`
	Quat int `json:"quat"`
}

// DefaultSampleLayout is the 3/3/3/4 layout written by the capture path.
var DefaultSampleLayout = SampleLayout{Acc: 3, Gyro: 3, Mag: 3, Quat: 4}

// Width returns the number of value fields in a line (timestamp excluded).
func (l SampleLayout) Width() int {
	return l.Acc + l.Gyro + l.Mag + l.Quat
}

// TimedSample is a sample read back from a stream file.
type TimedSample struct {
	TimestampMs int64 `json:"timestampMs" msgpack:"ts"`
	SensorSample
}
