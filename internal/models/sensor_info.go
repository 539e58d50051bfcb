package models

// SensorType classifies a sensor for filtering.
type SensorType string

const (
	SensorTypeAccelerometer SensorType = "accelerometer"
	SensorTypeGyroscope     SensorType = "gyroscope"
	SensorTypeMagnetometer  SensorType = "magnetometer"
	SensorTypeOther         SensorType = "other"
)

// SensorInfo describes one hardware sensor reported by the host.
type SensorInfo struct {
	Name    string     `json:"name" yaml:"name"`
	Vendor  string     `json:"vendor" yaml:"vendor"`
	Version int        `json:"version" yaml:"version"`
	Type    SensorType `json:"type" yaml:"type"`
}
