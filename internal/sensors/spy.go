// Package sensors enumerates the sensors reported by the host.
package sensors

import (
	"github.com/sensor-spy/backend/internal/codec"
	"github.com/sensor-spy/backend/internal/models"
)

// Source supplies the host's sensor list.
type Source interface {
	List() []models.SensorInfo
}

// Spy answers questions about the sensors of one device.
type Spy struct {
	sensors []models.SensorInfo
}

// NewSpy snapshots the sensor list of src.
func NewSpy(src Source) *Spy {
	list := src.List()
	return &Spy{sensors: append([]models.SensorInfo(nil), list...)}
}

// Sensors returns a copy of the sensor list.
func (s *Spy) Sensors() []models.SensorInfo {
	return append([]models.SensorInfo{}, s.sensors...)
}

// ByType returns the sensors of one type.
func (s *Spy) ByType(t models.SensorType) []models.SensorInfo {
	out := make([]models.SensorInfo, 0)
	for _, sensor := range s.sensors {
		if sensor.Type == t {
			out = append(out, sensor)
		}
	}
	return out
}

// NameCounts maps each sensor name to the number of sensors carrying it.
func (s *Spy) NameCounts() map[string]int {
	counts := make(map[string]int, len(s.sensors))
	for _, sensor := range s.sensors {
		counts[sensor.Name]++
	}
	return counts
}

// InfoListing renders the sensor listing file content.
func (s *Spy) InfoListing() string {
	return codec.FormatSensorInfo(s.sensors)
}

// InfoFileName is the base name of the listing file for a device model.
func InfoFileName(deviceModel string) string {
	return deviceModel + " Sensor Informations"
}
