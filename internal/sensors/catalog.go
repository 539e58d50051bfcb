package sensors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sensor-spy/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML description of the host's sensors.
//
//	device_model: Pixel 6
//	sensors:
//	  - name: LSM6DSR Accelerometer
//	    vendor: STMicro
//	    version: 1
//	    type: accelerometer
type Catalog struct {
	DeviceModel string              `yaml:"device_model"`
	Sensors     []models.SensorInfo `yaml:"sensors"`
}

// ParseCatalog parses a YAML catalog file.
func ParseCatalog(filePath string) (*Catalog, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseCatalogFromReader(file)
}

// ParseCatalogFromReader parses a catalog from an io.Reader.
func ParseCatalogFromReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse sensor catalog: %w", err)
	}

	for i := range cat.Sensors {
		s := &cat.Sensors[i]
		if s.Name == "" {
			return nil, fmt.Errorf("sensor %d: name is required", i)
		}
		if s.Type == "" {
			s.Type = GuessType(s.Name)
		}
	}

	return &cat, nil
}

// List returns the catalog's sensors. It satisfies Source.
func (c *Catalog) List() []models.SensorInfo {
	return c.Sensors
}

// GuessType derives a sensor type from its name.
func GuessType(name string) models.SensorType {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "accel"):
		return models.SensorTypeAccelerometer
	case strings.Contains(n, "gyro"):
		return models.SensorTypeGyroscope
	case strings.Contains(n, "magnet"):
		return models.SensorTypeMagnetometer
	}
	return models.SensorTypeOther
}
