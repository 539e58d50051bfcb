package codec

import (
	"strconv"
	"strings"

	"github.com/sensor-spy/backend/internal/models"
)

// SensorInfoHeader is the header row of the sensor listing (name, vendor, version).
const SensorInfoHeader = "名称,制造商,版本"

// FormatSensorInfo renders the sensor listing, header row first.
func FormatSensorInfo(sensors []models.SensorInfo) string {
	var b strings.Builder
	b.WriteString(SensorInfoHeader)
	b.WriteByte('\n')
	for _, s := range sensors {
		b.WriteString(s.Name)
		b.WriteByte(',')
		b.WriteString(s.Vendor)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(s.Version))
		b.WriteByte('\n')
	}
	return b.String()
}
