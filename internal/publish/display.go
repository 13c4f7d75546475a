package publish

import (
	"fmt"
	"time"

	"weathercentral/internal/models"
)

// DisplayLines is the fixed line count of the SSD1306 layout the station
// drives (128x64, six usable text lines).
const DisplayLines = 6

const displayTitle = "Weather Central"

// RenderDisplay lays out the status screen: title, clock, the indoor reading
// and the advisory message. Layout only; all decisions were made upstream.
func RenderDisplay(now time.Time, reading models.SensorReading, adv models.Advisory) []string {
	lines := make([]string, DisplayLines)
	lines[0] = displayTitle
	lines[2] = now.Format("15:04")
	lines[3] = "In: " + formatReading(reading)
	lines[4] = adv.Message
	return lines
}

func formatReading(reading models.SensorReading) string {
	temp, hum := "--", "--"
	if reading.Temp.Valid {
		temp = fmt.Sprintf("%.1fC", reading.Temp.Float64)
	}
	if reading.Humidity.Valid {
		hum = fmt.Sprintf("%.0f%%", reading.Humidity.Float64)
	}
	return temp + " " + hum
}
