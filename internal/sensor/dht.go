package sensor

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"weathercentral/internal/models"
)

// DHT reads a DHT22-class sensor exposed through the kernel IIO subsystem,
// where temperature and relative humidity appear as sysfs files holding
// milli-units (21500 means 21.5).
type DHT struct {
	tempPath     string
	humidityPath string
}

func NewDHT(tempPath, humidityPath string) *DHT {
	return &DHT{tempPath: tempPath, humidityPath: humidityPath}
}

// Read samples both channels. A failed channel leaves its field absent rather
// than failing the whole read; only when neither channel is readable does
// Read report an error.
func (d *DHT) Read() (models.SensorReading, error) {
	reading := models.SensorReading{ObservedAt: time.Now().UTC()}

	tempErr := readMilli(d.tempPath, &reading.Temp)
	humErr := readMilli(d.humidityPath, &reading.Humidity)

	if tempErr != nil && humErr != nil {
		return reading, fmt.Errorf("sensor unreadable: temp: %v, humidity: %v", tempErr, humErr)
	}
	return reading, nil
}

func readMilli(path string, out *sql.NullFloat64) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	raw, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	*out = sql.NullFloat64{Float64: float64(raw) / 1000, Valid: true}
	return nil
}
