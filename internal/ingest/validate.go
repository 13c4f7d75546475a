package ingest

import (
	"encoding/json"

	"weathercentral/internal/models"
)

const (
	FlagTempOutOfRange     = "temp_out_of_range"
	FlagHumidityOutOfRange = "humidity_out_of_range"
	FlagHumidityMissing    = "humidity_missing"
)

// ValidateReading flags implausible sensor values. Flags are advisory only:
// evaluation proceeds regardless, the flags are just stored with the record.
func ValidateReading(r models.SensorReading) []string {
	var flags []string

	if r.Temp.Valid {
		if r.Temp.Float64 < -40 || r.Temp.Float64 > 80 {
			flags = append(flags, FlagTempOutOfRange)
		}
	}

	if r.Humidity.Valid {
		if r.Humidity.Float64 < 0 || r.Humidity.Float64 > 100 {
			flags = append(flags, FlagHumidityOutOfRange)
		}
	} else {
		flags = append(flags, FlagHumidityMissing)
	}

	return flags
}

func QualityFlagsToJSON(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	b, _ := json.Marshal(flags)
	return string(b)
}
