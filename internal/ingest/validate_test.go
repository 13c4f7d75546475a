package ingest

import (
	"database/sql"
	"testing"

	"weathercentral/internal/models"
)

func TestValidateReading(t *testing.T) {
	f := func(v float64) sql.NullFloat64 {
		return sql.NullFloat64{Float64: v, Valid: true}
	}

	tests := []struct {
		name      string
		reading   models.SensorReading
		wantFlags []string
	}{
		{
			name:      "nominal indoor reading",
			reading:   models.SensorReading{Temp: f(21.5), Humidity: f(48)},
			wantFlags: nil,
		},
		{
			name:      "temperature below sensor range",
			reading:   models.SensorReading{Temp: f(-50), Humidity: f(48)},
			wantFlags: []string{FlagTempOutOfRange},
		},
		{
			name:      "temperature above sensor range",
			reading:   models.SensorReading{Temp: f(90), Humidity: f(48)},
			wantFlags: []string{FlagTempOutOfRange},
		},
		{
			name:      "temperature at range edges is valid",
			reading:   models.SensorReading{Temp: f(-40), Humidity: f(48)},
			wantFlags: nil,
		},
		{
			name:      "humidity over 100",
			reading:   models.SensorReading{Temp: f(20), Humidity: f(130)},
			wantFlags: []string{FlagHumidityOutOfRange},
		},
		{
			name:      "humidity negative",
			reading:   models.SensorReading{Temp: f(20), Humidity: f(-1)},
			wantFlags: []string{FlagHumidityOutOfRange},
		},
		{
			name:      "missing humidity flagged",
			reading:   models.SensorReading{Temp: f(20)},
			wantFlags: []string{FlagHumidityMissing},
		},
		{
			name:      "missing temperature alone is fine",
			reading:   models.SensorReading{Humidity: f(50)},
			wantFlags: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateReading(tt.reading)
			if len(got) != len(tt.wantFlags) {
				t.Fatalf("ValidateReading() = %v, want %v", got, tt.wantFlags)
			}
			for i := range got {
				if got[i] != tt.wantFlags[i] {
					t.Errorf("ValidateReading() = %v, want %v", got, tt.wantFlags)
				}
			}
		})
	}
}

func TestQualityFlagsToJSON(t *testing.T) {
	if got := QualityFlagsToJSON(nil); got != "" {
		t.Errorf("QualityFlagsToJSON(nil) = %q, want empty", got)
	}
	got := QualityFlagsToJSON([]string{FlagTempOutOfRange})
	want := `["temp_out_of_range"]`
	if got != want {
		t.Errorf("QualityFlagsToJSON() = %q, want %q", got, want)
	}
}
