package advisory

import (
	"errors"
	"fmt"

	"weathercentral/internal/models"
)

// Decision thresholds. Comparisons against these are strict on both sides:
// a max rain of exactly RainThresholdMM neither qualifies as dry nor as wet,
// and humidity of exactly 40 or 60 stays inside the comfort band.
const (
	RainThresholdMM = 0.001
	BikingMinTempC  = 10.0
	HumidityLowPct  = 40.0
	HumidityHighPct = 60.0
)

// ErrHumidityMissing reports the one mandatory-input violation: a reading
// without a humidity value cannot drive the humidity rule and must not be
// silently defaulted.
var ErrHumidityMissing = errors.New("advisory: sensor reading has no humidity value")

// Fixed alert texts.
const (
	doorAlertMessage     = "door open, rain expected"
	humidityAlertMessage = "indoor humidity out of range"
)

// ColorFor maps an advisory state to its indicator color. The mapping is
// total, so every evaluation fully determines the light and no stale color
// can survive a state change.
func ColorFor(state models.AdvisoryState) models.IndicatorColor {
	switch state {
	case models.StateBiking:
		return models.ColorGreen
	case models.StateDoorAlert:
		return models.ColorRed
	case models.StateHumidityAlert:
		return models.ColorBlue
	default:
		return models.ColorBlack
	}
}

// Evaluate merges the local reading, the forecast summary and the door state
// into one advisory. Rules are checked in fixed priority order, first match
// wins:
//
//  1. biking: dry forecast (max rain under threshold) and forecast minimum
//     above BikingMinTempC
//  2. door alert: rain expected and the door is open
//  3. humidity alert: local humidity outside the 40-60 band
//  4. neutral fallback
//
// When the set carried no temperature the biking rule is skipped entirely,
// and a missing rain field evaluates as the 0 default, so the door alert can
// never fire from absent data alone. Evaluate is stateless and deterministic;
// the only error it returns is ErrHumidityMissing.
func Evaluate(reading models.SensorReading, sum Summary, first *models.ForecastSlot, doorOpen bool) (models.Advisory, error) {
	if !reading.Humidity.Valid {
		return models.Advisory{}, ErrHumidityMissing
	}

	if sum.HaveMin && sum.RainMax < RainThresholdMM && sum.TempMin > BikingMinTempC {
		return advisory(models.StateBiking,
			fmt.Sprintf("good for biking, %.1fC ahead", bikingTemp(sum, first))), nil
	}

	if sum.RainMax > RainThresholdMM && doorOpen {
		return advisory(models.StateDoorAlert, doorAlertMessage), nil
	}

	if h := reading.Humidity.Float64; h < HumidityLowPct || h > HumidityHighPct {
		return advisory(models.StateHumidityAlert, humidityAlertMessage), nil
	}

	msg := ""
	if reading.Temp.Valid {
		msg = fmt.Sprintf("indoor %.1fC", reading.Temp.Float64)
	}
	return advisory(models.StateNeutral, msg), nil
}

func advisory(state models.AdvisoryState, msg string) models.Advisory {
	return models.Advisory{State: state, Message: msg, Color: ColorFor(state)}
}

// bikingTemp picks the temperature quoted in the biking message: the nearest
// slot when it carries one, otherwise the summary minimum.
func bikingTemp(sum Summary, first *models.ForecastSlot) float64 {
	if first != nil && first.Temp.Valid {
		return first.Temp.Float64
	}
	return sum.TempMin
}
