package advisory

import "weathercentral/internal/models"

// Summary holds the extrema reduced from a forecast set. HaveMin/HaveMax
// report whether any slot carried a temperature at all. RainMax and SnowMax
// default to 0 when no slot carries the field; HaveRain/HaveSnow keep that
// defaulted 0 distinguishable from a measured 0.
type Summary struct {
	TempMin  float64
	TempMax  float64
	HaveMin  bool
	HaveMax  bool
	RainMax  float64
	SnowMax  float64
	HaveRain bool
	HaveSnow bool
}

// Summarize reduces a forecast set to its extrema. It is a pure function and
// safe on a nil or empty set: temperatures come back unflagged and rain/snow
// as the 0 default.
func Summarize(set *models.ForecastSet) Summary {
	var sum Summary
	if set == nil {
		return sum
	}
	for _, slot := range set.Slots {
		if slot.Temp.Valid {
			t := slot.Temp.Float64
			if !sum.HaveMin || t < sum.TempMin {
				sum.TempMin = t
			}
			if !sum.HaveMax || t > sum.TempMax {
				sum.TempMax = t
			}
			sum.HaveMin = true
			sum.HaveMax = true
		}
		if slot.Rain3h.Valid {
			if slot.Rain3h.Float64 > sum.RainMax {
				sum.RainMax = slot.Rain3h.Float64
			}
			sum.HaveRain = true
		}
		if slot.Snow3h.Valid {
			if slot.Snow3h.Float64 > sum.SnowMax {
				sum.SnowMax = slot.Snow3h.Float64
			}
			sum.HaveSnow = true
		}
	}
	return sum
}
