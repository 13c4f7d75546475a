package advisory

import (
	"database/sql"
	"testing"

	"weathercentral/internal/models"
)

func f(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		set  *models.ForecastSet
		want Summary
	}{
		{
			name: "nil set returns defaults",
			set:  nil,
			want: Summary{},
		},
		{
			name: "empty set returns defaults",
			set:  &models.ForecastSet{},
			want: Summary{},
		},
		{
			name: "single full slot",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Temp: f(15), Rain3h: f(0.5), Snow3h: f(0)},
			}},
			want: Summary{TempMin: 15, TempMax: 15, HaveMin: true, HaveMax: true, RainMax: 0.5, HaveRain: true, SnowMax: 0, HaveSnow: true},
		},
		{
			name: "min and max over multiple slots",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Temp: f(15), Rain3h: f(0)},
				{Temp: f(18), Rain3h: f(0)},
				{Temp: f(12), Rain3h: f(2.5)},
			}},
			want: Summary{TempMin: 12, TempMax: 18, HaveMin: true, HaveMax: true, RainMax: 2.5, HaveRain: true},
		},
		{
			name: "slots without temperature are skipped",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Rain3h: f(1.0)},
				{Temp: f(20)},
			}},
			want: Summary{TempMin: 20, TempMax: 20, HaveMin: true, HaveMax: true, RainMax: 1.0, HaveRain: true},
		},
		{
			name: "no temperature anywhere leaves extrema unflagged",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Rain3h: f(0.2)},
				{Snow3h: f(1.1)},
			}},
			want: Summary{RainMax: 0.2, HaveRain: true, SnowMax: 1.1, HaveSnow: true},
		},
		{
			name: "missing rain everywhere defaults to zero without observation flag",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Temp: f(5)},
				{Temp: f(8)},
			}},
			want: Summary{TempMin: 5, TempMax: 8, HaveMin: true, HaveMax: true},
		},
		{
			name: "measured zero rain sets observation flag",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Temp: f(5), Rain3h: f(0)},
			}},
			want: Summary{TempMin: 5, TempMax: 5, HaveMin: true, HaveMax: true, RainMax: 0, HaveRain: true},
		},
		{
			name: "partial rain coverage takes max of present values",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Temp: f(5), Rain3h: f(0.3)},
				{Temp: f(6)},
				{Temp: f(7), Rain3h: f(0.1)},
			}},
			want: Summary{TempMin: 5, TempMax: 7, HaveMin: true, HaveMax: true, RainMax: 0.3, HaveRain: true},
		},
		{
			name: "negative temperatures",
			set: &models.ForecastSet{Slots: []models.ForecastSlot{
				{Temp: f(-4), Snow3h: f(1.5)},
				{Temp: f(-9), Snow3h: f(3.0)},
			}},
			want: Summary{TempMin: -9, TempMax: -4, HaveMin: true, HaveMax: true, SnowMax: 3.0, HaveSnow: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.set)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSummarizeDoesNotMutateSet(t *testing.T) {
	set := &models.ForecastSet{Slots: []models.ForecastSlot{
		{Temp: f(15), Rain3h: f(0.5)},
	}}
	Summarize(set)
	if !set.Slots[0].Temp.Valid || set.Slots[0].Temp.Float64 != 15 {
		t.Error("Summarize mutated its input")
	}
}
