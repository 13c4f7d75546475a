package models

import (
	"database/sql"
	"time"
)

// MaxForecastSlots bounds how many forecast slots a set carries. Slot 0 is the
// nearest window and supplies the temperature quoted in advisory messages.
const MaxForecastSlots = 3

// AdvisoryState is the single derived recommendation for an evaluation cycle.
type AdvisoryState string

const (
	StateBiking        AdvisoryState = "biking"
	StateDoorAlert     AdvisoryState = "door_alert"
	StateHumidityAlert AdvisoryState = "humidity_alert"
	StateNeutral       AdvisoryState = "neutral"
)

// IndicatorColor is the status-light color mapped one-to-one from the state.
type IndicatorColor string

const (
	ColorGreen IndicatorColor = "green"
	ColorRed   IndicatorColor = "red"
	ColorBlue  IndicatorColor = "blue"
	ColorBlack IndicatorColor = "black"
)

// SensorReading is one local temperature/humidity sample. Humidity is the
// engine's one mandatory input; temperature may be absent.
type SensorReading struct {
	Temp       sql.NullFloat64
	Humidity   sql.NullFloat64
	ObservedAt time.Time
}

// ForecastSlot is one future time window. An absent rain or snow value means
// the upstream forecast omitted the field, not that no precipitation is
// expected.
type ForecastSlot struct {
	ValidAt time.Time
	Temp    sql.NullFloat64
	Rain3h  sql.NullFloat64
	Snow3h  sql.NullFloat64
}

// ForecastSet is a snapshot of forecast slots in chronological order. It is
// replaced wholesale on each refresh and never mutated in place.
type ForecastSet struct {
	FetchedAt time.Time
	Slots     []ForecastSlot
}

// First returns the nearest slot, or nil when the set is empty.
func (s *ForecastSet) First() *ForecastSlot {
	if s == nil || len(s.Slots) == 0 {
		return nil
	}
	return &s.Slots[0]
}

// Advisory is the engine's output for one evaluation cycle.
type Advisory struct {
	State   AdvisoryState
	Message string
	Color   IndicatorColor
}

// EvaluationRecord is the persisted result of one evaluate tick. RainObserved
// and SnowObserved record whether any forecast slot actually carried the
// field, so a defaulted 0 stays distinguishable from a measured 0.
type EvaluationRecord struct {
	ID           int64
	EvaluatedAt  time.Time
	Temp         sql.NullFloat64
	Humidity     sql.NullFloat64
	DoorOpen     bool
	State        string
	Message      string
	Color        string
	TempMin      sql.NullFloat64
	TempMax      sql.NullFloat64
	RainMax      float64
	SnowMax      float64
	RainObserved bool
	SnowObserved bool
	QualityFlags string
	CreatedAt    time.Time
}

// FetchRun records one forecast refresh attempt.
type FetchRun struct {
	ID           int64
	StartedAt    time.Time
	CompletedAt  time.Time
	Success      bool
	HTTPStatus   sql.NullInt64
	ResponseSize sql.NullInt64
	SlotsParsed  sql.NullInt64
	ErrorMessage sql.NullString
}
