package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"weathercentral/internal/models"
)

// evaluationView is the JSON shape of one evaluate tick. Absent sensor and
// forecast values are omitted rather than serialized as zero; the observed
// flags say whether a precipitation total was actually measured.
type evaluationView struct {
	EvaluatedAt  time.Time `json:"evaluated_at"`
	Temp         *float64  `json:"temp,omitempty"`
	Humidity     *float64  `json:"humidity,omitempty"`
	DoorOpen     bool      `json:"door_open"`
	State        string    `json:"state"`
	Message      string    `json:"message,omitempty"`
	Color        string    `json:"color"`
	TempMin      *float64  `json:"temp_min,omitempty"`
	TempMax      *float64  `json:"temp_max,omitempty"`
	RainMax      float64   `json:"rain_max"`
	SnowMax      float64   `json:"snow_max"`
	RainObserved bool      `json:"rain_observed"`
	SnowObserved bool      `json:"snow_observed"`
	QualityFlags []string  `json:"quality_flags,omitempty"`
}

type forecastSlotView struct {
	ValidAt time.Time `json:"valid_at"`
	Temp    *float64  `json:"temp,omitempty"`
	Rain3h  *float64  `json:"rain_3h,omitempty"`
	Snow3h  *float64  `json:"snow_3h,omitempty"`
}

type forecastView struct {
	FetchedAt time.Time          `json:"fetched_at"`
	Slots     []forecastSlotView `json:"slots"`
}

type fetchRunView struct {
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	Success      bool      `json:"success"`
	HTTPStatus   *int64    `json:"http_status,omitempty"`
	SlotsParsed  *int64    `json:"slots_parsed,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetLatestEvaluation()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "no evaluation yet", http.StatusNotFound)
		return
	}
	writeJSON(w, evaluationToView(*rec))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if h := r.URL.Query().Get("hours"); h != "" {
		parsed, err := strconv.Atoi(h)
		if err != nil || parsed < 1 || parsed > 24*31 {
			http.Error(w, "invalid hours parameter", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)

	records, err := s.store.GetEvaluations(start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]evaluationView, 0, len(records))
	for _, rec := range records {
		views = append(views, evaluationToView(rec))
	}
	writeJSON(w, views)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	set, err := s.store.GetLatestForecastSet()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if set == nil {
		http.Error(w, "no forecast yet", http.StatusNotFound)
		return
	}

	view := forecastView{FetchedAt: set.FetchedAt, Slots: make([]forecastSlotView, 0, len(set.Slots))}
	for _, slot := range set.Slots {
		view.Slots = append(view.Slots, forecastSlotView{
			ValidAt: slot.ValidAt,
			Temp:    nullToPtr(slot.Temp),
			Rain3h:  nullToPtr(slot.Rain3h),
			Snow3h:  nullToPtr(slot.Snow3h),
		})
	}
	writeJSON(w, view)
}

func (s *Server) handleFetches(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.GetRecentFetchRuns(20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]fetchRunView, 0, len(runs))
	for _, run := range runs {
		view := fetchRunView{
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
			Success:     run.Success,
		}
		if run.HTTPStatus.Valid {
			view.HTTPStatus = &run.HTTPStatus.Int64
		}
		if run.SlotsParsed.Valid {
			view.SlotsParsed = &run.SlotsParsed.Int64
		}
		if run.ErrorMessage.Valid {
			view.ErrorMessage = run.ErrorMessage.String
		}
		views = append(views, view)
	}
	writeJSON(w, views)
}

func evaluationToView(rec models.EvaluationRecord) evaluationView {
	view := evaluationView{
		EvaluatedAt:  rec.EvaluatedAt,
		Temp:         nullToPtr(rec.Temp),
		Humidity:     nullToPtr(rec.Humidity),
		DoorOpen:     rec.DoorOpen,
		State:        rec.State,
		Message:      rec.Message,
		Color:        rec.Color,
		TempMin:      nullToPtr(rec.TempMin),
		TempMax:      nullToPtr(rec.TempMax),
		RainMax:      rec.RainMax,
		SnowMax:      rec.SnowMax,
		RainObserved: rec.RainObserved,
		SnowObserved: rec.SnowObserved,
	}
	if rec.QualityFlags != "" {
		// Stored as a JSON array; a parse failure just drops the flags.
		json.Unmarshal([]byte(rec.QualityFlags), &view.QualityFlags)
	}
	return view
}

func nullToPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
