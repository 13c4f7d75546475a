// Package station owns the periodic driver loop. It is the only place with
// mutable state (the current forecast snapshot); the decision core it calls
// into is pure.
package station

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"weathercentral/internal/advisory"
	"weathercentral/internal/ingest"
	"weathercentral/internal/metrics"
	"weathercentral/internal/models"
	"weathercentral/internal/publish"
	"weathercentral/internal/sensor"
)

// ForecastSource supplies a freshly fetched forecast set.
type ForecastSource interface {
	Fetch(ctx context.Context) (*models.ForecastSet, ingest.FetchStats, error)
}

// Recorder persists evaluation results and fetch-run bookkeeping.
type Recorder interface {
	InsertEvaluation(models.EvaluationRecord) error
	InsertForecastSet(models.ForecastSet) error
	RecordFetchRun(models.FetchRun) error
}

type Station struct {
	sensor sensor.Reader
	door   sensor.DoorSensor
	source ForecastSource
	pub    publish.Publisher
	rec    Recorder

	evalInterval    time.Duration
	refreshInterval time.Duration

	// The fast tick loads, the slow tick swaps a fully-built set; readers
	// always see a consistent snapshot.
	current atomic.Pointer[models.ForecastSet]
}

func New(r sensor.Reader, door sensor.DoorSensor, source ForecastSource, pub publish.Publisher, rec Recorder, evalInterval, refreshInterval time.Duration) *Station {
	return &Station{
		sensor:          r,
		door:            door,
		source:          source,
		pub:             pub,
		rec:             rec,
		evalInterval:    evalInterval,
		refreshInterval: refreshInterval,
	}
}

// Run drives both cadences until the context is cancelled: the fast
// evaluate-and-publish tick and the slow forecast refresh. Both run once up
// front so the station is live immediately after boot.
func (s *Station) Run(ctx context.Context) {
	if err := s.RefreshForecast(ctx); err != nil {
		log.Printf("station: refresh forecast: %v", err)
	}
	if err := s.EvaluateOnce(time.Now()); err != nil {
		log.Printf("station: evaluate: %v", err)
	}

	evalTicker := time.NewTicker(s.evalInterval)
	refreshTicker := time.NewTicker(s.refreshInterval)
	defer evalTicker.Stop()
	defer refreshTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("station: shutting down")
			return
		case now := <-evalTicker.C:
			if err := s.EvaluateOnce(now); err != nil {
				log.Printf("station: evaluate: %v", err)
			}
		case <-refreshTicker.C:
			if err := s.RefreshForecast(ctx); err != nil {
				log.Printf("station: refresh forecast: %v", err)
			}
		}
	}
}

// RunOnce performs a single refresh-and-evaluate cycle.
func (s *Station) RunOnce(ctx context.Context) error {
	if err := s.RefreshForecast(ctx); err != nil {
		return err
	}
	return s.EvaluateOnce(time.Now())
}

// EvaluateOnce runs one fast tick: sample the sensors, evaluate, publish and
// persist. A missing humidity reading is the one condition that skips
// publishing; it surfaces as the returned error.
func (s *Station) EvaluateOnce(now time.Time) error {
	reading, err := s.sensor.Read()
	if err != nil {
		metrics.SensorReadErrorsTotal.Inc()
		return fmt.Errorf("sensor read: %w", err)
	}
	doorOpen := s.door.IsOpen()

	set := s.current.Load()
	sum := advisory.Summarize(set)
	adv, err := advisory.Evaluate(reading, sum, set.First(), doorOpen)
	if err != nil {
		metrics.EvaluationErrorsTotal.Inc()
		return err
	}
	metrics.EvaluationsTotal.WithLabelValues(string(adv.State)).Inc()

	if err := s.pub.Publish(reading, adv, sum); err != nil {
		log.Printf("station: publish: %v", err)
	}
	if err := s.pub.PublishDisplay(publish.RenderDisplay(now, reading, adv)); err != nil {
		log.Printf("station: publish display: %v", err)
	}

	rec := models.EvaluationRecord{
		EvaluatedAt:  reading.ObservedAt,
		Temp:         reading.Temp,
		Humidity:     reading.Humidity,
		DoorOpen:     doorOpen,
		State:        string(adv.State),
		Message:      adv.Message,
		Color:        string(adv.Color),
		RainMax:      sum.RainMax,
		SnowMax:      sum.SnowMax,
		RainObserved: sum.HaveRain,
		SnowObserved: sum.HaveSnow,
		QualityFlags: ingest.QualityFlagsToJSON(ingest.ValidateReading(reading)),
	}
	if rec.EvaluatedAt.IsZero() {
		rec.EvaluatedAt = now.UTC()
	}
	if sum.HaveMin {
		rec.TempMin = nullFloat(sum.TempMin)
	}
	if sum.HaveMax {
		rec.TempMax = nullFloat(sum.TempMax)
	}
	if err := s.rec.InsertEvaluation(rec); err != nil {
		log.Printf("station: store evaluation: %v", err)
	}
	return nil
}

// RefreshForecast fetches a new set and swaps it in atomically. On failure
// the previous snapshot stays live; a stale forecast beats an empty one.
func (s *Station) RefreshForecast(ctx context.Context) error {
	start := time.Now().UTC()
	set, stats, err := s.source.Fetch(ctx)
	metrics.ForecastFetchLatency.Observe(time.Since(start).Seconds())

	run := models.FetchRun{
		StartedAt:   start,
		CompletedAt: time.Now().UTC(),
		Success:     err == nil,
	}
	if stats.HTTPStatus > 0 {
		run.HTTPStatus = nullInt(int64(stats.HTTPStatus))
	}
	if stats.ResponseSize > 0 {
		run.ResponseSize = nullInt(int64(stats.ResponseSize))
	}
	run.SlotsParsed = nullInt(int64(stats.SlotsParsed))
	if err != nil {
		run.ErrorMessage = nullString(err.Error())
	}
	if recErr := s.rec.RecordFetchRun(run); recErr != nil {
		log.Printf("station: record fetch run: %v", recErr)
	}

	if err != nil {
		metrics.ForecastFetchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch forecast: %w", err)
	}
	metrics.ForecastFetchesTotal.WithLabelValues("ok").Inc()

	s.current.Store(set)
	if err := s.rec.InsertForecastSet(*set); err != nil {
		log.Printf("station: store forecast: %v", err)
	}
	log.Printf("station: forecast refreshed, %d slots", len(set.Slots))
	return nil
}

// CurrentForecast returns the active snapshot, nil before the first
// successful refresh.
func (s *Station) CurrentForecast() *models.ForecastSet {
	return s.current.Load()
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}
