package station

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"weathercentral/internal/advisory"
	"weathercentral/internal/ingest"
	"weathercentral/internal/models"
)

type fakeReader struct {
	reading models.SensorReading
	err     error
}

func (r *fakeReader) Read() (models.SensorReading, error) {
	return r.reading, r.err
}

type fakeDoor bool

func (d fakeDoor) IsOpen() bool { return bool(d) }

type fakeSource struct {
	set   *models.ForecastSet
	stats ingest.FetchStats
	err   error
	calls int
}

func (s *fakeSource) Fetch(context.Context) (*models.ForecastSet, ingest.FetchStats, error) {
	s.calls++
	return s.set, s.stats, s.err
}

type fakePublisher struct {
	published int
	displays  int
	lastAdv   models.Advisory
	lastSum   advisory.Summary
}

func (p *fakePublisher) Publish(_ models.SensorReading, adv models.Advisory, sum advisory.Summary) error {
	p.published++
	p.lastAdv = adv
	p.lastSum = sum
	return nil
}

func (p *fakePublisher) PublishDisplay([]string) error {
	p.displays++
	return nil
}

type fakeRecorder struct {
	evaluations []models.EvaluationRecord
	sets        []models.ForecastSet
	runs        []models.FetchRun
}

func (r *fakeRecorder) InsertEvaluation(rec models.EvaluationRecord) error {
	r.evaluations = append(r.evaluations, rec)
	return nil
}

func (r *fakeRecorder) InsertForecastSet(set models.ForecastSet) error {
	r.sets = append(r.sets, set)
	return nil
}

func (r *fakeRecorder) RecordFetchRun(run models.FetchRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func f(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func testSet() *models.ForecastSet {
	fetched := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	return &models.ForecastSet{
		FetchedAt: fetched,
		Slots: []models.ForecastSlot{
			{ValidAt: fetched.Add(3 * time.Hour), Temp: f(15), Rain3h: f(0)},
			{ValidAt: fetched.Add(6 * time.Hour), Temp: f(18)},
		},
	}
}

func newTestStation(reader *fakeReader, door fakeDoor, source *fakeSource, pub *fakePublisher, rec *fakeRecorder) *Station {
	return New(reader, door, source, pub, rec, time.Minute, 30*time.Minute)
}

func TestEvaluateOnce(t *testing.T) {
	reader := &fakeReader{reading: models.SensorReading{
		Temp:       f(21.5),
		Humidity:   f(48),
		ObservedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	s := newTestStation(reader, fakeDoor(false), &fakeSource{}, pub, rec)
	s.current.Store(testSet())

	if err := s.EvaluateOnce(time.Now()); err != nil {
		t.Fatalf("EvaluateOnce() error = %v", err)
	}

	if pub.published != 1 || pub.displays != 1 {
		t.Errorf("published %d, displays %d, want 1 and 1", pub.published, pub.displays)
	}
	if pub.lastAdv.State != models.StateBiking {
		t.Errorf("State = %q, want biking", pub.lastAdv.State)
	}
	if len(rec.evaluations) != 1 {
		t.Fatalf("stored %d evaluations, want 1", len(rec.evaluations))
	}
	stored := rec.evaluations[0]
	if stored.State != string(models.StateBiking) {
		t.Errorf("stored State = %q, want biking", stored.State)
	}
	if !stored.RainObserved {
		t.Error("RainObserved = false, slot 0 carried a measured zero")
	}
	if stored.SnowObserved {
		t.Error("SnowObserved = true, no slot carried snow")
	}
	if !stored.TempMin.Valid || stored.TempMin.Float64 != 15 {
		t.Errorf("TempMin = %+v, want 15", stored.TempMin)
	}
}

func TestEvaluateOnce_NoForecastYet(t *testing.T) {
	reader := &fakeReader{reading: models.SensorReading{Humidity: f(50)}}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	s := newTestStation(reader, fakeDoor(true), &fakeSource{}, pub, rec)

	if err := s.EvaluateOnce(time.Now()); err != nil {
		t.Fatalf("EvaluateOnce() error = %v", err)
	}
	if pub.lastAdv.State != models.StateNeutral {
		t.Errorf("State = %q, want neutral with no forecast", pub.lastAdv.State)
	}
	if len(rec.evaluations) != 1 {
		t.Fatalf("stored %d evaluations, want 1", len(rec.evaluations))
	}
	if rec.evaluations[0].RainObserved {
		t.Error("RainObserved = true with no forecast at all")
	}
}

func TestEvaluateOnce_MissingHumiditySkipsPublish(t *testing.T) {
	reader := &fakeReader{reading: models.SensorReading{Temp: f(21)}}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	s := newTestStation(reader, fakeDoor(false), &fakeSource{}, pub, rec)
	s.current.Store(testSet())

	err := s.EvaluateOnce(time.Now())
	if !errors.Is(err, advisory.ErrHumidityMissing) {
		t.Fatalf("EvaluateOnce() error = %v, want ErrHumidityMissing", err)
	}
	if pub.published != 0 || pub.displays != 0 {
		t.Error("nothing should be published on a missing-humidity tick")
	}
	if len(rec.evaluations) != 0 {
		t.Error("nothing should be stored on a missing-humidity tick")
	}
}

func TestEvaluateOnce_SensorError(t *testing.T) {
	reader := &fakeReader{err: errors.New("bus timeout")}
	pub := &fakePublisher{}
	s := newTestStation(reader, fakeDoor(false), &fakeSource{}, pub, &fakeRecorder{})

	if err := s.EvaluateOnce(time.Now()); err == nil {
		t.Fatal("EvaluateOnce() expected error on sensor failure")
	}
	if pub.published != 0 {
		t.Error("nothing should be published on a sensor failure")
	}
}

func TestRefreshForecast(t *testing.T) {
	source := &fakeSource{
		set:   testSet(),
		stats: ingest.FetchStats{HTTPStatus: 200, ResponseSize: 1024, SlotsParsed: 2},
	}
	rec := &fakeRecorder{}
	s := newTestStation(&fakeReader{}, fakeDoor(false), source, &fakePublisher{}, rec)

	if err := s.RefreshForecast(context.Background()); err != nil {
		t.Fatalf("RefreshForecast() error = %v", err)
	}
	if s.CurrentForecast() == nil {
		t.Fatal("CurrentForecast() = nil after successful refresh")
	}
	if len(rec.sets) != 1 {
		t.Errorf("stored %d sets, want 1", len(rec.sets))
	}
	if len(rec.runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(rec.runs))
	}
	run := rec.runs[0]
	if !run.Success {
		t.Error("run.Success = false")
	}
	if !run.HTTPStatus.Valid || run.HTTPStatus.Int64 != 200 {
		t.Errorf("run.HTTPStatus = %+v, want 200", run.HTTPStatus)
	}
}

func TestRefreshForecast_FailureKeepsOldSet(t *testing.T) {
	source := &fakeSource{set: testSet(), stats: ingest.FetchStats{HTTPStatus: 200, SlotsParsed: 2}}
	rec := &fakeRecorder{}
	s := newTestStation(&fakeReader{}, fakeDoor(false), source, &fakePublisher{}, rec)

	if err := s.RefreshForecast(context.Background()); err != nil {
		t.Fatalf("first RefreshForecast() error = %v", err)
	}
	old := s.CurrentForecast()

	source.set = nil
	source.err = errors.New("status 500")
	source.stats = ingest.FetchStats{HTTPStatus: 500}

	if err := s.RefreshForecast(context.Background()); err == nil {
		t.Fatal("second RefreshForecast() expected error")
	}
	if s.CurrentForecast() != old {
		t.Error("failed refresh must keep the previous snapshot")
	}
	if len(rec.runs) != 2 {
		t.Fatalf("recorded %d runs, want 2", len(rec.runs))
	}
	failed := rec.runs[1]
	if failed.Success {
		t.Error("failed run recorded as success")
	}
	if !failed.ErrorMessage.Valid || failed.ErrorMessage.String == "" {
		t.Error("failed run should carry an error message")
	}
}

func TestRunOnce(t *testing.T) {
	reader := &fakeReader{reading: models.SensorReading{Humidity: f(50)}}
	source := &fakeSource{set: testSet(), stats: ingest.FetchStats{HTTPStatus: 200, SlotsParsed: 2}}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	s := newTestStation(reader, fakeDoor(false), source, pub, rec)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if source.calls != 1 {
		t.Errorf("source called %d times, want 1", source.calls)
	}
	if pub.published != 1 {
		t.Errorf("published %d, want 1", pub.published)
	}
	if len(rec.evaluations) != 1 {
		t.Errorf("stored %d evaluations, want 1", len(rec.evaluations))
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	reader := &fakeReader{reading: models.SensorReading{Humidity: f(50)}}
	source := &fakeSource{set: testSet(), stats: ingest.FetchStats{HTTPStatus: 200, SlotsParsed: 2}}
	s := newTestStation(reader, fakeDoor(false), source, &fakePublisher{}, &fakeRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
