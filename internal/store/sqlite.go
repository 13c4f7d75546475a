package store

import (
	"database/sql"
	"time"

	"weathercentral/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertEvaluation(rec models.EvaluationRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO evaluations (evaluated_at, temp, humidity, door_open, state, message, color, temp_min, temp_max, rain_max, snow_max, rain_observed, snow_observed, quality_flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.EvaluatedAt, rec.Temp, rec.Humidity, rec.DoorOpen, rec.State, rec.Message, rec.Color,
		rec.TempMin, rec.TempMax, rec.RainMax, rec.SnowMax, rec.RainObserved, rec.SnowObserved, rec.QualityFlags)
	return err
}

func (s *Store) GetLatestEvaluation() (*models.EvaluationRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, evaluated_at, temp, humidity, door_open, state, message, color, temp_min, temp_max, rain_max, snow_max, rain_observed, snow_observed, quality_flags, created_at
		FROM evaluations
		ORDER BY evaluated_at DESC
		LIMIT 1
	`)

	var rec models.EvaluationRecord
	err := scanEvaluation(row, &rec)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) GetEvaluations(start, end time.Time) ([]models.EvaluationRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, evaluated_at, temp, humidity, door_open, state, message, color, temp_min, temp_max, rain_max, snow_max, rain_observed, snow_observed, quality_flags, created_at
		FROM evaluations
		WHERE evaluated_at >= ? AND evaluated_at <= ?
		ORDER BY evaluated_at ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.EvaluationRecord
	for rows.Next() {
		var rec models.EvaluationRecord
		if err := scanEvaluation(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner, rec *models.EvaluationRecord) error {
	return row.Scan(&rec.ID, &rec.EvaluatedAt, &rec.Temp, &rec.Humidity, &rec.DoorOpen,
		&rec.State, &rec.Message, &rec.Color, &rec.TempMin, &rec.TempMax,
		&rec.RainMax, &rec.SnowMax, &rec.RainObserved, &rec.SnowObserved,
		&rec.QualityFlags, &rec.CreatedAt)
}

// InsertForecastSet stores every slot of a freshly fetched set.
func (s *Store) InsertForecastSet(set models.ForecastSet) error {
	for i, slot := range set.Slots {
		_, err := s.db.Exec(`
			INSERT INTO forecast_slots (fetched_at, slot_index, valid_at, temp, rain_3h, snow_3h)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(fetched_at, slot_index) DO NOTHING
		`, set.FetchedAt, i, slot.ValidAt, slot.Temp, slot.Rain3h, slot.Snow3h)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetLatestForecastSet returns the most recently fetched set, or nil when no
// forecast was ever stored.
func (s *Store) GetLatestForecastSet() (*models.ForecastSet, error) {
	// MAX over an empty table comes back as a NULL row, not ErrNoRows.
	var fetchedAt sql.NullTime
	if err := s.db.QueryRow(`SELECT MAX(fetched_at) FROM forecast_slots`).Scan(&fetchedAt); err != nil {
		return nil, err
	}
	if !fetchedAt.Valid {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT valid_at, temp, rain_3h, snow_3h
		FROM forecast_slots
		WHERE fetched_at = ?
		ORDER BY slot_index ASC
	`, fetchedAt.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := &models.ForecastSet{FetchedAt: fetchedAt.Time}
	for rows.Next() {
		var slot models.ForecastSlot
		if err := rows.Scan(&slot.ValidAt, &slot.Temp, &slot.Rain3h, &slot.Snow3h); err != nil {
			return nil, err
		}
		set.Slots = append(set.Slots, slot)
	}
	return set, rows.Err()
}

func (s *Store) RecordFetchRun(run models.FetchRun) error {
	_, err := s.db.Exec(`
		INSERT INTO fetch_runs (started_at, completed_at, success, http_status, response_size_bytes, slots_parsed, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt, run.CompletedAt, run.Success, run.HTTPStatus, run.ResponseSize, run.SlotsParsed, run.ErrorMessage)
	return err
}

func (s *Store) GetRecentFetchRuns(limit int) ([]models.FetchRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, completed_at, success, http_status, response_size_bytes, slots_parsed, error_message
		FROM fetch_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.FetchRun
	for rows.Next() {
		var run models.FetchRun
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.Success,
			&run.HTTPStatus, &run.ResponseSize, &run.SlotsParsed, &run.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
