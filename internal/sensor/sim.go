package sensor

import (
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"weathercentral/internal/models"
)

// Sim produces a random walk around comfortable indoor conditions so the full
// station loop can run without hardware attached.
type Sim struct {
	mu   sync.Mutex
	rng  *rand.Rand
	temp float64
	hum  float64
}

func NewSim(seed int64) *Sim {
	return &Sim{
		rng:  rand.New(rand.NewSource(seed)),
		temp: 21.0,
		hum:  50.0,
	}
}

func (s *Sim) Read() (models.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.temp += (s.rng.Float64() - 0.5) * 0.6
	s.hum += (s.rng.Float64() - 0.5) * 3.0
	if s.hum < 0 {
		s.hum = 0
	}
	if s.hum > 100 {
		s.hum = 100
	}

	return models.SensorReading{
		Temp:       sql.NullFloat64{Float64: s.temp, Valid: true},
		Humidity:   sql.NullFloat64{Float64: s.hum, Valid: true},
		ObservedAt: time.Now().UTC(),
	}, nil
}
