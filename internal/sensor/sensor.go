// Package sensor holds the local input collaborators: the temperature/humidity
// reader and the door-state source. The advisory core never touches hardware;
// it only sees the readings these produce.
package sensor

import "weathercentral/internal/models"

// Reader supplies a fresh local sample on demand. Implementations may return
// a reading with absent fields when part of the hardware read fails; a
// non-nil error means no usable sample at all.
type Reader interface {
	Read() (models.SensorReading, error)
}

// DoorSensor reports the current door state, sampled at evaluation time.
type DoorSensor interface {
	IsOpen() bool
}

// StaticDoor is a fixed door state, used in simulation mode and tests.
type StaticDoor bool

func (d StaticDoor) IsOpen() bool { return bool(d) }
