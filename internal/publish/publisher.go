// Package publish pushes each evaluation cycle's result out to telemetry and
// the display. The station calls it once per fast tick; it never feeds back
// into the decision core.
package publish

import (
	"weathercentral/internal/advisory"
	"weathercentral/internal/models"
)

// Publisher receives the advisory and forecast summary once per evaluate
// tick, plus the rendered display lines.
type Publisher interface {
	Publish(reading models.SensorReading, adv models.Advisory, sum advisory.Summary) error
	PublishDisplay(lines []string) error
}
