package publish

import (
	"fmt"
	"log"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"weathercentral/internal/advisory"
	"weathercentral/internal/metrics"
	"weathercentral/internal/models"
)

// MQTT publishes one topic per field under a common prefix so dashboards and
// automations can subscribe to exactly the values they need. Values are
// published at QoS 0 and retained; the broker always holds the latest cycle.
type MQTT struct {
	client mqtt.Client
	prefix string
}

func NewMQTT(client mqtt.Client, prefix string) *MQTT {
	return &MQTT{client: client, prefix: prefix}
}

type message struct {
	topic   string
	payload string
}

// Publish pushes the advisory, the local reading and the forecast summary.
// Temperature extrema are only published when the forecast actually carried
// temperatures; rain/snow maxima are always published together with the
// *_observed flags so a defaulted 0 is never mistaken for a measured 0.
func (m *MQTT) Publish(reading models.SensorReading, adv models.Advisory, sum advisory.Summary) error {
	msgs := []message{
		{"advisory/state", string(adv.State)},
		{"advisory/message", adv.Message},
		{"advisory/color", string(adv.Color)},
		{"forecast/rain_max", formatMM(sum.RainMax)},
		{"forecast/rain_observed", strconv.FormatBool(sum.HaveRain)},
		{"forecast/snow_max", formatMM(sum.SnowMax)},
		{"forecast/snow_observed", strconv.FormatBool(sum.HaveSnow)},
	}
	if reading.Temp.Valid {
		msgs = append(msgs, message{"sensor/temp", formatC(reading.Temp.Float64)})
	}
	if reading.Humidity.Valid {
		msgs = append(msgs, message{"sensor/humidity", formatC(reading.Humidity.Float64)})
	}
	if sum.HaveMin {
		msgs = append(msgs, message{"forecast/temp_min", formatC(sum.TempMin)})
	}
	if sum.HaveMax {
		msgs = append(msgs, message{"forecast/temp_max", formatC(sum.TempMax)})
	}
	return m.send(msgs)
}

// PublishDisplay pushes the rendered display lines, one topic per line.
func (m *MQTT) PublishDisplay(lines []string) error {
	msgs := make([]message, 0, len(lines))
	for i, line := range lines {
		msgs = append(msgs, message{fmt.Sprintf("display/line%d", i), line})
	}
	return m.send(msgs)
}

func (m *MQTT) send(msgs []message) error {
	failed := 0
	for _, msg := range msgs {
		topic := m.prefix + "/" + msg.topic
		token := m.client.Publish(topic, 0, true, msg.payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("publish: %s: %v", topic, err)
			metrics.PublishErrorsTotal.Inc()
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("publish: %d of %d topics failed", failed, len(msgs))
	}
	return nil
}

func formatC(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatMM keeps three decimals so values near the rain threshold survive the
// round trip through telemetry.
func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
