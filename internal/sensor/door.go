package sensor

import (
	"log"
	"strings"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTDoor tracks a reed-switch door sensor that publishes its state to an
// MQTT topic (retained, so a fresh subscription picks up the last known
// state). Unknown payloads are ignored and the previous state kept.
type MQTTDoor struct {
	open atomic.Bool
}

// NewMQTTDoor subscribes to the given topic and keeps the last parsed state.
func NewMQTTDoor(client mqtt.Client, topic string) (*MQTTDoor, error) {
	d := &MQTTDoor{}
	token := client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		open, ok := ParseDoorState(string(msg.Payload()))
		if !ok {
			log.Printf("door: unrecognized payload %q on %s", msg.Payload(), msg.Topic())
			return
		}
		d.open.Store(open)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *MQTTDoor) IsOpen() bool {
	return d.open.Load()
}

// ParseDoorState maps the common contact-sensor payload spellings onto a
// boolean. The second return reports whether the payload was recognized.
func ParseDoorState(payload string) (open bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(payload)) {
	case "open", "true", "on", "1":
		return true, true
	case "closed", "close", "false", "off", "0":
		return false, true
	default:
		return false, false
	}
}
