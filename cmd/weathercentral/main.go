package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"weathercentral/internal/api"
	"weathercentral/internal/ingest"
	"weathercentral/internal/publish"
	"weathercentral/internal/sensor"
	"weathercentral/internal/station"
	"weathercentral/internal/store"
)

var cli struct {
	DB   string `default:"data/weathercentral.db" help:"Path to SQLite database."`
	Port string `default:"8080" help:"HTTP server port."`

	Broker      string `default:"tcp://localhost:1883" env:"MQTT_BROKER" help:"MQTT broker URL."`
	TopicPrefix string `default:"weathercentral" env:"MQTT_TOPIC_PREFIX" help:"Prefix for published telemetry topics."`
	DoorTopic   string `default:"home/door/state" env:"DOOR_TOPIC" help:"Topic the door sensor publishes open/closed on."`

	APIKey string  `env:"OWM_API_KEY" help:"OpenWeatherMap API key."`
	Lat    float64 `default:"48.2082" env:"STATION_LAT" help:"Station latitude."`
	Lon    float64 `default:"16.3738" env:"STATION_LON" help:"Station longitude."`

	EvalInterval    time.Duration `default:"1m" help:"How often to evaluate and publish."`
	RefreshInterval time.Duration `default:"30m" help:"How often to refresh the forecast."`

	TempPath     string `default:"/sys/bus/iio/devices/iio:device0/in_temp_input" help:"Sysfs path for the temperature channel."`
	HumidityPath string `default:"/sys/bus/iio/devices/iio:device0/in_humidityrelative_input" help:"Sysfs path for the humidity channel."`

	Simulate bool `help:"Use a simulated indoor sensor instead of hardware."`
	Once     bool `help:"Run a single refresh and evaluate cycle, then exit."`
	NoServe  bool `help:"Disable the HTTP server (station loop only)."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("weathercentral"),
		kong.Description("Environmental monitoring station: local sensors, forecast, one advisory."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	if cli.APIKey == "" {
		log.Fatal("OWM_API_KEY required (flag --api-key or environment)")
	}

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	opts := mqtt.NewClientOptions().
		AddBroker(cli.Broker).
		SetClientID("weathercentral").
		SetAutoReconnect(true).
		SetConnectRetry(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect %s: %v", cli.Broker, token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("connected to broker %s", cli.Broker)

	var reader sensor.Reader
	if cli.Simulate {
		log.Println("using simulated indoor sensor")
		reader = sensor.NewSim(time.Now().UnixNano())
	} else {
		reader = sensor.NewDHT(cli.TempPath, cli.HumidityPath)
	}

	door, err := sensor.NewMQTTDoor(client, cli.DoorTopic)
	if err != nil {
		log.Fatalf("subscribe door topic %s: %v", cli.DoorTopic, err)
	}

	source := ingest.NewOpenWeather(cli.APIKey, cli.Lat, cli.Lon)
	pub := publish.NewMQTT(client, cli.TopicPrefix)
	stn := station.New(reader, door, source, pub, st, cli.EvalInterval, cli.RefreshInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cli.Once {
		log.Println("running single cycle")
		if err := stn.RunOnce(ctx); err != nil {
			log.Fatalf("run once: %v", err)
		}
		log.Println("done")
		return
	}

	go stn.Run(ctx)

	if cli.NoServe {
		log.Println("HTTP server disabled (--no-serve)")
		<-ctx.Done()
		return
	}

	server := api.NewServer(st, cli.Port)
	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
