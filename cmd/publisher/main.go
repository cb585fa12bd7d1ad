package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

type positionMessage struct {
	VehicleID string  `json:"vehicle_id"`
	DriverID  string  `json:"driver_id"`
	LoadID    string  `json:"load_id,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp int64   `json:"timestamp"`
}

type waypoint struct {
	lat, lon float64
}

// I-5 southbound from Seattle into Oregon, crossing the Columbia River.
var route = []waypoint{
	{47.6062, -122.3321},
	{47.2529, -122.4443},
	{47.0379, -122.9007},
	{46.7162, -122.9543},
	{46.1382, -122.9382},
	{45.6387, -122.6615},
	{45.6000, -122.6790},
	{45.5152, -122.6784},
	{45.2101, -122.9887},
	{44.9429, -123.0351},
}

type truck struct {
	vehicleID string
	driverID  string
	loadID    string
	leg       int
	step      int
}

const stepsPerLeg = 6

func (t *truck) next() (waypoint, float64) {
	from := route[t.leg]
	to := route[(t.leg+1)%len(route)]
	f := float64(t.step) / stepsPerLeg

	p := waypoint{
		lat: from.lat + (to.lat-from.lat)*f,
		lon: from.lon + (to.lon-from.lon)*f,
	}

	t.step++
	if t.step == stepsPerLeg {
		t.step = 0
		t.leg = (t.leg + 1) % (len(route) - 1)
	}

	speed := 55 + rand.Float64()*15
	// occasional speeding burst for the driver score
	if rand.Float64() < 0.1 {
		speed = 76 + rand.Float64()*8
	}
	return p, speed
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> [vehicle_id] [load_id]\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	t := &truck{vehicleID: "TRK-0001", driverID: "DRV-0001", loadID: "LOAD-0001"}
	if len(os.Args) > 2 {
		t.vehicleID = os.Args[2]
	}
	if len(os.Args) > 3 {
		t.loadID = os.Args[3]
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("fleet-mock-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("mqtt connect")
	}
	defer client.Disconnect(250)

	log.WithFields(logrus.Fields{
		"broker":     broker,
		"interval_s": intervalSec,
		"vehicle_id": t.vehicleID,
		"load_id":    t.loadID,
	}).Info("publishing")

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		p, speed := t.next()

		msg := positionMessage{
			VehicleID: t.vehicleID,
			DriverID:  t.driverID,
			LoadID:    t.loadID,
			Latitude:  p.lat,
			Longitude: p.lon,
			Speed:     speed,
			Heading:   180,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/fleet/vehicle/%s/position", t.vehicleID)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.WithField("topic", topic).Info(string(payload))
	}
}
