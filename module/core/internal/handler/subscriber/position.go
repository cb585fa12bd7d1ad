package subscriber

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

const TopicPattern = "/fleet/vehicle/+/position"

type ingester interface {
	Ingest(ctx context.Context, report *domain.PositionReport) error
}

type positionMessage struct {
	VehicleID string   `json:"vehicle_id" validate:"required"`
	DriverID  string   `json:"driver_id" validate:"required"`
	LoadID    string   `json:"load_id"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Speed     *float64 `json:"speed" validate:"omitempty,min=0"`
	Heading   *float64 `json:"heading" validate:"omitempty,min=0,max=360"`
	Accuracy  *float64 `json:"accuracy" validate:"omitempty,min=0"`
	Altitude  *float64 `json:"altitude"`
	Timestamp int64    `json:"timestamp" validate:"required,gt=0"`
}

type PositionSubscriber struct {
	client   mqtt.Client
	ingester ingester
	validate *validator.Validate
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewPositionSubscriber(client mqtt.Client, ingester ingester, timeout time.Duration, log logrus.FieldLogger) *PositionSubscriber {
	return &PositionSubscriber{
		client:   client,
		ingester: ingester,
		validate: validator.New(),
		timeout:  timeout,
		log:      log,
	}
}

func (s *PositionSubscriber) Start() error {
	token := s.client.Subscribe(TopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *PositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	entry := s.log.WithField("topic", msg.Topic())

	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		entry.WithError(err).Warn("invalid position message")
		return
	}
	if err := s.validate.Struct(&raw); err != nil {
		entry.WithError(err).Warn("position message failed validation")
		return
	}

	report := &domain.PositionReport{
		VehicleID:  raw.VehicleID,
		DriverID:   raw.DriverID,
		ShipmentID: raw.LoadID,
		Location:   geometry.Point{Lat: *raw.Latitude, Lon: *raw.Longitude},
		Speed:      raw.Speed,
		Heading:    raw.Heading,
		Accuracy:   raw.Accuracy,
		Altitude:   raw.Altitude,
		Timestamp:  time.Unix(raw.Timestamp, 0),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.ingester.Ingest(ctx, report); err != nil {
		entry.WithField("vehicle_id", report.VehicleID).WithError(err).Error("ingest position")
	}
}
