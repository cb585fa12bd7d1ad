package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/publisher"
)

var _ publisher.AlertPublisher = (*AlertPublisher)(nil)

const ExchangeName = "fleet.alerts"

const (
	typeZoneTransition = "zone_transition"
	typeStateCrossing  = "state_crossing"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
}

type AlertPublisher struct {
	ch channel
}

func NewAlertPublisher(conn *amqp.Connection) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("confirm mode: %w", err)
	}

	return &AlertPublisher{ch: ch}, nil
}

type transitionMessage struct {
	Type       string                `json:"type"`
	EventID    string                `json:"event_id"`
	VehicleID  string                `json:"vehicle_id"`
	ShipmentID string                `json:"shipment_id,omitempty"`
	ZoneID     string                `json:"zone_id"`
	Kind       domain.TransitionKind `json:"kind"`
	Location   alertLocation         `json:"location"`
	Timestamp  int64                 `json:"timestamp"`
}

type alertLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type crossingMessage struct {
	Type string `json:"type"`
	*domain.CrossingAlert
}

func (p *AlertPublisher) PublishTransition(ctx context.Context, routingKeys []string, ev *domain.ZoneTransitionEvent) (bool, error) {
	body, err := json.Marshal(transitionMessage{
		Type:       typeZoneTransition,
		EventID:    ev.ID,
		VehicleID:  ev.VehicleID,
		ShipmentID: ev.ShipmentID,
		ZoneID:     ev.ZoneID,
		Kind:       ev.Kind,
		Location: alertLocation{
			Latitude:  ev.Location.Lat,
			Longitude: ev.Location.Lon,
		},
		Timestamp: ev.Timestamp.Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal transition: %w", err)
	}
	return p.publish(ctx, routingKeys, body)
}

func (p *AlertPublisher) PublishCrossing(ctx context.Context, routingKeys []string, alert *domain.CrossingAlert) (bool, error) {
	body, err := json.Marshal(crossingMessage{Type: typeStateCrossing, CrossingAlert: alert})
	if err != nil {
		return false, fmt.Errorf("marshal crossing alert: %w", err)
	}
	return p.publish(ctx, routingKeys, body)
}

func (p *AlertPublisher) publish(ctx context.Context, routingKeys []string, body []byte) (bool, error) {
	confirms := make([]*amqp.DeferredConfirmation, 0, len(routingKeys))
	for _, key := range routingKeys {
		dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, ExchangeName, key, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
		if err != nil {
			return false, fmt.Errorf("publish %s: %w", key, err)
		}
		confirms = append(confirms, dc)
	}

	acked := true
	for _, dc := range confirms {
		if dc == nil {
			// channel not in confirm mode
			acked = false
			continue
		}
		ok, err := dc.WaitContext(ctx)
		if err != nil {
			return false, fmt.Errorf("wait confirm: %w", err)
		}
		acked = acked && ok
	}
	return acked, nil
}
