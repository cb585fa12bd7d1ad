package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/publisher"
)

const DefaultBroadcastRole = "dispatch"

// Broadcaster delivers alerts in the background. Callers never wait on the
// broker and never see its errors.
type Broadcaster struct {
	pub         publisher.AlertPublisher
	transitions database.TransitionRepository
	roles       []string
	timeout     time.Duration
	log         logrus.FieldLogger
	wg          sync.WaitGroup
}

func NewBroadcaster(pub publisher.AlertPublisher, transitions database.TransitionRepository, roles []string, timeout time.Duration, log logrus.FieldLogger) *Broadcaster {
	if len(roles) == 0 {
		roles = []string{DefaultBroadcastRole}
	}
	return &Broadcaster{
		pub:         pub,
		transitions: transitions,
		roles:       roles,
		timeout:     timeout,
		log:         log,
	}
}

func (b *Broadcaster) routingKeys(shipmentID string) []string {
	keys := make([]string, 0, len(b.roles)+1)
	if shipmentID != "" {
		keys = append(keys, "shipment."+shipmentID)
	}
	for _, r := range b.roles {
		keys = append(keys, "role."+r)
	}
	return keys
}

// BroadcastTransition publishes ev and, once the broker confirms, marks it
// notified.
func (b *Broadcaster) BroadcastTransition(ev domain.ZoneTransitionEvent) {
	keys := b.routingKeys(ev.ShipmentID)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		entry := b.log.WithFields(logrus.Fields{
			"event_id":   ev.ID,
			"vehicle_id": ev.VehicleID,
			"zone_id":    ev.ZoneID,
			"kind":       ev.Kind,
		})

		confirmed, err := b.pub.PublishTransition(ctx, keys, &ev)
		if err != nil {
			entry.WithError(err).Warn("broadcast transition failed")
			return
		}
		if !confirmed {
			entry.Warn("broadcast transition not confirmed")
			return
		}
		if err := b.transitions.MarkNotified(ctx, ev.ID); err != nil {
			entry.WithError(err).Warn("mark transition notified failed")
		}
	}()
}

func (b *Broadcaster) BroadcastCrossing(alert domain.CrossingAlert) {
	keys := b.routingKeys(alert.LoadID)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if _, err := b.pub.PublishCrossing(ctx, keys, &alert); err != nil {
			b.log.WithFields(logrus.Fields{
				"load_id":    alert.LoadID,
				"from_state": alert.FromState,
				"to_state":   alert.ToState,
			}).WithError(err).Warn("broadcast crossing failed")
		}
	}()
}

// Wait blocks until in-flight broadcasts finish.
func (b *Broadcaster) Wait() {
	b.wg.Wait()
}
