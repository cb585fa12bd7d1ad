package publisher

import (
	"context"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
)

// AlertPublisher fans alerts out under the given routing keys. The returned
// bool reports whether the broker confirmed every publish.
type AlertPublisher interface {
	PublishTransition(ctx context.Context, routingKeys []string, ev *domain.ZoneTransitionEvent) (bool, error)
	PublishCrossing(ctx context.Context, routingKeys []string, alert *domain.CrossingAlert) (bool, error)
}
