package scoring

import (
	"time"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
)

const (
	SpeedingMPH         = 75.0
	HarshDeltaMPH       = 10.0
	HarshWindow         = 30 * time.Second
	speedingPenalty     = 2
	brakingPenalty      = 3
	accelerationPenalty = 3
)

// Calculate scores a driver over reports ordered by timestamp. Harsh events
// compare adjacent reports only; a report without a speed reading breaks the
// pair. An empty window yields NoData.
func Calculate(driverID string, start, end time.Time, reports []domain.PositionReport) domain.DriverScore {
	result := domain.DriverScore{
		DriverID:    driverID,
		WindowStart: start,
		WindowEnd:   end,
	}

	var prev *domain.PositionReport
	for i := range reports {
		r := &reports[i]
		if r.Speed == nil {
			prev = nil
			continue
		}
		result.Samples++

		if *r.Speed > SpeedingMPH {
			result.SpeedingIncidents++
		}

		if prev != nil {
			dt := r.Timestamp.Sub(prev.Timestamp)
			dv := *r.Speed - *prev.Speed
			if dt >= 0 && dt <= HarshWindow {
				switch {
				case dv < -HarshDeltaMPH:
					result.HarshBrakingIncidents++
				case dv > HarshDeltaMPH:
					result.HarshAccelerationIncidents++
				}
			}
		}
		prev = r
	}

	if result.Samples == 0 {
		result.NoData = true
		return result
	}

	score := 100 -
		speedingPenalty*result.SpeedingIncidents -
		brakingPenalty*result.HarshBrakingIncidents -
		accelerationPenalty*result.HarshAccelerationIncidents
	score = max(0, min(100, score))
	result.Score = &score
	return result
}
