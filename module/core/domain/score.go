package domain

import "time"

type DriverScore struct {
	DriverID                   string    `json:"driver_id"`
	WindowStart                time.Time `json:"window_start"`
	WindowEnd                  time.Time `json:"window_end"`
	NoData                     bool      `json:"no_data"`
	Score                      *int      `json:"score"`
	Samples                    int       `json:"samples"`
	SpeedingIncidents          int       `json:"speeding_incidents"`
	HarshBrakingIncidents      int       `json:"harsh_braking_incidents"`
	HarshAccelerationIncidents int       `json:"harsh_acceleration_incidents"`
}
