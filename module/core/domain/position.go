package domain

import (
	"time"

	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

// PositionReport is one GPS fix from a vehicle. Speed is in mph.
type PositionReport struct {
	VehicleID  string         `json:"vehicle_id"`
	DriverID   string         `json:"driver_id"`
	ShipmentID string         `json:"shipment_id,omitempty"`
	Location   geometry.Point `json:"location"`
	Speed      *float64       `json:"speed,omitempty"`
	Heading    *float64       `json:"heading,omitempty"`
	Accuracy   *float64       `json:"accuracy,omitempty"`
	Altitude   *float64       `json:"altitude,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

type Vehicle struct {
	VehicleID string          `json:"vehicle_id"`
	DriverID  string          `json:"driver_id,omitempty"`
	Location  *geometry.Point `json:"location,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

type HistoryQuery struct {
	VehicleID string
	Start     time.Time
	End       time.Time
}

type DriverHistoryQuery struct {
	DriverID string
	Start    time.Time
	End      time.Time
}
