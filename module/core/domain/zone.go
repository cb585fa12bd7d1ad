package domain

import (
	"time"

	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

type Zone struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Shape        geometry.Shape `json:"-"`
	StateCode    string         `json:"state_code,omitempty"`
	AlertOnEnter bool           `json:"alert_on_enter"`
	AlertOnExit  bool           `json:"alert_on_exit"`
	Active       bool           `json:"active"`
}

// IsStateBoundary reports whether entering this zone means entering a
// U.S. state.
func (z *Zone) IsStateBoundary() bool {
	return z.StateCode != ""
}

type TransitionKind string

const (
	TransitionEnter TransitionKind = "enter"
	TransitionExit  TransitionKind = "exit"
)

type ZoneTransitionEvent struct {
	ID         string         `json:"id"`
	VehicleID  string         `json:"vehicle_id"`
	ShipmentID string         `json:"shipment_id,omitempty"`
	ZoneID     string         `json:"zone_id"`
	Kind       TransitionKind `json:"kind"`
	Location   geometry.Point `json:"location"`
	Timestamp  time.Time      `json:"timestamp"`
	Notified   bool           `json:"notified"`
}
