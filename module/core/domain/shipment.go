package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

type Cargo struct {
	WeightLbs   float64 `json:"weight_lbs"`
	IsHazmat    bool    `json:"is_hazmat"`
	IsOversized bool    `json:"is_oversized"`
}

type Shipment struct {
	ID          string `json:"id"`
	DriverID    string `json:"driver_id"`
	VehicleID   string `json:"vehicle_id,omitempty"`
	OriginState string `json:"origin_state"`
	DestState   string `json:"dest_state"`
	Cargo       Cargo  `json:"cargo"`
}

type CrossingDirection string

const (
	CrossingExit  CrossingDirection = "exit"
	CrossingEntry CrossingDirection = "entry"
)

type StateCrossingEvent struct {
	ShipmentID string            `json:"shipment_id"`
	DriverID   string            `json:"driver_id"`
	VehicleID  string            `json:"vehicle_id,omitempty"`
	Direction  CrossingDirection `json:"direction"`
	FromState  string            `json:"from_state"`
	ToState    string            `json:"to_state"`
	Location   geometry.Point    `json:"location"`
	Timestamp  time.Time         `json:"timestamp"`
}

// CrossingInput is what the real-time handler receives when a vehicle is
// seen entering a new state. Nil cargo fields fall back to the shipment.
type CrossingInput struct {
	LoadID      string
	DriverID    string
	VehicleID   string
	FromState   string
	ToState     string
	Location    geometry.Point
	Timestamp   time.Time
	WeightLbs   *float64
	IsHazmat    *bool
	IsOversized *bool
}

type MileageStatus string

const (
	MileageOpen   MileageStatus = "open"
	MileageClosed MileageStatus = "closed"
)

type StateMileageRecord struct {
	ID                  int64           `json:"id"`
	ShipmentID          string          `json:"shipment_id"`
	VehicleID           string          `json:"vehicle_id,omitempty"`
	StateCode           string          `json:"state_code"`
	MilesAccrued        float64         `json:"miles_accrued"`
	FuelGallons         float64         `json:"fuel_gallons"`
	TollCost            decimal.Decimal `json:"toll_cost"`
	WeightTaxApplicable bool            `json:"weight_tax_applicable"`
	Status              MileageStatus   `json:"status"`
	EntryTime           time.Time       `json:"entry_time"`
	ExitTime            *time.Time      `json:"exit_time,omitempty"`
}

type IFTAQuery struct {
	VehicleID string
	Start     time.Time
	End       time.Time
}

type IFTARow struct {
	StateCode  string          `json:"state_code"`
	StateName  string          `json:"state_name"`
	TotalMiles float64         `json:"total_miles"`
	TotalFuel  float64         `json:"total_fuel"`
	TotalTolls decimal.Decimal `json:"total_tolls"`
	Trips      int             `json:"trips"`
	MPG        float64         `json:"mpg"`
}
