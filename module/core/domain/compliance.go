package domain

import "time"

type CheckType string

const (
	CheckWeightTax   CheckType = "weight_distance_tax"
	CheckCARB        CheckType = "carb_emissions"
	CheckCAPermit    CheckType = "ca_motor_carrier_permit"
	CheckOversize    CheckType = "oversize_permit"
	CheckHazmatRoute CheckType = "hazmat_routing"
	CheckPortOfEntry CheckType = "port_of_entry"
	CheckIFTA        CheckType = "ifta_mileage"
)

type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusWarning CheckStatus = "warning"
	StatusFail    CheckStatus = "fail"
)

type ComplianceCheckItem struct {
	Type       CheckType   `json:"type"`
	Label      string      `json:"label"`
	Status     CheckStatus `json:"status"`
	Detail     string      `json:"detail"`
	ActionURL  string      `json:"action_url,omitempty"`
	IsBlocking bool        `json:"is_blocking"`
	// Actionable items are persisted as compliance events when they are
	// not a pass.
	Actionable bool `json:"-"`
}

type ComplianceEvent struct {
	ID             string      `json:"id"`
	ShipmentID     string      `json:"shipment_id"`
	DriverID       string      `json:"driver_id"`
	VehicleID      string      `json:"vehicle_id,omitempty"`
	StateCode      string      `json:"state_code"`
	Type           CheckType   `json:"type"`
	Label          string      `json:"label"`
	Status         CheckStatus `json:"status"`
	Detail         string      `json:"detail"`
	ActionURL      string      `json:"action_url,omitempty"`
	RequiresAction bool        `json:"requires_action"`
	CreatedAt      time.Time   `json:"created_at"`
}

type RouteStatus string

const (
	RouteClear    RouteStatus = "clear"
	RouteWarnings RouteStatus = "warnings"
	RouteBlocked  RouteStatus = "blocked"
)

type StateCompliance struct {
	StateCode string                `json:"state_code"`
	StateName string                `json:"state_name"`
	Checks    []ComplianceCheckItem `json:"checks"`
	Status    CheckStatus           `json:"status"`
}

type RouteCompliance struct {
	LoadID        string            `json:"load_id"`
	OriginState   string            `json:"origin_state"`
	DestState     string            `json:"dest_state"`
	TransitStates []string          `json:"transit_states"`
	IsInterstate  bool              `json:"is_interstate"`
	Compliance    []StateCompliance `json:"compliance"`
	OverallStatus RouteStatus       `json:"overall_status"`
	Blockers      []string          `json:"blockers"`
	Warnings      []string          `json:"warnings"`
}

// CrossingAlert is broadcast when a shipment enters a new state.
type CrossingAlert struct {
	LoadID    string                `json:"load_id"`
	FromState string                `json:"from_state"`
	ToState   string                `json:"to_state"`
	StateName string                `json:"state_name"`
	Lat       float64               `json:"lat"`
	Lng       float64               `json:"lng"`
	Alerts    []ComplianceCheckItem `json:"alerts"`
	Timestamp int64                 `json:"timestamp"`
}
