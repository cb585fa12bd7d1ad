package compliance

import "github.com/nandanugg/fleet-compliance/module/core/domain"

// Rule is one row of the compliance table. A rule produces at most one
// check item per state.
//
// Detail and Label may contain the placeholders {state}, {state_name},
// {threshold} and {weight}.
type Rule struct {
	Type domain.CheckType

	// States limits the rule to these codes. Empty means every state.
	States []string

	// Cargo gates. A rule with a gate set emits nothing unless the cargo
	// matches.
	Hazmat    bool
	Oversized bool

	// MinWeightLbs > 0 makes the rule a threshold comparison: Met applies
	// when the cargo weighs at least this much, Below otherwise.
	MinWeightLbs float64
	Met          domain.CheckStatus
	Below        domain.CheckStatus

	Blocking   bool
	Actionable bool

	// Manual marks reminders for checks nobody verifies automatically.
	Manual bool

	Label     string
	Detail    string
	ActionURL string
}

var oversizePermitStates = []string{"CA", "TX", "FL", "NY", "PA", "OH", "IL", "GA", "LA", "AZ"}

var portOfEntryStates = []string{"CA", "OR", "WA", "ID", "NV", "UT", "AZ", "NM", "CO", "WY"}

var DefaultRules = []Rule{
	{
		Type:         domain.CheckWeightTax,
		States:       []string{"OR"},
		MinWeightLbs: 26001,
		Met:          domain.StatusWarning,
		Below:        domain.StatusPass,
		Actionable:   true,
		Label:        "Oregon Weight-Mile Tax",
		Detail:       "Gross weight {weight} lbs is at or above {threshold} lbs; file weight-mile tax with the Oregon Department of Transportation",
		ActionURL:    "https://www.oregon.gov/odot/mct/pages/weight-mile-tax.aspx",
	},
	{
		Type:         domain.CheckWeightTax,
		States:       []string{"NM"},
		MinWeightLbs: 26001,
		Met:          domain.StatusWarning,
		Below:        domain.StatusPass,
		Actionable:   true,
		Label:        "New Mexico Weight-Distance Tax",
		Detail:       "Gross weight {weight} lbs is at or above {threshold} lbs; file weight-distance tax with the New Mexico Taxation and Revenue Department",
		ActionURL:    "https://www.tax.newmexico.gov/businesses/weight-distance-tax/",
	},
	{
		Type:         domain.CheckWeightTax,
		States:       []string{"NY"},
		MinWeightLbs: 18001,
		Met:          domain.StatusWarning,
		Below:        domain.StatusPass,
		Actionable:   true,
		Label:        "New York Highway Use Tax",
		Detail:       "Gross weight {weight} lbs is at or above {threshold} lbs; HUT credential and filing required by the New York State Department of Taxation and Finance",
		ActionURL:    "https://www.tax.ny.gov/bus/hut/hutidx.htm",
	},
	{
		Type:         domain.CheckWeightTax,
		States:       []string{"KY"},
		MinWeightLbs: 60000,
		Met:          domain.StatusWarning,
		Below:        domain.StatusPass,
		Actionable:   true,
		Label:        "Kentucky Weight-Distance Tax (KYU)",
		Detail:       "Gross weight {weight} lbs is at or above {threshold} lbs; KYU number and filing required by the Kentucky Transportation Cabinet",
		ActionURL:    "https://drive.ky.gov/motor-carriers/Pages/default.aspx",
	},
	{
		Type:       domain.CheckCARB,
		States:     []string{"CA"},
		Met:        domain.StatusWarning,
		Actionable: true,
		Label:      "CARB Truck and Bus Compliance",
		Detail:     "Vehicle must meet California Air Resources Board emissions requirements while operating in {state_name}",
		ActionURL:  "https://ww2.arb.ca.gov/our-work/programs/truck-and-bus-regulation",
	},
	{
		Type:       domain.CheckCAPermit,
		States:     []string{"CA"},
		Met:        domain.StatusWarning,
		Actionable: true,
		Label:      "California Motor Carrier Permit",
		Detail:     "A valid CA Motor Carrier Permit is required for intrastate movement in {state_name}",
		ActionURL:  "https://www.dmv.ca.gov/portal/vehicle-industry-services/motor-carrier-services-mcs/",
	},
	{
		Type:       domain.CheckOversize,
		States:     oversizePermitStates,
		Oversized:  true,
		Met:        domain.StatusFail,
		Blocking:   true,
		Actionable: true,
		Label:      "Oversize/Overweight Permit Required",
		Detail:     "Oversized load requires a {state_name} oversize/overweight permit before entry",
	},
	{
		Type:   domain.CheckHazmatRoute,
		Hazmat: true,
		Met:    domain.StatusPass,
		Manual: true,
		Label:  "Hazmat Route Restrictions",
		Detail: "Verify tunnel and bridge hazmat restrictions on the planned route through {state_name}",
	},
	{
		Type:   domain.CheckPortOfEntry,
		States: portOfEntryStates,
		Met:    domain.StatusPass,
		Manual: true,
		Label:  "Port of Entry",
		Detail: "Commercial vehicles must stop at {state_name} ports of entry when open",
	},
	{
		Type:   domain.CheckIFTA,
		Met:    domain.StatusPass,
		Label:  "IFTA Mileage Tracking",
		Detail: "Miles driven in {state_name} will be accrued for IFTA quarterly reporting",
	},
}
