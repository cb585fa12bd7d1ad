package compliance

import (
	"slices"
	"strconv"
	"strings"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
)

type Options struct {
	// StrictManualChecks reports manual-verification reminders (hazmat
	// routing, port of entry) as warnings instead of passes.
	StrictManualChecks bool
}

type Engine struct {
	rules []Rule
	opts  Options
}

func NewEngine(rules []Rule, opts Options) *Engine {
	return &Engine{rules: rules, opts: opts}
}

// CheckState evaluates every rule against one state, in table order.
func (e *Engine) CheckState(state string, cargo domain.Cargo) []domain.ComplianceCheckItem {
	state = NormalizeState(state)
	items := make([]domain.ComplianceCheckItem, 0, 4)
	for i := range e.rules {
		if item, ok := e.apply(&e.rules[i], state, cargo); ok {
			items = append(items, item)
		}
	}
	return items
}

// AnalyzeStates evaluates each state once, skipping blanks and repeats.
func (e *Engine) AnalyzeStates(states []string, cargo domain.Cargo) []domain.StateCompliance {
	seen := make(map[string]bool, len(states))
	out := make([]domain.StateCompliance, 0, len(states))
	for _, s := range states {
		s = NormalizeState(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true

		checks := e.CheckState(s, cargo)
		out = append(out, domain.StateCompliance{
			StateCode: s,
			StateName: StateName(s),
			Checks:    checks,
			Status:    StateStatus(checks),
		})
	}
	return out
}

func (e *Engine) apply(r *Rule, state string, cargo domain.Cargo) (domain.ComplianceCheckItem, bool) {
	if len(r.States) > 0 && !slices.Contains(r.States, state) {
		return domain.ComplianceCheckItem{}, false
	}
	if r.Hazmat && !cargo.IsHazmat {
		return domain.ComplianceCheckItem{}, false
	}
	if r.Oversized && !cargo.IsOversized {
		return domain.ComplianceCheckItem{}, false
	}

	status := r.Met
	if r.MinWeightLbs > 0 && cargo.WeightLbs < r.MinWeightLbs {
		status = r.Below
	}
	if r.Manual && e.opts.StrictManualChecks && status == domain.StatusPass {
		status = domain.StatusWarning
	}

	fill := strings.NewReplacer(
		"{state}", state,
		"{state_name}", StateName(state),
		"{threshold}", formatLbs(r.MinWeightLbs),
		"{weight}", formatLbs(cargo.WeightLbs),
	)

	return domain.ComplianceCheckItem{
		Type:       r.Type,
		Label:      fill.Replace(r.Label),
		Status:     status,
		Detail:     fill.Replace(r.Detail),
		ActionURL:  r.ActionURL,
		IsBlocking: r.Blocking && status == domain.StatusFail,
		Actionable: r.Actionable,
	}, true
}

// StateStatus is fail if any item failed, else warning if any warned.
func StateStatus(items []domain.ComplianceCheckItem) domain.CheckStatus {
	status := domain.StatusPass
	for _, it := range items {
		switch it.Status {
		case domain.StatusFail:
			return domain.StatusFail
		case domain.StatusWarning:
			status = domain.StatusWarning
		}
	}
	return status
}

// RouteStatus is blocked if any state has a blocking item, else warnings
// if any item is not a pass.
func RouteStatus(states []domain.StateCompliance) domain.RouteStatus {
	status := domain.RouteClear
	for _, s := range states {
		for _, it := range s.Checks {
			if it.IsBlocking {
				return domain.RouteBlocked
			}
			if it.Status != domain.StatusPass {
				status = domain.RouteWarnings
			}
		}
	}
	return status
}

func formatLbs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
