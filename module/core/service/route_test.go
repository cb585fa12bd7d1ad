package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nandanugg/fleet-compliance/module/core/compliance"
	"github.com/nandanugg/fleet-compliance/module/core/domain"
)

func newRouteService(shipment *domain.Shipment, entered []string) *RouteService {
	repo := &mockShipmentRepo{
		getFn: func(_ context.Context, id string) (*domain.Shipment, error) {
			if id != shipment.ID {
				return nil, domain.ErrNotFound
			}
			return shipment, nil
		},
		listEnteredStatesFn: func(_ context.Context, _ string) ([]string, error) { return entered, nil },
	}
	return NewRouteService(repo, compliance.NewEngine(compliance.DefaultRules, compliance.Options{}))
}

func TestAnalyzeRouteCompliance_Warnings(t *testing.T) {
	svc := newRouteService(&domain.Shipment{
		ID:          "LOAD-9",
		OriginState: "TX",
		DestState:   "OR",
		Cargo:       domain.Cargo{WeightLbs: 30000},
	}, nil)

	got, err := svc.AnalyzeRouteCompliance(context.Background(), "LOAD-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OverallStatus != domain.RouteWarnings {
		t.Errorf("expected warnings, got %s", got.OverallStatus)
	}
	if !got.IsInterstate {
		t.Error("expected interstate")
	}
	if !slices.Equal(got.TransitStates, []string{"TX", "OR"}) {
		t.Errorf("unexpected transit states %v", got.TransitStates)
	}
	if len(got.Blockers) != 0 {
		t.Errorf("expected no blockers, got %v", got.Blockers)
	}
	if !slices.Contains(got.Warnings, "Oregon: Oregon Weight-Mile Tax") {
		t.Errorf("expected Oregon weight tax warning, got %v", got.Warnings)
	}
}

func TestAnalyzeRouteCompliance_Blocked(t *testing.T) {
	svc := newRouteService(&domain.Shipment{
		ID:          "LOAD-9",
		OriginState: "TX",
		DestState:   "OR",
		Cargo:       domain.Cargo{WeightLbs: 30000, IsOversized: true},
	}, nil)

	got, err := svc.AnalyzeRouteCompliance(context.Background(), "LOAD-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OverallStatus != domain.RouteBlocked {
		t.Errorf("expected blocked, got %s", got.OverallStatus)
	}
	if !slices.Equal(got.Blockers, []string{"Texas: Oversize/Overweight Permit Required"}) {
		t.Errorf("unexpected blockers %v", got.Blockers)
	}
}

func TestAnalyzeRouteCompliance_IncludesCrossedStates(t *testing.T) {
	svc := newRouteService(&domain.Shipment{
		ID:          "LOAD-9",
		OriginState: "TX",
		DestState:   "AZ",
		Cargo:       domain.Cargo{WeightLbs: 20000},
	}, []string{"NM", "AZ"})

	got, err := svc.AnalyzeRouteCompliance(context.Background(), "LOAD-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got.TransitStates, []string{"TX", "AZ", "NM"}) {
		t.Errorf("unexpected transit states %v", got.TransitStates)
	}
	if got.OverallStatus != domain.RouteClear {
		t.Errorf("expected clear below weight thresholds, got %s", got.OverallStatus)
	}
}

func TestAnalyzeRouteCompliance_Intrastate(t *testing.T) {
	svc := newRouteService(&domain.Shipment{ID: "LOAD-9", OriginState: "tx", DestState: "TX"}, nil)

	got, err := svc.AnalyzeRouteCompliance(context.Background(), "LOAD-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsInterstate {
		t.Error("expected intrastate")
	}
	if len(got.Compliance) != 1 {
		t.Errorf("expected one state evaluated, got %d", len(got.Compliance))
	}
}

func TestAnalyzeRouteCompliance_NotFound(t *testing.T) {
	svc := newRouteService(&domain.Shipment{ID: "LOAD-9"}, nil)

	_, err := svc.AnalyzeRouteCompliance(context.Background(), "NOPE")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
