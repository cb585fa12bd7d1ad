package service

import (
	"context"
	"fmt"

	"github.com/nandanugg/fleet-compliance/module/core/compliance"
	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

type RouteService struct {
	shipments database.ShipmentRepository
	engine    *compliance.Engine
}

func NewRouteService(shipments database.ShipmentRepository, engine *compliance.Engine) *RouteService {
	return &RouteService{shipments: shipments, engine: engine}
}

// AnalyzeRouteCompliance evaluates every state the load is expected to pass
// through: origin, destination and any state it has already crossed into.
func (s *RouteService) AnalyzeRouteCompliance(ctx context.Context, loadID string) (*domain.RouteCompliance, error) {
	shipment, err := s.shipments.Get(ctx, loadID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", loadID, err)
	}

	entered, err := s.shipments.ListEnteredStates(ctx, loadID)
	if err != nil {
		return nil, err
	}

	states := append([]string{shipment.OriginState, shipment.DestState}, entered...)
	analysis := s.engine.AnalyzeStates(states, shipment.Cargo)

	result := &domain.RouteCompliance{
		LoadID:        shipment.ID,
		OriginState:   compliance.NormalizeState(shipment.OriginState),
		DestState:     compliance.NormalizeState(shipment.DestState),
		TransitStates: make([]string, 0, len(analysis)),
		Compliance:    analysis,
		OverallStatus: compliance.RouteStatus(analysis),
		Blockers:      []string{},
		Warnings:      []string{},
	}
	result.IsInterstate = result.OriginState != result.DestState

	for _, sc := range analysis {
		result.TransitStates = append(result.TransitStates, sc.StateCode)
		for _, item := range sc.Checks {
			msg := sc.StateName + ": " + item.Label
			switch {
			case item.IsBlocking:
				result.Blockers = append(result.Blockers, msg)
			case item.Status != domain.StatusPass:
				result.Warnings = append(result.Warnings, msg)
			}
		}
	}
	return result, nil
}
