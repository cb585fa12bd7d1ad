package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
)

func TestIFTAReport(t *testing.T) {
	var gotQuery *domain.IFTAQuery
	repo := &mockMileageRepo{
		iftaReportFn: func(_ context.Context, q *domain.IFTAQuery) ([]domain.IFTARow, error) {
			gotQuery = q
			return []domain.IFTARow{
				{StateCode: "OR", TotalMiles: 200, TotalFuel: 32, TotalTolls: decimal.RequireFromString("15.75"), Trips: 2},
				{StateCode: "TX", TotalMiles: 410, Trips: 1},
			}, nil
		},
	}
	svc := NewIFTAService(repo)

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	rows, err := svc.Report(context.Background(), &domain.IFTAQuery{VehicleID: "TRK-7", Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.VehicleID != "TRK-7" {
		t.Errorf("expected vehicle filter to pass through, got %q", gotQuery.VehicleID)
	}
	if rows[0].StateName != "Oregon" || rows[0].TotalMiles != 200 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
	if rows[0].MPG != 6.25 {
		t.Errorf("expected 6.25 mpg, got %f", rows[0].MPG)
	}
	if rows[1].MPG != 0 {
		t.Errorf("expected no mpg without fuel, got %f", rows[1].MPG)
	}
}

func TestIFTAReport_Empty(t *testing.T) {
	repo := &mockMileageRepo{
		iftaReportFn: func(_ context.Context, _ *domain.IFTAQuery) ([]domain.IFTARow, error) { return nil, nil },
	}
	svc := NewIFTAService(repo)

	rows, err := svc.Report(context.Background(), &domain.IFTAQuery{Start: time.Unix(0, 0), End: time.Unix(100, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil report, got %v", rows)
	}
}

func TestIFTAReport_InvalidRange(t *testing.T) {
	svc := NewIFTAService(&mockMileageRepo{})

	tests := []struct {
		name  string
		query domain.IFTAQuery
	}{
		{"missing start", domain.IFTAQuery{End: time.Unix(100, 0)}},
		{"missing end", domain.IFTAQuery{Start: time.Unix(100, 0)}},
		{"end before start", domain.IFTAQuery{Start: time.Unix(100, 0), End: time.Unix(50, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Report(context.Background(), &tt.query)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
