package service

import (
	"context"
	"fmt"
	"math"

	"github.com/nandanugg/fleet-compliance/module/core/compliance"
	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

type IFTAService struct {
	mileage database.MileageRepository
}

func NewIFTAService(mileage database.MileageRepository) *IFTAService {
	return &IFTAService{mileage: mileage}
}

// Report returns per-state totals for the window. Records still open count
// with what they have accrued so far.
func (s *IFTAService) Report(ctx context.Context, query *domain.IFTAQuery) ([]domain.IFTARow, error) {
	if query.Start.IsZero() || query.End.IsZero() || query.End.Before(query.Start) {
		return nil, fmt.Errorf("a valid date range is required: %w", domain.ErrInvalidInput)
	}

	rows, err := s.mileage.IFTAReport(ctx, query)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		r := &rows[i]
		r.StateName = compliance.StateName(r.StateCode)
		if r.TotalFuel > 0 {
			r.MPG = math.Round(r.TotalMiles/r.TotalFuel*100) / 100
		}
	}
	if rows == nil {
		rows = []domain.IFTARow{}
	}
	return rows, nil
}
