package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
	"github.com/nandanugg/fleet-compliance/module/core/scoring"
)

type DriverService struct {
	repo database.LocationRepository
}

func NewDriverService(repo database.LocationRepository) *DriverService {
	return &DriverService{repo: repo}
}

func (s *DriverService) Score(ctx context.Context, driverID string, start, end time.Time) (*domain.DriverScore, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end before start: %w", domain.ErrInvalidInput)
	}

	reports, err := s.repo.GetDriverHistory(ctx, &domain.DriverHistoryQuery{
		DriverID: driverID,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return nil, err
	}

	score := scoring.Calculate(driverID, start, end, reports)
	return &score, nil
}
