package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/cache"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

type zoneChecker interface {
	CheckAndAlert(ctx context.Context, report *domain.PositionReport) ([]domain.ZoneTransitionEvent, error)
}

type mileageAccruer interface {
	AccrueMiles(ctx context.Context, prev, cur *domain.PositionReport) error
}

type LocationService struct {
	repo     database.LocationRepository
	geofence zoneChecker
	mileage  mileageAccruer
	locker   cache.VehicleLocker
	log      logrus.FieldLogger
}

func NewLocationService(repo database.LocationRepository, geofence zoneChecker, mileage mileageAccruer, locker cache.VehicleLocker, log logrus.FieldLogger) *LocationService {
	return &LocationService{
		repo:     repo,
		geofence: geofence,
		mileage:  mileage,
		locker:   locker,
		log:      log,
	}
}

// Ingest stores a position report and runs it through mileage accrual and
// zone evaluation while holding the vehicle lock.
//
// A report older than the vehicle's latest stored report is kept for history
// only. A redelivered copy of the latest report is evaluated again so a
// previously failed zone evaluation can complete; anything it already
// committed is not repeated.
func (s *LocationService) Ingest(ctx context.Context, report *domain.PositionReport) error {
	entry := s.log.WithFields(logrus.Fields{
		"vehicle_id":  report.VehicleID,
		"shipment_id": report.ShipmentID,
	})

	unlock, err := s.locker.Lock(ctx, report.VehicleID)
	switch {
	case errors.Is(err, cache.ErrLockNotObtained):
		return err
	case err != nil:
		entry.WithError(err).Warn("vehicle lock unavailable, ingesting unlocked")
	default:
		defer func() {
			if err := unlock(ctx); err != nil {
				entry.WithError(err).Warn("release vehicle lock")
			}
		}()
	}

	prev, err := s.repo.GetLatest(ctx, report.VehicleID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("previous position: %w", err)
	}

	inserted, err := s.repo.Insert(ctx, report)
	if err != nil {
		return err
	}

	switch {
	case !inserted:
		if prev == nil || !prev.Timestamp.Equal(report.Timestamp) {
			entry.Debug("duplicate position report")
			return nil
		}
		entry.Debug("duplicate of latest report, re-checking zones")
		return s.checkZones(ctx, entry, report)
	case prev != nil && !report.Timestamp.After(prev.Timestamp):
		entry.WithField("latest", prev.Timestamp).Info("late position report stored for history only")
		return nil
	}

	if err := s.repo.UpdateVehicleLocation(ctx, report); err != nil {
		return err
	}

	if prev != nil {
		if err := s.mileage.AccrueMiles(ctx, prev, report); err != nil {
			return fmt.Errorf("accrue miles: %w", err)
		}
	}

	return s.checkZones(ctx, entry, report)
}

func (s *LocationService) checkZones(ctx context.Context, entry logrus.FieldLogger, report *domain.PositionReport) error {
	events, err := s.geofence.CheckAndAlert(ctx, report)
	if err != nil {
		return fmt.Errorf("geofence: %w", err)
	}
	if len(events) > 0 {
		entry.WithField("events", len(events)).Debug("position produced zone transitions")
	}
	return nil
}

func (s *LocationService) GetLatest(ctx context.Context, vehicleID string) (*domain.PositionReport, error) {
	return s.repo.GetLatest(ctx, vehicleID)
}

func (s *LocationService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error) {
	if query.End.Before(query.Start) {
		return nil, fmt.Errorf("end before start: %w", domain.ErrInvalidInput)
	}
	return s.repo.GetHistory(ctx, query)
}

func (s *LocationService) GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.repo.GetAllVehicles(ctx)
}
