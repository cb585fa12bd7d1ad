package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nandanugg/fleet-compliance/module/core/compliance"
	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/database"
)

type ZoneService struct {
	repo database.ZoneRepository
}

func NewZoneService(repo database.ZoneRepository) *ZoneService {
	return &ZoneService{repo: repo}
}

func (s *ZoneService) Create(ctx context.Context, z *domain.Zone) error {
	z.Name = strings.TrimSpace(z.Name)
	if z.Name == "" {
		return fmt.Errorf("zone name is required: %w", domain.ErrInvalidInput)
	}
	if err := geometry.Validate(z.Shape); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if z.StateCode != "" {
		z.StateCode = compliance.NormalizeState(z.StateCode)
		if !compliance.IsKnownState(z.StateCode) {
			return fmt.Errorf("unknown state %q: %w", z.StateCode, domain.ErrInvalidInput)
		}
	}
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	return s.repo.Create(ctx, z)
}

func (s *ZoneService) List(ctx context.Context) ([]domain.Zone, error) {
	return s.repo.List(ctx)
}
