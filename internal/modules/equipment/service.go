package equipment

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"toyrental/internal/domain"
	"toyrental/internal/repository"
)

type Service struct {
	equipment EquipmentRepository
}

func NewService(equipment EquipmentRepository) *Service {
	return &Service{equipment: equipment}
}

type CreateRequest struct {
	Name        string
	Description string
	Status      domain.EquipmentStatus
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Equipment, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrValidation
	}

	status := req.Status
	if status == "" {
		status = domain.EquipmentAvailable
	}
	// "reserved" is engine-derived state, never set by hand.
	if status != domain.EquipmentAvailable && status != domain.EquipmentMaintenance {
		return nil, ErrValidation
	}

	e := &domain.Equipment{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Status:      status,
	}
	if err := s.equipment.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	e, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Equipment, error) {
	return s.equipment.List(ctx)
}

// SetStatus is the administrator's manual override: putting an item into
// maintenance or bringing it back. The reserved state belongs to the
// reservation engine and cannot be assigned here.
func (s *Service) SetStatus(ctx context.Context, id int64, status domain.EquipmentStatus) (*domain.Equipment, error) {
	if status != domain.EquipmentAvailable && status != domain.EquipmentMaintenance {
		return nil, ErrValidation
	}

	if err := s.equipment.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete refuses while any reservation rows reference the equipment,
// finalized ones included: rental history stays intact.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.equipment.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrEquipmentInUse):
			return ErrHasReservations
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrNotFound
		default:
			return err
		}
	}
	return nil
}
