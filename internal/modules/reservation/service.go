package reservation

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"toyrental/internal/domain"
	"toyrental/internal/repository"
)

type Service struct {
	reservations ReservationRepository
	equipment    EquipmentRepository
	notifs       NotificationSender
}

func NewService(
	reservations ReservationRepository,
	equipment EquipmentRepository,
	notifs NotificationSender,
) *Service {
	return &Service{
		reservations: reservations,
		equipment:    equipment,
		notifs:       notifs,
	}
}

type CreateRequest struct {
	EquipmentID   int64
	ClientName    string
	ClientContact string
	StartDate     time.Time
	EndDate       time.Time
}

// CreateResult carries the committed reservation plus the outcome of the
// best-effort confirmation dispatch. NotificationErr being set does not
// mean the booking failed.
type CreateResult struct {
	Reservation     *domain.Reservation
	NotificationErr error
}

// CheckAvailability is the read-only availability predicate: true iff no
// active reservation for the equipment overlaps the inclusive range.
func (s *Service) CheckAvailability(ctx context.Context, equipmentID int64, start, end time.Time) (bool, error) {
	start, end = domain.Day(start), domain.Day(end)
	if start.After(end) {
		return false, ErrValidation
	}

	if _, err := s.equipment.GetByID(ctx, equipmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	return s.reservations.CheckAvailability(ctx, equipmentID, start, end)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.EquipmentID <= 0 || req.ClientName == "" || req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, ErrValidation
	}

	start, end := domain.Day(req.StartDate), domain.Day(req.EndDate)
	if start.After(end) {
		return nil, ErrValidation
	}
	if start.Before(domain.Day(time.Now())) {
		return nil, ErrValidation
	}

	eq, err := s.equipment.GetByID(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !eq.Rentable() {
		return nil, ErrMaintenance
	}

	res := &domain.Reservation{
		Reference:     uuid.NewString(),
		EquipmentID:   req.EquipmentID,
		ClientName:    req.ClientName,
		ClientContact: strings.TrimSpace(req.ClientContact),
		StartDate:     start,
		EndDate:       end,
	}

	// Conflict check and insert are a single transaction inside Reserve;
	// the re-checks there are authoritative, the ones above just give
	// earlier errors.
	if err := s.reservations.Reserve(ctx, res); err != nil {
		switch {
		case errors.Is(err, repository.ErrRangeConflict):
			return nil, ErrConflict
		case errors.Is(err, repository.ErrEquipmentUnavailable):
			return nil, ErrMaintenance
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	res.Equipment = eq

	result := &CreateResult{Reservation: res}
	if s.notifs != nil && res.ClientContact != "" {
		if err := s.notifs.SendConfirmation(ctx, res); err != nil {
			log.Printf("confirmation dispatch failed reservation=%s contact=%s: %v",
				res.Reference, res.ClientContact, err)
			result.NotificationErr = err
		}
	}

	return result, nil
}

// Finalize closes a reservation and frees its equipment. Not idempotent:
// a second call reports ErrAlreadyFinalized.
func (s *Service) Finalize(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.reservations.Finalize(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyFinalized):
			return nil, ErrAlreadyFinalized
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	return res, nil
}

// Delete permanently removes a reservation regardless of state.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Reservation, error) {
	return s.reservations.List(ctx)
}

// StartingOn feeds the reminder job: active reservations whose rental
// period begins on the given day.
func (s *Service) StartingOn(ctx context.Context, day time.Time) ([]domain.Reservation, error) {
	return s.reservations.StartingOn(ctx, day)
}
