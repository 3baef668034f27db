package reservation

import (
	"context"
	"time"

	"toyrental/internal/domain"
)

// ReservationRepository defines the persistence operations the engine needs.
type ReservationRepository interface {
	CheckAvailability(ctx context.Context, equipmentID int64, start, end time.Time) (bool, error)
	Reserve(ctx context.Context, res *domain.Reservation) error
	Finalize(ctx context.Context, id int64) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context) ([]domain.Reservation, error)
	StartingOn(ctx context.Context, day time.Time) ([]domain.Reservation, error)
}

// EquipmentRepository is the read side the engine needs for validation.
type EquipmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
}

// NotificationSender delivers the post-commit confirmation message.
// Delivery is best-effort; a failure never affects the reservation.
type NotificationSender interface {
	SendConfirmation(ctx context.Context, res *domain.Reservation) error
}
