package equipment

import (
	"context"

	"toyrental/internal/domain"
)

type EquipmentRepository interface {
	Create(ctx context.Context, e *domain.Equipment) error
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
	List(ctx context.Context) ([]domain.Equipment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.EquipmentStatus) error
	Delete(ctx context.Context, id int64) error
}
