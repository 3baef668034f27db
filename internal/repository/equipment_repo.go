package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"toyrental/internal/domain"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

type equipmentModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (equipmentModel) TableName() string { return "equipment" }

func toDomainEquipment(m equipmentModel) *domain.Equipment {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}

	return &domain.Equipment{
		ID:          m.ID,
		Name:        m.Name,
		Description: desc,
		Status:      domain.EquipmentStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}
}

func toEquipmentModel(e *domain.Equipment) equipmentModel {
	var desc *string
	if e.Description != "" {
		v := e.Description
		desc = &v
	}

	return equipmentModel{
		ID:          e.ID,
		Name:        e.Name,
		Description: desc,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	m := toEquipmentModel(e)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*e = *toDomainEquipment(m)
	return nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	var m equipmentModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainEquipment(m), nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]domain.Equipment, error) {
	var ms []equipmentModel
	tx := r.db.WithContext(ctx).Order("name").Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Equipment, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainEquipment(m))
	}
	return out, nil
}

func (r *EquipmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.EquipmentStatus) error {
	tx := r.db.WithContext(ctx).Model(&equipmentModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the equipment row only when no reservation rows, active
// or finalized, reference it. The guard and the delete run in one
// transaction so a concurrent booking cannot slip in between.
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m equipmentModel
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}

		var cnt int64
		if err := tx.Model(&reservationModel{}).
			Where("equipment_id = ?", id).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrEquipmentInUse
		}

		return tx.Delete(&equipmentModel{}, id).Error
	})
}
