package domain

import "time"

type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentReserved    EquipmentStatus = "reserved"
	EquipmentMaintenance EquipmentStatus = "maintenance"
)

type Equipment struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Status      EquipmentStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Rentable reports whether new reservations may target this item.
// Items under maintenance are withdrawn from booking entirely.
func (e *Equipment) Rentable() bool {
	return e.Status != EquipmentMaintenance
}
