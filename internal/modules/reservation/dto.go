package reservation

import (
	"time"

	"toyrental/internal/domain"
)

const dateLayout = "2006-01-02"

type CreateReservationRequest struct {
	EquipmentID   int64  `json:"equipment_id" binding:"required"`
	ClientName    string `json:"client_name" binding:"required"`
	ClientContact string `json:"client_contact"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
}

type ReservationResponse struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	EquipmentID   int64     `json:"equipment_id"`
	EquipmentName string    `json:"equipment_name,omitempty"`
	ClientName    string    `json:"client_name"`
	ClientContact string    `json:"client_contact,omitempty"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	DurationDays  int       `json:"duration_days"`
	Finalized     bool      `json:"finalized"`
	CreatedAt     time.Time `json:"created_at"`
}

func toResponse(res *domain.Reservation) ReservationResponse {
	out := ReservationResponse{
		ID:            res.ID,
		Reference:     res.Reference,
		EquipmentID:   res.EquipmentID,
		ClientName:    res.ClientName,
		ClientContact: res.ClientContact,
		StartDate:     res.StartDate.Format(dateLayout),
		EndDate:       res.EndDate.Format(dateLayout),
		DurationDays:  res.DurationDays(),
		Finalized:     res.Finalized,
		CreatedAt:     res.CreatedAt,
	}
	if res.Equipment != nil {
		out.EquipmentName = res.Equipment.Name
	}
	return out
}
