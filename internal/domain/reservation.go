package domain

import "time"

type Reservation struct {
	ID            int64      `json:"id"`
	Reference     string     `json:"reference"`
	EquipmentID   int64      `json:"equipment_id" validate:"required"`
	ClientName    string     `json:"client_name" validate:"required"`
	ClientContact string     `json:"client_contact,omitempty"`
	StartDate     time.Time  `json:"start_date" validate:"required"`
	EndDate       time.Time  `json:"end_date" validate:"required"`
	Finalized     bool       `json:"finalized"`
	FinalizedAt   *time.Time `json:"finalized_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	Equipment *Equipment `json:"equipment,omitempty"`
}

// Active reservations count toward conflict checks.
func (r *Reservation) Active() bool {
	return !r.Finalized
}

// DurationDays is the billed rental length. Both endpoints are included,
// so a one-day rental (start == end) counts as 1.
func (r *Reservation) DurationDays() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// Overlaps applies the inclusive range intersection rule: two ranges
// conflict when start1 <= end2 AND start2 <= end1. A reservation ending
// on the day another starts is a conflict.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !start.After(r.EndDate)
}

// Day truncates t to midnight UTC. All reservation dates are stored at
// day granularity; comparisons assume this normalization.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
