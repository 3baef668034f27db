package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"toyrental/internal/domain"
)

// Sentinel failures surfaced by the transactional write paths. The
// reservation module maps them onto its caller-facing error kinds.
var (
	ErrRangeConflict        = errors.New("reservation range conflict")
	ErrEquipmentUnavailable = errors.New("equipment not rentable")
	ErrAlreadyFinalized     = errors.New("reservation already finalized")
	ErrEquipmentInUse       = errors.New("equipment has reservations")
)

type ReservationRepository struct {
	db *gorm.DB
}

// lockForUpdate takes a row lock where the dialect supports it. SQLite
// has no FOR UPDATE; its single-writer model serializes the
// check-then-insert on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	Reference     string     `gorm:"column:reference;uniqueIndex"`
	EquipmentID   int64      `gorm:"column:equipment_id;index"`
	ClientName    string     `gorm:"column:client_name"`
	ClientContact *string    `gorm:"column:client_contact"`
	StartDate     time.Time  `gorm:"column:start_date"`
	EndDate       time.Time  `gorm:"column:end_date"`
	Finalized     bool       `gorm:"column:finalized"`
	FinalizedAt   *time.Time `gorm:"column:finalized_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func toDomainReservation(m reservationModel) *domain.Reservation {
	var contact string
	if m.ClientContact != nil {
		contact = *m.ClientContact
	}

	return &domain.Reservation{
		ID:            m.ID,
		Reference:     m.Reference,
		EquipmentID:   m.EquipmentID,
		ClientName:    m.ClientName,
		ClientContact: contact,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		Finalized:     m.Finalized,
		FinalizedAt:   m.FinalizedAt,
		CreatedAt:     m.CreatedAt,
	}
}

func toReservationModel(r *domain.Reservation) reservationModel {
	var contact *string
	if r.ClientContact != "" {
		v := r.ClientContact
		contact = &v
	}

	return reservationModel{
		ID:            r.ID,
		Reference:     r.Reference,
		EquipmentID:   r.EquipmentID,
		ClientName:    r.ClientName,
		ClientContact: contact,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Finalized:     r.Finalized,
		FinalizedAt:   r.FinalizedAt,
		CreatedAt:     r.CreatedAt,
	}
}

// CheckAvailability reports whether the inclusive range is free of
// active reservations for the equipment. Read-only; the authoritative
// check happens again inside Reserve under the row lock.
func (r *ReservationRepository) CheckAvailability(ctx context.Context, equipmentID int64, start, end time.Time) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("equipment_id = ? AND finalized = ? AND start_date <= ? AND end_date >= ?",
			equipmentID, false, end, start).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt == 0, nil
}

// Reserve performs the conflict check and the insert as one atomic unit.
// The equipment row is locked FOR UPDATE for the duration of the
// transaction so two concurrent bookings for overlapping ranges cannot
// both pass the check. On PostgreSQL the reservations_no_overlap
// exclusion constraint backs this up; a violation maps to
// ErrRangeConflict the same way either path is reached.
func (r *ReservationRepository) Reserve(ctx context.Context, res *domain.Reservation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq equipmentModel
		if err := lockForUpdate(tx).First(&eq, res.EquipmentID).Error; err != nil {
			return err
		}

		if domain.EquipmentStatus(eq.Status) == domain.EquipmentMaintenance {
			return ErrEquipmentUnavailable
		}

		var cnt int64
		if err := tx.Model(&reservationModel{}).
			Where("equipment_id = ? AND finalized = ? AND start_date <= ? AND end_date >= ?",
				res.EquipmentID, false, res.EndDate, res.StartDate).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrRangeConflict
		}

		m := toReservationModel(res)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		if err := tx.Model(&equipmentModel{}).
			Where("id = ?", res.EquipmentID).
			Update("status", string(domain.EquipmentReserved)).Error; err != nil {
			return err
		}

		*res = *toDomainReservation(m)
		return nil
	})
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23P01" {
			return ErrRangeConflict
		}
		return err
	}
	return nil
}

// Finalize marks the reservation complete and recomputes the equipment
// status. Calling it on an already-finalized reservation fails: closing
// a rental twice is an operator mistake worth surfacing.
func (r *ReservationRepository) Finalize(ctx context.Context, id int64) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m reservationModel
		if err := lockForUpdate(tx).First(&m, id).Error; err != nil {
			return err
		}

		if m.Finalized {
			return ErrAlreadyFinalized
		}

		now := time.Now().UTC()
		m.Finalized = true
		m.FinalizedAt = &now
		if err := tx.Save(&m).Error; err != nil {
			return err
		}

		if err := releaseEquipment(tx, m.EquipmentID); err != nil {
			return err
		}

		out = toDomainReservation(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the reservation outright, finalized or not, and frees
// the equipment. Destructive admin path, distinct from Finalize.
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m reservationModel
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&reservationModel{}, id).Error; err != nil {
			return err
		}

		return releaseEquipment(tx, m.EquipmentID)
	})
}

// releaseEquipment recomputes the explicit equipment status after a
// reservation is closed or removed. Maintenance is an admin decision
// and is never overridden here.
func releaseEquipment(tx *gorm.DB, equipmentID int64) error {
	var eq equipmentModel
	if err := tx.First(&eq, equipmentID).Error; err != nil {
		// Equipment may be gone on cascade cleanups; nothing to release.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if domain.EquipmentStatus(eq.Status) == domain.EquipmentMaintenance {
		return nil
	}

	var active int64
	if err := tx.Model(&reservationModel{}).
		Where("equipment_id = ? AND finalized = ?", equipmentID, false).
		Count(&active).Error; err != nil {
		return err
	}

	status := domain.EquipmentAvailable
	if active > 0 {
		status = domain.EquipmentReserved
	}
	return tx.Model(&equipmentModel{}).
		Where("id = ?", equipmentID).
		Update("status", string(status)).Error
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}

	res := toDomainReservation(m)
	r.attachEquipment(ctx, res)
	return res, nil
}

func (r *ReservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	var ms []reservationModel
	tx := r.db.WithContext(ctx).Order("start_date").Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return r.withEquipment(ctx, ms)
}

// StartingOn returns active reservations whose rental period begins on
// the given day. Feed for the reminder job; plain reads, no locks held.
func (r *ReservationRepository) StartingOn(ctx context.Context, day time.Time) ([]domain.Reservation, error) {
	day = domain.Day(day)

	var ms []reservationModel
	tx := r.db.WithContext(ctx).
		Where("finalized = ? AND start_date = ?", false, day).
		Order("id").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return r.withEquipment(ctx, ms)
}

func (r *ReservationRepository) CountForEquipment(ctx context.Context, equipmentID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("equipment_id = ?", equipmentID).
		Count(&cnt)
	return cnt, tx.Error
}

func (r *ReservationRepository) withEquipment(ctx context.Context, ms []reservationModel) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0, len(ms))
	for _, m := range ms {
		res := toDomainReservation(m)
		r.attachEquipment(ctx, res)
		out = append(out, *res)
	}
	return out, nil
}

func (r *ReservationRepository) attachEquipment(ctx context.Context, res *domain.Reservation) {
	var eq equipmentModel
	if err := r.db.WithContext(ctx).First(&eq, res.EquipmentID).Error; err == nil {
		res.Equipment = toDomainEquipment(eq)
	}
}
