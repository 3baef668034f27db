package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"toyrental/internal/database"
	"toyrental/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// :memory: gives every pooled connection its own database; pin the
	// pool to one connection so all transactions share state.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func createEquipment(t *testing.T, db *gorm.DB, status domain.EquipmentStatus) *domain.Equipment {
	t.Helper()
	e := &domain.Equipment{Name: "Tent-A", Status: status}
	if err := NewEquipmentRepository(db).Create(context.Background(), e); err != nil {
		t.Fatalf("failed to create equipment: %v", err)
	}
	return e
}

func newReservation(equipmentID int64, start, end time.Time) *domain.Reservation {
	return &domain.Reservation{
		Reference:   uuid.NewString(),
		EquipmentID: equipmentID,
		ClientName:  "Alice",
		StartDate:   start,
		EndDate:     end,
	}
}

func TestReserveOverlapRules(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)

	// day 1-5 succeeds
	if err := repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 5))); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	// intersecting range conflicts
	err := repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 3), date(2024, 6, 7)))
	if !errors.Is(err, ErrRangeConflict) {
		t.Fatalf("expected ErrRangeConflict, got %v", err)
	}

	// shared endpoint conflicts (inclusive overlap)
	err = repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 5), date(2024, 6, 9)))
	if !errors.Is(err, ErrRangeConflict) {
		t.Fatalf("expected ErrRangeConflict on shared endpoint, got %v", err)
	}

	// adjacent range (day 6-10) does not conflict
	if err := repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 6), date(2024, 6, 10))); err != nil {
		t.Fatalf("adjacent reservation failed: %v", err)
	}
}

func TestReserveSetsStatusAndFinalizeReleases(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	equipRepo := NewEquipmentRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)

	res := newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 3))
	if err := repo.Reserve(ctx, res); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	got, _ := equipRepo.GetByID(ctx, eq.ID)
	if got.Status != domain.EquipmentReserved {
		t.Fatalf("equipment status = %s, want reserved", got.Status)
	}

	finalized, err := repo.Finalize(ctx, res.ID)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !finalized.Finalized || finalized.FinalizedAt == nil {
		t.Fatal("reservation not marked finalized")
	}

	got, _ = equipRepo.GetByID(ctx, eq.ID)
	if got.Status != domain.EquipmentAvailable {
		t.Fatalf("equipment status after finalize = %s, want available", got.Status)
	}

	// second finalize must fail, not silently succeed
	if _, err := repo.Finalize(ctx, res.ID); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}
}

func TestFinalizeKeepsReservedWhileOthersActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	equipRepo := NewEquipmentRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)

	first := newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 3))
	second := newReservation(eq.ID, date(2024, 6, 10), date(2024, 6, 12))
	if err := repo.Reserve(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.Reserve(ctx, second); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Finalize(ctx, first.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := equipRepo.GetByID(ctx, eq.ID)
	if got.Status != domain.EquipmentReserved {
		t.Fatalf("equipment status = %s, want reserved while second booking active", got.Status)
	}
}

func TestFinalizedReservationFreesRange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)

	res := newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 5))
	if err := repo.Reserve(ctx, res); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Finalize(ctx, res.ID); err != nil {
		t.Fatal(err)
	}

	// finalized reservations no longer block the range
	if err := repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 2), date(2024, 6, 4))); err != nil {
		t.Fatalf("range held by finalized reservation: %v", err)
	}
}

func TestReserveMaintenanceRefused(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentMaintenance)

	err := repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 3)))
	if !errors.Is(err, ErrEquipmentUnavailable) {
		t.Fatalf("expected ErrEquipmentUnavailable, got %v", err)
	}
}

func TestDeleteReservationFreesEquipment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	equipRepo := NewEquipmentRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)

	res := newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 3))
	if err := repo.Reserve(ctx, res); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, res.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := equipRepo.GetByID(ctx, eq.ID)
	if got.Status != domain.EquipmentAvailable {
		t.Fatalf("equipment status = %s, want available after delete", got.Status)
	}

	if err := repo.Delete(ctx, res.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found on second delete, got %v", err)
	}
}

func TestDeleteEquipmentGuardedByReservations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	equipRepo := NewEquipmentRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)

	res := newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 3))
	if err := repo.Reserve(ctx, res); err != nil {
		t.Fatal(err)
	}

	if err := equipRepo.Delete(ctx, eq.ID); !errors.Is(err, ErrEquipmentInUse) {
		t.Fatalf("expected ErrEquipmentInUse, got %v", err)
	}

	// even finalized history blocks deletion
	if _, err := repo.Finalize(ctx, res.ID); err != nil {
		t.Fatal(err)
	}
	if err := equipRepo.Delete(ctx, eq.ID); !errors.Is(err, ErrEquipmentInUse) {
		t.Fatalf("expected ErrEquipmentInUse with finalized history, got %v", err)
	}

	// equipment and reservation untouched by the refused delete
	if _, err := equipRepo.GetByID(ctx, eq.ID); err != nil {
		t.Fatalf("equipment disappeared: %v", err)
	}
	if _, err := repo.GetByID(ctx, res.ID); err != nil {
		t.Fatalf("reservation disappeared: %v", err)
	}

	// with history removed, deletion goes through
	if err := repo.Delete(ctx, res.ID); err != nil {
		t.Fatal(err)
	}
	if err := equipRepo.Delete(ctx, eq.ID); err != nil {
		t.Fatalf("delete after history cleanup failed: %v", err)
	}
}

func TestStartingOn(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)
	other := createEquipment(t, db, domain.EquipmentAvailable)

	target := date(2024, 6, 10)
	if err := repo.Reserve(ctx, newReservation(eq.ID, target, date(2024, 6, 12))); err != nil {
		t.Fatal(err)
	}
	if err := repo.Reserve(ctx, newReservation(other.ID, target, date(2024, 6, 11))); err != nil {
		t.Fatal(err)
	}
	if err := repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 20), date(2024, 6, 22))); err != nil {
		t.Fatal(err)
	}

	// a finalized reservation starting the same day is not reported
	done := newReservation(other.ID, date(2024, 6, 13), date(2024, 6, 14))
	if err := repo.Reserve(ctx, done); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Finalize(ctx, done.ID); err != nil {
		t.Fatal(err)
	}

	got, err := repo.StartingOn(ctx, target)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("StartingOn returned %d reservations, want 2", len(got))
	}
	for _, r := range got {
		if !r.StartDate.Equal(target) {
			t.Errorf("unexpected start date %s", r.StartDate)
		}
		if r.Equipment == nil {
			t.Error("equipment not attached")
		}
	}
}

func TestCheckAvailabilityReadOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	eq := createEquipment(t, db, domain.EquipmentAvailable)

	ok, err := repo.CheckAvailability(ctx, eq.ID, date(2024, 6, 1), date(2024, 6, 5))
	if err != nil || !ok {
		t.Fatalf("expected available, got ok=%v err=%v", ok, err)
	}

	if err := repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 5))); err != nil {
		t.Fatal(err)
	}

	ok, err = repo.CheckAvailability(ctx, eq.ID, date(2024, 6, 5), date(2024, 6, 9))
	if err != nil || ok {
		t.Fatalf("expected unavailable on shared endpoint, got ok=%v err=%v", ok, err)
	}
	ok, err = repo.CheckAvailability(ctx, eq.ID, date(2024, 6, 6), date(2024, 6, 9))
	if err != nil || !ok {
		t.Fatalf("expected available on adjacent range, got ok=%v err=%v", ok, err)
	}
}

// Two concurrent bookings for overlapping ranges: exactly one must win
// every trial. The check and the insert share one transaction, so the
// loser sees the winner's row.
func TestConcurrentReserveSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	equipRepo := NewEquipmentRepository(db)
	ctx := context.Background()

	const trials = 20
	for trial := 0; trial < trials; trial++ {
		eq := &domain.Equipment{
			Name:   fmt.Sprintf("Tent-%d", trial),
			Status: domain.EquipmentAvailable,
		}
		if err := equipRepo.Create(ctx, eq); err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.Reserve(ctx, newReservation(eq.ID, date(2024, 6, 1), date(2024, 6, 5)))
			}(i)
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrRangeConflict):
				conflicts++
			default:
				t.Fatalf("trial %d: unexpected error: %v", trial, err)
			}
		}
		if wins != 1 || conflicts != 1 {
			t.Fatalf("trial %d: wins=%d conflicts=%d, want exactly one of each", trial, wins, conflicts)
		}
	}
}
