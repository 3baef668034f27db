package jobs

import (
	"context"
	"log"
	"time"

	"toyrental/internal/domain"
)

// ReservationFinder is the read-only feed of upcoming reservations.
type ReservationFinder interface {
	StartingOn(ctx context.Context, day time.Time) ([]domain.Reservation, error)
}

// ReminderSender delivers the day-before pickup reminder.
type ReminderSender interface {
	SendReminder(ctx context.Context, res *domain.Reservation) error
}

// ReminderJob mails clients whose rental starts tomorrow. It only reads
// reservation data and never holds locks that could block bookings.
type ReminderJob struct {
	reservations ReservationFinder
	mailer       ReminderSender
	hour         int
}

func NewReminderJob(reservations ReservationFinder, mailer ReminderSender, hour int) *ReminderJob {
	return &ReminderJob{
		reservations: reservations,
		mailer:       mailer,
		hour:         hour,
	}
}

// Run performs one reminder pass. Per-reservation delivery failures are
// logged and skipped so one bad address never starves the rest.
func (j *ReminderJob) Run(ctx context.Context) error {
	tomorrow := domain.Day(time.Now().AddDate(0, 0, 1))

	upcoming, err := j.reservations.StartingOn(ctx, tomorrow)
	if err != nil {
		log.Printf("reminder check failed: %v", err)
		return err
	}

	log.Printf("reminder check: %d reservations starting %s", len(upcoming), tomorrow.Format("2006-01-02"))

	sent := 0
	for i := range upcoming {
		res := &upcoming[i]
		if res.ClientContact == "" {
			continue
		}
		if err := j.mailer.SendReminder(ctx, res); err != nil {
			log.Printf("reminder dispatch failed reservation=%s to=%s: %v", res.Reference, res.ClientContact, err)
			continue
		}
		sent++
	}

	log.Printf("reminder run complete: sent=%d of %d", sent, len(upcoming))
	return nil
}

// Start launches the daily loop in a goroutine. The first pass runs at
// the next occurrence of the configured hour, then every 24h.
func (j *ReminderJob) Start(ctx context.Context) {
	go func() {
		for {
			wait := time.Until(nextRunAfter(time.Now(), j.hour))
			log.Printf("next reminder run in %s", wait.Round(time.Second))

			select {
			case <-ctx.Done():
				log.Println("reminder loop stopped")
				return
			case <-time.After(wait):
				if err := j.Run(ctx); err != nil {
					log.Printf("reminder run failed: %v", err)
				}
			}
		}
	}()
}

func nextRunAfter(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
