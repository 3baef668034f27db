package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"toyrental/internal/config"
	"toyrental/internal/database"
	"toyrental/internal/jobs"
	"toyrental/internal/mailer"
	"toyrental/internal/repository"
)

// One-shot reminder pass for deployments that prefer an external cron
// over the in-process loop in cmd/api.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	var sender mailer.Sender = mailer.LogMailer{}
	if cfg.SMTP.Configured() {
		sender, err = mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			log.Fatal(err)
		}
	}

	job := jobs.NewReminderJob(repository.NewReservationRepository(db), sender, cfg.ReminderHour)
	if err := job.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
