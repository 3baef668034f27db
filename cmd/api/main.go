package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"toyrental/internal/config"
	"toyrental/internal/database"
	"toyrental/internal/jobs"
	"toyrental/internal/mailer"
	"toyrental/internal/middleware"
	"toyrental/internal/modules/auth"
	"toyrental/internal/modules/equipment"
	"toyrental/internal/modules/report"
	"toyrental/internal/modules/reservation"
	jwtsvc "toyrental/internal/pkg/jwt"
	"toyrental/internal/repository"
)

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
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var sender mailer.Sender = mailer.LogMailer{}
	if cfg.SMTP.Configured() {
		sender, err = mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			log.Fatalf("mailer setup failed: %v", err)
		}
	}

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	equipmentService := equipment.NewService(equipmentRepo)
	equipmentHandler := equipment.NewHandler(equipmentService)

	reservationService := reservation.NewService(reservationRepo, equipmentRepo, sender)
	reservationHandler := reservation.NewHandler(reservationService)

	reportService := report.NewService(reservationRepo, equipmentRepo)
	reportHandler := report.NewHandler(reportService)

	if cfg.ReminderEnabled {
		job := jobs.NewReminderJob(reservationRepo, sender, cfg.ReminderHour)
		job.Start(context.Background())
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger())

	r.GET("/manage/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// registration is open for bootstrap; a valid token upgrades it
		public := v1.Group("/")
		public.Use(middleware.OptionalAuth(j))
		authHandler.RegisterRoutes(public)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			equipmentHandler.RegisterRoutes(protected)
			reservationHandler.RegisterRoutes(protected)
			reportHandler.RegisterRoutes(protected)

			admin := protected.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				equipmentHandler.RegisterAdminRoutes(admin)
				reservationHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
