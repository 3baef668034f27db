package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"toyrental/internal/config"
	"toyrental/internal/database"
	"toyrental/internal/domain"
	"toyrental/internal/repository"
)

// Seeds the first administrator account and a small demo catalogue.
// Safe to run repeatedly: it does nothing once users exist.
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

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	equipment := repository.NewEquipmentRepository(db)

	total, err := users.Count(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if total > 0 {
		log.Println("users already present, nothing to seed")
		return
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	admin := &domain.User{
		Username:     "admin",
		Email:        "admin@toyrental.local",
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("seeding admin failed: %v", err)
	}
	log.Printf("admin user created: %s", admin.Username)

	demo := []domain.Equipment{
		{Name: "Bounce Castle", Description: "5x5m inflatable castle", Status: domain.EquipmentAvailable},
		{Name: "Trampoline", Description: "3m round trampoline with net", Status: domain.EquipmentAvailable},
		{Name: "Ball Pit", Description: "2x2m pit with 500 balls", Status: domain.EquipmentAvailable},
		{Name: "Slide Combo", Description: "Inflatable slide, under repair", Status: domain.EquipmentMaintenance},
	}
	for i := range demo {
		if err := equipment.Create(ctx, &demo[i]); err != nil {
			log.Fatalf("seeding equipment failed: %v", err)
		}
	}
	log.Printf("seeded %d equipment items", len(demo))
}
