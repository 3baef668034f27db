package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"toyrental/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	IsAdmin      bool      `gorm:"column:is_admin"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		IsAdmin:      m.IsAdmin,
		CreatedAt:    m.CreatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := userModel{
		Username:     strings.TrimSpace(u.Username),
		Email:        strings.ToLower(strings.TrimSpace(u.Email)),
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).Count(&cnt)
	return cnt, tx.Error
}
