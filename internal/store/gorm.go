package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ticketline/ticketline/internal/models"
)

type GormUserStore struct {
	DB *gorm.DB
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	tx := s.DB.WithContext(ctx).Where("email = ?", user.Email).FirstOrCreate(user)
	if tx.Error != nil {
		if isDuplicateErr(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

type GormRefreshTokenStore struct {
	DB *gorm.DB
}

func (s *GormRefreshTokenStore) Create(ctx context.Context, token *models.RefreshToken) error {
	return s.DB.WithContext(ctx).Create(token).Error
}

func (s *GormRefreshTokenStore) FindByToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stored, nil
}

func (s *GormRefreshTokenStore) DeleteByID(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Delete(&models.RefreshToken{}, id).Error
}

func (s *GormRefreshTokenStore) DeleteByToken(ctx context.Context, tokenHash string) (int64, error) {
	tx := s.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&models.RefreshToken{})
	return tx.RowsAffected, tx.Error
}

// isDuplicateErr catches the unique-constraint violation a concurrent insert
// loses with, across the postgres and sqlite drivers.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
