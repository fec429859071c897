package store

import (
	"context"
	"errors"

	"github.com/ticketline/ticketline/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// UserStore and RefreshTokenStore are the two collaborators of the session
// manager. They are injected explicitly so the auth core never touches the
// database handle itself.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	DeleteByID(ctx context.Context, id uint) error
	DeleteByToken(ctx context.Context, tokenHash string) (int64, error)
}
