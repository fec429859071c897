package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ticketline/ticketline/internal/hash"
	"github.com/ticketline/ticketline/internal/logging"
	"github.com/ticketline/ticketline/internal/models"
	"github.com/ticketline/ticketline/internal/store"
	"github.com/ticketline/ticketline/internal/tokens"
)

// AuthService owns registration, credential checks and the token lifecycle.
// The refresh token is NOT rotated on use: the same token keeps working
// until its own expiry or an explicit logout. Rotation-on-refresh would be
// the stronger contract and is the first candidate for a follow-up.
type AuthService struct {
	Users         store.UserStore
	RefreshTokens store.RefreshTokenStore

	JWTSecret     []byte
	RefreshSecret []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	BcryptCost     int
	MinPasswordLen int
}

type Session struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	AccessExp    time.Time   `json:"access_expires_at"`
	RefreshExp   time.Time   `json:"refresh_expires_at"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := s.validateRegister(in); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	// Role is pinned to the lowest privilege no matter what the caller sent.
	user := models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         models.RoleUser,
	}

	if err := s.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			l.Warn("register_conflict", "status", 409)
			return nil, ErrDuplicateAccount
		}
		l.Error("register_failed", "error", err)
		return nil, err
	}

	sess, err := s.issueSession(ctx, &user)
	if err != nil {
		l.Error("register_failed", "reason", "cannot issue tokens", "error", err)
		return nil, err
	}
	l.Info("register_successful", "user_id", user.ID)
	return sess, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same outward error as a wrong password, so callers cannot
			// enumerate accounts.
			l.Warn("login_failed", "status", 401)
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	// Additive: earlier sessions for this account stay valid.
	sess, err := s.issueSession(ctx, user)
	if err != nil {
		l.Error("login_failed", "reason", "cannot issue tokens", "error", err)
		return nil, err
	}
	l.Info("login_successful", "user_id", user.ID)
	return sess, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself stays valid (no rotation, see the type doc).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "reason", "signature verification", "error", err)
		return "", time.Time{}, ErrInvalidRefreshToken
	}

	stored, err := s.RefreshTokens.FindByToken(ctx, tokens.Sha256Hex(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("refresh_failed", "reason", "token not in store", "jti", claims.ID)
			return "", time.Time{}, ErrInvalidRefreshToken
		}
		// Storage failures collapse to the same outward signal.
		l.Error("refresh_failed", "error", err)
		return "", time.Time{}, ErrInvalidRefreshToken
	}

	if stored.UserID != claims.Subject {
		l.Warn("refresh_failed", "reason", "subject mismatch", "jti", claims.ID)
		return "", time.Time{}, ErrInvalidRefreshToken
	}

	// Storage-level expiry check, independent of the signed claim. Expired
	// rows are removed on the way out.
	if time.Now().Unix() > stored.ExpiresAt {
		if err := s.RefreshTokens.DeleteByID(ctx, stored.ID); err != nil {
			l.Error("refresh_cleanup_failed", "error", err, "jti", stored.JTI)
		}
		l.Warn("refresh_failed", "reason", "expired", "jti", stored.JTI)
		return "", time.Time{}, ErrRefreshTokenExpired
	}

	user, err := s.Users.FindByID(ctx, stored.UserID)
	if err != nil {
		l.Warn("refresh_failed", "reason", "account lookup", "error", err)
		return "", time.Time{}, ErrInvalidRefreshToken
	}

	exp := time.Now().Add(s.AccessTTL)
	access, err := tokens.SignAccessToken(user.ID, user.Email, user.Role, s.JWTSecret, exp)
	if err != nil {
		l.Error("refresh_failed", "reason", "cannot sign access token", "error", err)
		return "", time.Time{}, ErrInvalidRefreshToken
	}
	l.Info("refresh_successful", "user_id", user.ID)
	return access, exp, nil
}

// Logout is idempotent: unknown and already-deleted tokens succeed too.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	count, err := s.RefreshTokens.DeleteByToken(ctx, tokens.Sha256Hex(refreshToken))
	if err != nil {
		l.Error("logout_cleanup_failed", "error", err)
		return
	}
	l.Info("logout_successful", "revoked", count)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.Users.FindByID(ctx, userID)
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	accessExp := time.Now().Add(s.AccessTTL)
	access, err := tokens.SignAccessToken(user.ID, user.Email, user.Role, s.JWTSecret, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().Add(s.RefreshTTL)
	refresh, jti, err := tokens.SignRefreshToken(user.ID, s.RefreshSecret, refreshExp)
	if err != nil {
		return nil, err
	}

	row := models.RefreshToken{
		TokenHash: tokens.Sha256Hex(refresh),
		JTI:       jti,
		UserID:    user.ID,
		ExpiresAt: refreshExp.Unix(),
	}
	if err := s.RefreshTokens.Create(ctx, &row); err != nil {
		return nil, err
	}

	return &Session{
		User:         *user,
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}
