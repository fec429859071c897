package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketline/ticketline/internal/events"
	"github.com/ticketline/ticketline/internal/logging"
	mwauth "github.com/ticketline/ticketline/internal/middleware/auth"
	"github.com/ticketline/ticketline/internal/service/auth"
)

type AuthHandler struct {
	Svc      *auth.AuthService
	Producer *events.Producer
}

type accountSummary struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

type sessionResponse struct {
	User         accountSummary `json:"user"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req auth.RegisterInput
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Svc.Register(ctx, req)
	if err != nil {
		return authHTTPError(err)
	}

	publish(c, h.Producer, "user_events", sess.User.ID, map[string]interface{}{
		"type":    "user_registered",
		"user_id": sess.User.ID,
	})

	setSessionCookies(c, sess)
	return c.JSON(http.StatusCreated, toSessionResponse(sess))
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return authHTTPError(err)
	}

	publish(c, h.Producer, "user_events", sess.User.ID, map[string]interface{}{
		"type":    "user_logged_in",
		"user_id": sess.User.ID,
	})

	setSessionCookies(c, sess)
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := refreshTokenFromRequest(c)
	if raw == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token required")
	}

	access, exp, err := h.Svc.Refresh(c.Request().Context(), raw)
	if err != nil {
		return authHTTPError(err)
	}

	c.SetCookie(CreateCookie("accessToken", access, "/", exp))
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":      access,
		"access_expires_at": exp,
	})
}

// Logout never fails observably: unknown or already-revoked tokens get the
// same 204 as a live one.
func (h *AuthHandler) Logout(c echo.Context) error {
	if raw := refreshTokenFromRequest(c); raw != "" {
		h.Svc.Logout(c.Request().Context(), raw)
	}
	c.SetCookie(DeleteCookie("accessToken", "/"))
	c.SetCookie(DeleteCookie("refreshToken", "/"))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.Svc.Profile(c.Request().Context(), mwauth.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	}
	return c.JSON(http.StatusOK, accountSummary{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	})
}

func refreshTokenFromRequest(c echo.Context) string {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie("refreshToken"); err == nil {
		return cookie.Value
	}
	return ""
}

func setSessionCookies(c echo.Context, sess *auth.Session) {
	c.SetCookie(CreateCookie("accessToken", sess.AccessToken, "/", sess.AccessExp))
	c.SetCookie(CreateCookie("refreshToken", sess.RefreshToken, "/", sess.RefreshExp))
}

func toSessionResponse(sess *auth.Session) sessionResponse {
	return sessionResponse{
		User: accountSummary{
			ID:            sess.User.ID,
			Email:         sess.User.Email,
			FirstName:     sess.User.FirstName,
			LastName:      sess.User.LastName,
			Role:          sess.User.Role,
			EmailVerified: sess.User.EmailVerified,
		},
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}
}

// authHTTPError maps the service taxonomy onto status codes; messages stay
// generic so responses never distinguish missing accounts from bad passwords.
func authHTTPError(err error) error {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, verr.Fields)
	case errors.Is(err, auth.ErrDuplicateAccount):
		return echo.NewHTTPError(http.StatusConflict, "account already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, auth.ErrInvalidRefreshToken), errors.Is(err, auth.ErrRefreshTokenExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
