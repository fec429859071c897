package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketline/ticketline/internal/models"
	"github.com/ticketline/ticketline/internal/tokens"
)

var jwtSecret = []byte("test-jwt-secret")

func signToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	signed, err := tokens.SignAccessToken("user-1", "a@x.com", role, jwtSecret, exp)
	require.NoError(t, err)
	return signed
}

// invoke runs the middleware around a handler that echoes the context values
// set by a successful pass.
func invoke(t *testing.T, mw echo.MiddlewareFunc, authorization string, cookie *http.Cookie) (int, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	err := handler(c)
	if err == nil {
		return rec.Code, c
	}
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code, c
}

func TestRequireRolesMissingToken(t *testing.T) {
	mw := RequireRoles(jwtSecret)
	code, _ := invoke(t, mw, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRequireRolesInvalidToken(t *testing.T) {
	mw := RequireRoles(jwtSecret)

	code, _ := invoke(t, mw, "Bearer not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// Wrong signing secret.
	bad, err := tokens.SignAccessToken("user-1", "a@x.com", models.RoleUser, []byte("other-secret"), time.Now().Add(time.Hour))
	require.NoError(t, err)
	code, _ = invoke(t, mw, "Bearer "+bad, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRequireRolesExpiredToken(t *testing.T) {
	mw := RequireRoles(jwtSecret)
	expired := signToken(t, models.RoleUser, time.Now().Add(-time.Minute))
	code, _ := invoke(t, mw, "Bearer "+expired, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

// An empty role set admits any valid token and sets the identity on the
// context.
func TestRequireRolesAnyRole(t *testing.T) {
	mw := RequireRoles(jwtSecret)
	token := signToken(t, models.RoleUser, time.Now().Add(time.Hour))

	code, c := invoke(t, mw, "Bearer "+token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-1", UserID(c))
	assert.Equal(t, models.RoleUser, Role(c))
	assert.Equal(t, "a@x.com", c.Get(ContextEmail))
}

func TestRequireRolesEnforcesSet(t *testing.T) {
	mw := RequireRoles(jwtSecret, models.RoleOrganizer, models.RoleAdmin)

	user := signToken(t, models.RoleUser, time.Now().Add(time.Hour))
	code, _ := invoke(t, mw, "Bearer "+user, nil)
	assert.Equal(t, http.StatusForbidden, code)

	organizer := signToken(t, models.RoleOrganizer, time.Now().Add(time.Hour))
	code, _ = invoke(t, mw, "Bearer "+organizer, nil)
	assert.Equal(t, http.StatusOK, code)

	admin := signToken(t, models.RoleAdmin, time.Now().Add(time.Hour))
	code, _ = invoke(t, mw, "Bearer "+admin, nil)
	assert.Equal(t, http.StatusOK, code)
}

// The accessToken cookie is the fallback when no Authorization header is
// present.
func TestRequireRolesCookieFallback(t *testing.T) {
	mw := RequireRoles(jwtSecret)
	token := signToken(t, models.RoleUser, time.Now().Add(time.Hour))

	code, _ := invoke(t, mw, "", &http.Cookie{Name: "accessToken", Value: token})
	assert.Equal(t, http.StatusOK, code)
}

func TestRequireRolesRejectsNonBearerHeader(t *testing.T) {
	mw := RequireRoles(jwtSecret)
	token := signToken(t, models.RoleUser, time.Now().Add(time.Hour))

	code, _ := invoke(t, mw, "Basic "+token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
