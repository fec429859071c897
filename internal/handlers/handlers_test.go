package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ticketline/ticketline/internal/events"
	"github.com/ticketline/ticketline/internal/handlers"
	"github.com/ticketline/ticketline/internal/models"
	"github.com/ticketline/ticketline/internal/service/auth"
	"github.com/ticketline/ticketline/internal/store"
	httpserver "github.com/ticketline/ticketline/internal/transport/http"
)

var testJWTSecret = []byte("test-jwt-secret")

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

// newTestServer wires the full router against an in-memory database, a
// disabled Kafka producer and no Elasticsearch client.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{},
		&models.Venue{}, &models.Event{}, &models.Booking{},
		&models.Page{}, &models.Setting{},
	))

	svc := &auth.AuthService{
		Users:          &store.GormUserStore{DB: db},
		RefreshTokens:  &store.GormRefreshTokenStore{DB: db},
		JWTSecret:      testJWTSecret,
		RefreshSecret:  []byte("test-refresh-secret"),
		AccessTTL:      15 * time.Minute,
		RefreshTTL:     7 * 24 * time.Hour,
		BcryptCost:     bcrypt.MinCost,
		MinPasswordLen: 8,
	}

	producer := events.NewProducer(nil)
	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		JWTSecret:      testJWTSecret,
		AuthHandler:    &handlers.AuthHandler{Svc: svc, Producer: producer},
		VenueHandler:   &handlers.VenueHandler{DB: db},
		EventHandler:   &handlers.EventHandler{DB: db, Producer: producer},
		BookingHandler: &handlers.BookingHandler{DB: db, Producer: producer},
		PageHandler:    &handlers.PageHandler{DB: db},
		SettingHandler: &handlers.SettingHandler{DB: db},
		SearchHandler:  &handlers.SearchHandler{},
	})

	return &testServer{e: e, db: db}
}

// do runs one request through the router. A non-nil body is sent as JSON, a
// non-empty token as a bearer header.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

type sessionBody struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *testServer) register(t *testing.T, email string) sessionBody {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":      email,
		"password":   "LongPass1",
		"first_name": "Ann",
		"last_name":  "A",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sess sessionBody
	decodeJSON(t, rec, &sess)
	return sess
}

// registerWithRole registers an account, promotes it in the database and logs
// in again so the returned tokens carry the new role claim.
func (s *testServer) registerWithRole(t *testing.T, email, role string) sessionBody {
	t.Helper()

	sess := s.register(t, email)
	res := s.db.Model(&models.User{}).Where("id = ?", sess.User.ID).Update("role", role)
	require.NoError(t, res.Error)
	require.EqualValues(t, 1, res.RowsAffected)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "LongPass1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fresh sessionBody
	decodeJSON(t, rec, &fresh)
	require.Equal(t, role, fresh.User.Role)
	return fresh
}

// seedEvent inserts a venue and an event directly, bypassing the handlers.
func (s *testServer) seedEvent(t *testing.T, organizerID string, seats uint, published bool) models.Event {
	t.Helper()

	venue := models.Venue{Name: "Main Hall", Address: "1 Main St", City: "Riga", Capacity: 500}
	require.NoError(t, s.db.Create(&venue).Error)

	event := models.Event{
		Title:          "Spring Gala",
		Description:    "An evening of music",
		VenueID:        venue.ID,
		OrganizerID:    organizerID,
		StartsAt:       time.Now().Add(30 * 24 * time.Hour),
		PriceCents:     2500,
		SeatsTotal:     seats,
		SeatsAvailable: seats,
		Published:      published,
	}
	require.NoError(t, s.db.Create(&event).Error)
	return event
}

func eventPath(id uint) string { return fmt.Sprintf("/api/v1/events/%d", id) }
