package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/ticketline/ticketline/internal/handlers"
	mwauth "github.com/ticketline/ticketline/internal/middleware/auth"
	"github.com/ticketline/ticketline/internal/models"
)

type Deps struct {
	JWTSecret []byte

	AuthHandler    *handlers.AuthHandler
	VenueHandler   *handlers.VenueHandler
	EventHandler   *handlers.EventHandler
	BookingHandler *handlers.BookingHandler
	PageHandler    *handlers.PageHandler
	SettingHandler *handlers.SettingHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	anyUser := mwauth.RequireRoles(d.JWTSecret)
	organizers := mwauth.RequireRoles(d.JWTSecret, models.RoleOrganizer, models.RoleAdmin)
	admins := mwauth.RequireRoles(d.JWTSecret, models.RoleAdmin)

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/profile", d.AuthHandler.Profile, anyUser)

	venues := v1.Group("/venues")
	venues.GET("", d.VenueHandler.GetVenues)
	venues.GET("/:id", d.VenueHandler.GetVenue)
	venues.POST("", d.VenueHandler.CreateVenue, admins)
	venues.PATCH("/:id", d.VenueHandler.PatchVenue, admins)
	venues.DELETE("/:id", d.VenueHandler.DeleteVenue, admins)

	eventsGroup := v1.Group("/events")
	eventsGroup.GET("", d.EventHandler.GetEvents)
	eventsGroup.GET("/:id", d.EventHandler.GetEvent)
	eventsGroup.POST("", d.EventHandler.CreateEvent, organizers)
	eventsGroup.PATCH("/:id", d.EventHandler.PatchEvent, organizers)
	eventsGroup.DELETE("/:id", d.EventHandler.DeleteEvent, organizers)
	eventsGroup.GET("/:id/bookings", d.BookingHandler.GetEventBookings, admins)

	bookings := v1.Group("/bookings", anyUser)
	bookings.POST("", d.BookingHandler.CreateBooking)
	bookings.GET("", d.BookingHandler.GetBookings)
	bookings.DELETE("/:id", d.BookingHandler.CancelBooking)

	pages := v1.Group("/pages")
	pages.GET("", d.PageHandler.GetPages)
	pages.GET("/:slug", d.PageHandler.GetPage)
	pages.POST("", d.PageHandler.CreatePage, admins)
	pages.PATCH("/:slug", d.PageHandler.PatchPage, admins)
	pages.DELETE("/:slug", d.PageHandler.DeletePage, admins)

	v1.GET("/settings", d.SettingHandler.GetSettings)
	adminSettings := v1.Group("/admin/settings", admins)
	adminSettings.GET("", d.SettingHandler.GetAllSettings)
	adminSettings.PUT("/:key", d.SettingHandler.UpsertSetting)
	adminSettings.DELETE("/:key", d.SettingHandler.DeleteSetting)

	v1.GET("/search", d.SearchHandler.Search)
}
