package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// Deps are the collaborators the routes are built from.  Redis and the JWT
// secret are optional.
type Deps struct {
	Reservations *handler.ReservationHandler
	DB           handler.Pinger
	Log          *logrus.Logger
	Redis        *redis.Client
	RateLimit    config.RateLimitConfig
	JWTSecret    string
}

// Roles accepted on the reservations API.  Deleting a reservation and
// listing all of them is reserved to admins.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// RegisterRoutes installs the global middleware, the health check and the
// /v1 reservations API.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog(d.Log))
	e.Use(echomw.Recover())

	e.GET("/healthz", handler.Health(d.DB))

	g := e.Group("/v1")
	staff := []echo.MiddlewareFunc{}
	admin := []echo.MiddlewareFunc{}
	if d.JWTSecret != "" {
		g.Use(middleware.JWTAuth(d.JWTSecret))
		staff = append(staff, middleware.RequireRole(RoleStaff, RoleAdmin))
		admin = append(admin, middleware.RequireRole(RoleAdmin))
	}
	g.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))

	h := d.Reservations
	g.POST("/reservations", h.Create, staff...)
	g.GET("/reservations", h.List, admin...)
	g.GET("/reservations/:id", h.Get, staff...)
	g.PUT("/reservations/:id", h.Update, staff...)
	g.DELETE("/reservations/:id", h.Delete, admin...)
	g.POST("/reservations/:id/confirm", h.Confirm, staff...)
	g.POST("/reservations/:id/cancel", h.Cancel, staff...)
	g.GET("/clients/:id/reservations", h.ByClient, staff...)
	g.POST("/availability", h.Availability, staff...)
}
