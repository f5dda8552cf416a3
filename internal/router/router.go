package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints and the protected
// identity route.  Register and login live under /v1/auth and need no
// token; /v1/me sits behind the JWT middleware signed with jwtSecret.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterBooking registers the seat map and booking endpoints.  The seat
// snapshot is public (guests preview the coach before logging in) and sits
// behind the Redis response cache; booking creation and history require a
// JWT and the booking POST is additionally rate limited, since it is the
// only write path into the shared store.
func RegisterBooking(e *echo.Echo, s *handler.SeatHandler, b *handler.BookingHandler,
	jwtSecret string, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
	e.GET("/v1/seats", s.GetSeats, middleware.NewRedisCache(cacheCfg, rdb))

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/bookings", b.CreateBooking, middleware.NewTokenBucket(rlCfg, rdb))
	auth.GET("/bookings", b.ListBookings)
	auth.GET("/bookings/:id", b.GetBooking)
}
