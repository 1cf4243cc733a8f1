package router // registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/priyanshu9046/SortMyScene/internal/config"
	"github.com/priyanshu9046/SortMyScene/internal/handler"
	"github.com/priyanshu9046/SortMyScene/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes. Unauthenticated
// operations live under /v1/auth; protected endpoints live under /v1 behind
// the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// refresh rotates the refresh token; refresh-access only mints a new
	// access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: a refresh token in the
	// body is enough to terminate a single session, a bearer token with no
	// body terminates all of them.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: the event
// catalog and the live seat projection. The catalog sits behind the Redis
// response cache; the seat projection is always computed fresh.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, r *handler.ReservationHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/events", ev.List, cached)
	e.GET("/v1/events/:id", ev.Get, cached)
	e.GET("/v1/events/:id/seats", r.Seats)
}

// RegisterReservations registers the authenticated reservation lifecycle
// endpoints: hold, confirm, cancel and the caller's own holds. The rate
// limiter runs after the JWT middleware so its keys see the user id.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.NewTokenBucket(rlCfg, rdb))
	auth.POST("/events/:id/reservations", r.Create)
	auth.GET("/events/:id/reservations/my", r.Mine)
	auth.POST("/reservations/:id/confirm", r.Confirm)
	auth.DELETE("/reservations/:id", r.Cancel)
}
