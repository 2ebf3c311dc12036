package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/videotube/account-service/docs"
	"github.com/videotube/account-service/internal/api/handler"
	"github.com/videotube/account-service/internal/api/middleware"
	"github.com/videotube/account-service/internal/core/ports"
)

// Deps is everything the router needs to mount the API.
type Deps struct {
	Users  ports.UserService
	Tokens ports.TokenIssuer
	// Checks are the readiness probes, keyed by dependency name.
	Checks  map[string]handler.Check
	Handler handler.Options
	Log     zerolog.Logger

	CORSOrigin string
	BodyLimit  string
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(corsConfig(d.CORSOrigin)))
	if d.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "accounts",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Users ---
	users := handler.NewUserHandler(d.Users, d.Handler, d.Log)
	gate := middleware.Auth(d.Tokens, d.Users)

	g := e.Group("/api/v1/users")
	g.POST("/register", users.Register)
	g.POST("/login", users.Login)
	g.POST("/refresh-token", users.RefreshToken)

	g.POST("/logout", users.Logout, gate)
	g.POST("/change-password", users.ChangePassword, gate)
	g.GET("/current-user", users.CurrentUser, gate)
	g.PATCH("/update-account", users.UpdateAccount, gate)
	g.PATCH("/avatar", users.UpdateAvatar, gate)
	g.PATCH("/cover-image", users.UpdateCoverImage, gate)

	return e
}

func corsConfig(origin string) echomiddleware.CORSConfig {
	if origin == "" || origin == "*" {
		return echomiddleware.CORSConfig{AllowOrigins: []string{"*"}}
	}
	return echomiddleware.CORSConfig{
		AllowOrigins:     []string{origin},
		AllowCredentials: true,
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
