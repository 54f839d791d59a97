package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"krishi/internal/auth"
	"krishi/internal/config"
	"krishi/internal/guard"
	"krishi/internal/handler"
	"krishi/internal/session"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Session *handler.SessionHandler
	Profile *handler.ProfileHandler
	View    *handler.ViewHandler
	Chat    *handler.ChatHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	jwtService *auth.JWTService,
	registry *session.Registry,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Everything below runs inside a session scope. A missing or invalid scope token is not an
	// error: ScopeMiddleware mints a fresh one.
	scoped := e.Group("",
		echojwt.WithConfig(echojwt.Config{
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + auth.ScopeCookie,
			ContextKey:  auth.ClaimsContextKey,
			ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
				return jwtService.ValidateToken(token)
			},
			ErrorHandler:           func(echo.Context, error) error { return nil },
			ContinueOnIgnoredError: true,
		}),
		auth.ScopeMiddleware(jwtService, cfg.SecureCookie, logger),
	)
	protected := guard.Middleware(guard.Config{Registry: registry})

	scoped.GET(guard.SignInPath, h.View.SignIn)
	scoped.GET(handler.DashboardPath, h.View.Dashboard, protected)

	api := scoped.Group("/api")

	api.GET("/session", h.Session.Current)
	api.GET("/session/watch", h.Session.Watch)

	authGroup := api.Group("/auth")
	limited := authRateLimiter()
	authGroup.POST("/login", h.Auth.Login, limited)
	authGroup.POST("/signup", h.Auth.Signup, limited)
	authGroup.POST("/logout", h.Auth.Logout)

	api.GET("/profile", h.Profile.GetProfile, protected)
	api.PATCH("/profile", h.Profile.UpdateProfile, protected)

	api.GET("/districts", h.View.Districts)

	api.GET("/chat/history", h.Chat.History)
	api.POST("/chat/messages", h.Chat.Send)
	api.DELETE("/chat/history", h.Chat.Clear)
}

// authRateLimiter throttles credential attempts per client IP.
func authRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(5),
			Burst:     10,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "too many requests",
				"code":  "RATE_LIMITED",
			})
		},
	})
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
