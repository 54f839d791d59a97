package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// ScopeCookie carries the scope token for browser clients.
	ScopeCookie = "krishi_scope"
	// ScopeTokenHeader returns a freshly minted scope token to non-browser clients.
	ScopeTokenHeader = "X-Scope-Token"
	// ClaimsContextKey is where the token parser stores validated *ScopeClaims.
	ClaimsContextKey = "scope_claims"
	scopeContextKey  = "scope"
)

// ScopeMiddleware makes sure every request has a session scope. It reuses the scope of validated
// claims stored under ClaimsContextKey, and otherwise mints a new scope token and hands it back
// as a cookie and a response header.
func ScopeMiddleware(svc *JWTService, secureCookie bool, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, ok := c.Get(ClaimsContextKey).(*ScopeClaims); ok {
				c.Set(scopeContextKey, claims.Scope())
				return next(c)
			}

			scope, token, err := svc.GenerateScopeToken()
			if err != nil {
				logger.Error("mint scope token", zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			cookie := &http.Cookie{
				Name:     ScopeCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
			}
			if ttl := svc.TTL(); ttl > 0 {
				cookie.MaxAge = int(ttl.Seconds())
			}
			c.SetCookie(cookie)
			c.Response().Header().Set(ScopeTokenHeader, token)
			c.Set(scopeContextKey, scope)
			return next(c)
		}
	}
}

// Scope returns the session scope set by ScopeMiddleware.
func Scope(c echo.Context) string {
	scope, _ := c.Get(scopeContextKey).(string)
	return scope
}

// WithScope stores scope on c, for handlers exercised without the middleware chain.
func WithScope(c echo.Context, scope string) {
	c.Set(scopeContextKey, scope)
}
