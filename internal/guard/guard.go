// Package guard admits or redirects requests for protected views based on session state.
package guard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"krishi/internal/auth"
	apperrors "krishi/internal/errors"
	"krishi/internal/model"
	"krishi/internal/session"
)

// Decision is what the guard does with a request.
type Decision int

const (
	// Loading means the session is not settled: show a neutral indicator, do not navigate.
	Loading Decision = iota
	// Redirect sends the visitor to the sign-in view.
	Redirect
	// Admit renders the protected content.
	Admit
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Admit:
		return "admit"
	default:
		return "unknown"
	}
}

// Evaluate maps a session snapshot to a decision.
func Evaluate(s session.Snapshot) Decision {
	switch {
	case s.Loading():
		return Loading
	case s.Authenticated():
		return Admit
	default:
		return Redirect
	}
}

const (
	// DefaultWait bounds how long a request waits for an unsettled session.
	DefaultWait = 2 * time.Second
	// SignInPath is where anonymous visitors are sent.
	SignInPath = "/signin"

	userContextKey = "session_user"
)

// Config configures Middleware.
type Config struct {
	Registry *session.Registry
	// Wait bounds how long to wait for an unsettled session before answering Loading.
	Wait time.Duration
}

// Middleware guards the routes it wraps.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.Wait <= 0 {
		cfg.Wait = DefaultWait
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m := cfg.Registry.Get(auth.Scope(c))
			snap := Settle(c.Request().Context(), m, cfg.Wait)

			switch Evaluate(snap) {
			case Admit:
				c.Set(userContextKey, snap.User)
				return next(c)
			case Redirect:
				if WantsHTML(c.Request()) {
					return c.Redirect(http.StatusFound, SignInPath)
				}
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrNotAuthenticated)
				return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
			default:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			}
		}
	}
}

// Settle waits up to wait for m to leave the Loading decision and returns the latest snapshot.
func Settle(ctx context.Context, m *session.Manager, wait time.Duration) session.Snapshot {
	updates, stop := m.Subscribe()
	defer stop()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	snap := <-updates
	for Evaluate(snap) == Loading {
		select {
		case s, ok := <-updates:
			if !ok {
				return snap
			}
			snap = s
		case <-timer.C:
			return snap
		case <-ctx.Done():
			return snap
		}
	}
	return snap
}

// User returns the user admitted by Middleware.
func User(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}

// WantsHTML reports whether r is a browser navigation rather than an API call.
func WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
