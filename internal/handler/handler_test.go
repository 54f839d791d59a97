package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"krishi/internal/auth"
	"krishi/internal/cache"
	"krishi/internal/chat"
	"krishi/internal/guard"
	"krishi/internal/persist"
	"krishi/internal/repository"
	"krishi/internal/service"
	"krishi/internal/session"
)

const testScopeHeader = "X-Test-Scope"

type testValidator struct {
	v *validator.Validate
}

func (tv testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

type testEnv struct {
	e        *echo.Echo
	registry *session.Registry
	sessions service.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users, err := repository.NewMemoryUserRepository(repository.DefaultSeedUsers(), bcrypt.MinCost)
	require.NoError(t, err)
	slots := persist.NewSlots(cache.NewMemory(), 0, nil)
	registry := session.NewRegistry(func(scope string) *session.Manager {
		return session.NewManager(users, slots.Open(scope), session.WithLatency(0))
	})
	sessions := service.NewSessionService(registry)
	chats := service.NewChatService(service.AdapterTranscripts(slots.Open), chat.MockResponder{}, time.Second, nil)

	e := echo.New()
	e.Validator = testValidator{v: validator.New()}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope := c.Request().Header.Get(testScopeHeader)
			if scope == "" {
				scope = "test"
			}
			auth.WithScope(c, scope)
			return next(c)
		}
	})

	protected := guard.Middleware(guard.Config{Registry: registry, Wait: time.Second})
	authH := NewAuthHandler(sessions)
	sessionH := NewSessionHandler(sessions)
	profileH := NewProfileHandler(sessions)
	viewH := NewViewHandler(sessions)
	chatH := NewChatHandler(chats)

	e.GET(guard.SignInPath, viewH.SignIn)
	e.GET(DashboardPath, viewH.Dashboard, protected)
	e.GET("/api/session", sessionH.Current)
	e.GET("/api/session/watch", sessionH.Watch)
	e.POST("/api/auth/login", authH.Login)
	e.POST("/api/auth/signup", authH.Signup)
	e.POST("/api/auth/logout", authH.Logout)
	e.GET("/api/profile", profileH.GetProfile, protected)
	e.PATCH("/api/profile", profileH.UpdateProfile, protected)
	e.GET("/api/districts", viewH.Districts)
	e.GET("/api/chat/history", chatH.History)
	e.POST("/api/chat/messages", chatH.Send)
	e.DELETE("/api/chat/history", chatH.Clear)

	return &testEnv{e: e, registry: registry, sessions: sessions}
}

func (env *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T) {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/auth/login", `{"email":"rajesh.gowda@gmail.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
