package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"krishi/internal/auth"
	"krishi/internal/guard"
	"krishi/internal/model"
	"krishi/internal/service"
)

// DashboardPath is where a signed-in visitor lands.
const DashboardPath = "/dashboard"

// ViewHandler serves the view descriptors the front end renders.
type ViewHandler struct {
	sessions service.SessionService
}

// NewViewHandler creates a view handler.
func NewViewHandler(sessions service.SessionService) *ViewHandler {
	return &ViewHandler{sessions: sessions}
}

// SignInView describes the sign-in screen.
type SignInView struct {
	View           string `json:"view"`
	LoginEndpoint  string `json:"loginEndpoint"`
	SignupEndpoint string `json:"signupEndpoint"`
}

// DashboardView describes the protected dashboard.
type DashboardView struct {
	View     string      `json:"view"`
	Greeting string      `json:"greeting"`
	User     *model.User `json:"user"`
}

// SignIn godoc
// @Summary Sign-in view
// @Description Browsers that are already signed in are sent to the dashboard.
// @Tags views
// @Produce json
// @Success 200 {object} SignInView
// @Success 302
// @Router /signin [get]
func (h *ViewHandler) SignIn(c echo.Context) error {
	if h.sessions.Current(auth.Scope(c)).Authenticated() && guard.WantsHTML(c.Request()) {
		return c.Redirect(http.StatusFound, DashboardPath)
	}
	return c.JSON(http.StatusOK, SignInView{
		View:           "signin",
		LoginEndpoint:  "/api/auth/login",
		SignupEndpoint: "/api/auth/signup",
	})
}

// Dashboard godoc
// @Summary Dashboard view
// @Tags views
// @Produce json
// @Success 200 {object} DashboardView
// @Success 302
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} map[string]string
// @Router /dashboard [get]
func (h *ViewHandler) Dashboard(c echo.Context) error {
	user := guard.User(c)
	return c.JSON(http.StatusOK, DashboardView{
		View:     "dashboard",
		Greeting: "Welcome back, " + user.Name,
		User:     user,
	})
}

// Districts godoc
// @Summary Karnataka districts
// @Tags views
// @Produce json
// @Success 200 {array} string
// @Router /districts [get]
func (h *ViewHandler) Districts(c echo.Context) error {
	return c.JSON(http.StatusOK, model.Districts)
}
