package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"krishi/internal/auth"
	"krishi/internal/model"
	"krishi/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	sessions service.SessionService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest represents a login request. The email is not format-checked: a malformed one is
// just another miss.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents the signup form.
type SignupRequest struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone"`
	Password        string   `json:"password" validate:"required,min=6"`
	ConfirmPassword string   `json:"confirmPassword" validate:"required,eqfield=Password"`
	District        string   `json:"district" validate:"required"`
	FarmSize        string   `json:"farmSize"`
	Experience      string   `json:"experience"`
	Language        string   `json:"language"`
	FarmType        string   `json:"farmType"`
	MainCrops       []string `json:"mainCrops"`
	Address         string   `json:"address"`
	Notifications   *bool    `json:"notifications"`
	WeatherAlerts   *bool    `json:"weatherAlerts"`
	MarketUpdates   *bool    `json:"marketUpdates"`
	AcceptTerms     bool     `json:"acceptTerms" validate:"eq=true"`
}

func (r SignupRequest) profile() model.SignupProfile {
	return model.SignupProfile{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		District:      r.District,
		FarmSize:      r.FarmSize,
		Experience:    r.Experience,
		Language:      r.Language,
		FarmType:      r.FarmType,
		MainCrops:     r.MainCrops,
		Address:       r.Address,
		Notifications: r.Notifications,
		WeatherAlerts: r.WeatherAlerts,
		MarketUpdates: r.MarketUpdates,
	}
}

// UserResponse wraps the signed-in user.
type UserResponse struct {
	User *model.User `json:"user"`
}

// Login godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	user, err := h.sessions.Login(c.Request().Context(), auth.Scope(c), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// Signup godoc
// @Summary Create an account and sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup form"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	user, err := h.sessions.Signup(c.Request().Context(), auth.Scope(c), req.profile(), req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, UserResponse{User: user})
}

// Logout godoc
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context(), auth.Scope(c))
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
