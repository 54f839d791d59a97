package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"krishi/internal/auth"
	"krishi/internal/guard"
	"krishi/internal/model"
	"krishi/internal/service"
)

// ProfileHandler serves the signed-in user's profile. Its routes sit behind the guard.
type ProfileHandler struct {
	sessions service.SessionService
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(sessions service.SessionService) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

// GetProfile godoc
// @Summary Get profile
// @Tags profile
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} map[string]string
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, guard.User(c))
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Shallow merge: only the fields present in the body change.
// @Tags profile
// @Accept json
// @Produce json
// @Param patch body model.ProfilePatch true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /profile [patch]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var patch model.ProfilePatch
	if err := bindAndValidate(c, &patch); err != nil {
		return writeError(c, err)
	}

	user, err := h.sessions.UpdateProfile(c.Request().Context(), auth.Scope(c), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
