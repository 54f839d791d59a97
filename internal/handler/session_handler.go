package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"krishi/internal/auth"
	"krishi/internal/guard"
	"krishi/internal/model"
	"krishi/internal/service"
	"krishi/internal/session"
)

// SessionHandler reports session state.
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SessionResponse is the client view of a session snapshot.
type SessionResponse struct {
	State           string      `json:"state"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	User            *model.User `json:"user"`
}

func newSessionResponse(s session.Snapshot) SessionResponse {
	return SessionResponse{
		State:           s.State.String(),
		IsAuthenticated: s.Authenticated(),
		IsLoading:       s.Loading(),
		User:            s.User,
	}
}

// Current godoc
// @Summary Current session
// @Tags session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(h.sessions.Current(auth.Scope(c))))
}

// Watch godoc
// @Summary Stream guard decisions
// @Description Server-sent events. Each event is named loading, redirect or admit and carries the session as data.
// @Tags session
// @Produce text/event-stream
// @Success 200 {object} SessionResponse
// @Router /session/watch [get]
func (h *SessionHandler) Watch(c echo.Context) error {
	updates, stop := h.sessions.Watch(auth.Scope(c))
	defer stop()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			data, err := json.Marshal(newSessionResponse(snap))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", guard.Evaluate(snap), data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
