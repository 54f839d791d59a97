package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"krishi/internal/auth"
	"krishi/internal/model"
	"krishi/internal/service"
)

// ChatHandler serves the assistant transcript.
type ChatHandler struct {
	chats service.ChatService
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chats service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// SendMessageRequest carries one user message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// MessagesResponse lists transcript entries.
type MessagesResponse struct {
	Messages []model.ChatMessage `json:"messages"`
}

// History godoc
// @Summary Chat transcript
// @Tags chat
// @Produce json
// @Success 200 {object} MessagesResponse
// @Router /chat/history [get]
func (h *ChatHandler) History(c echo.Context) error {
	msgs := h.chats.History(c.Request().Context(), auth.Scope(c))
	return c.JSON(http.StatusOK, MessagesResponse{Messages: msgs})
}

// Send godoc
// @Summary Send a chat message
// @Description Returns the stored user message and the assistant reply.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} MessagesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /chat/messages [post]
func (h *ChatHandler) Send(c echo.Context) error {
	var req SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	added, err := h.chats.Send(c.Request().Context(), auth.Scope(c), req.Message)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, MessagesResponse{Messages: added})
}

// Clear godoc
// @Summary Clear the chat transcript
// @Tags chat
// @Success 204
// @Failure 409 {object} errors.ErrorResponse
// @Router /chat/history [delete]
func (h *ChatHandler) Clear(c echo.Context) error {
	if err := h.chats.Clear(c.Request().Context(), auth.Scope(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
