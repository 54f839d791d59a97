package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi/internal/model"
)

func TestChatHandler_Flow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/chat/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/chat/messages", `{"message":"urea dose for paddy?"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sent MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, model.ChatRoleUser, sent.Messages[0].Role)
	assert.Contains(t, sent.Messages[1].Content, "balanced NPK")

	rec = env.do(http.MethodGet, "/api/chat/history", "")
	var history MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, sent.Messages, history.Messages)

	rec = env.do(http.MethodGet, "/api/chat/history", "", testScopeHeader, "other")
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())

	rec = env.do(http.MethodDelete, "/api/chat/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, "/api/chat/history", "")
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestChatHandler_EmptyMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/chat/messages", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"message is empty","code":"EMPTY_MESSAGE"}`, rec.Body.String())
}
