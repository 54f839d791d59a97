package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi/internal/model"
)

func TestProfileHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_AUTHENTICATED")

	rec = env.do(http.MethodPatch, "/api/profile", `{"name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileHandler_GetAndPatch(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "rajesh.gowda@gmail.com", user.Email)

	rec = env.do(http.MethodPatch, "/api/profile", `{"district":"Hassan","mainCrops":["Ragi"],"notifications":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Hassan", user.District)
	assert.Equal(t, []string{"Ragi"}, user.MainCrops)
	assert.False(t, user.Notifications)
	assert.Equal(t, "Rajesh Kumar Gowda", user.Name)

	rec = env.do(http.MethodGet, "/api/profile", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Hassan", user.District)
}

func TestProfileHandler_PatchErrors(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(http.MethodPatch, "/api/profile", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")

	rec = env.do(http.MethodPatch, "/api/profile", `{"email":"priya.sharma@gmail.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_EMAIL")
}
