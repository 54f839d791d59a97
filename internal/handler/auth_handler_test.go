package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi/internal/model"
)

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"success", `{"email":"rajesh.gowda@gmail.com","password":"password123"}`, http.StatusOK, ""},
		{"wrong password", `{"email":"rajesh.gowda@gmail.com","password":"nope"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown email", `{"email":"ghost@example.com","password":"password123"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"not an email address", `{"email":"rajesh","password":"password123"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"missing password", `{"email":"rajesh.gowda@gmail.com"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"malformed body", `{"email":`, http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodPost, "/api/auth/login", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body["code"])
				return
			}
			var resp UserResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Rajesh Kumar Gowda", resp.User.Name)
		})
	}
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	valid := map[string]interface{}{
		"name":            "Anita Rao",
		"email":           "anita@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"district":        "Hassan",
		"acceptTerms":     true,
	}
	tests := []struct {
		name   string
		change func(map[string]interface{})
	}{
		{"missing name", func(m map[string]interface{}) { delete(m, "name") }},
		{"bad email", func(m map[string]interface{}) { m["email"] = "not-an-email" }},
		{"short password", func(m map[string]interface{}) { m["password"], m["confirmPassword"] = "abc", "abc" }},
		{"passwords differ", func(m map[string]interface{}) { m["confirmPassword"] = "secret2" }},
		{"missing district", func(m map[string]interface{}) { m["district"] = "" }},
		{"terms not accepted", func(m map[string]interface{}) { m["acceptTerms"] = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			body := make(map[string]interface{}, len(valid))
			for k, v := range valid {
				body[k] = v
			}
			tt.change(body)
			payload, err := json.Marshal(body)
			require.NoError(t, err)

			rec := env.do(http.MethodPost, "/api/auth/signup", string(payload))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
			assert.False(t, env.sessions.Current("test").Authenticated())
		})
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"Anita Rao","email":"Anita@Example.com","password":"secret1","confirmPassword":"secret1",
		"district":"Hassan","mainCrops":["Coffee"],"weatherAlerts":false,"acceptTerms":true}`

	rec := env.do(http.MethodPost, "/api/auth/signup", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "anita@example.com", resp.User.Email)
	assert.Equal(t, model.DefaultLanguage, resp.User.Language)
	assert.Equal(t, model.DefaultFarmType, resp.User.FarmType)
	assert.Equal(t, []string{"Coffee"}, resp.User.MainCrops)
	assert.True(t, resp.User.Notifications)
	assert.False(t, resp.User.WeatherAlerts)
	assert.True(t, resp.User.MarketUpdates)
	assert.NotContains(t, rec.Body.String(), "secret1")

	rec = env.do(http.MethodPost, "/api/auth/signup", body, testScopeHeader, "other")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_EMAIL")

	rec = env.do(http.MethodPost, "/api/auth/login", `{"email":"anita@example.com","password":"secret1"}`, testScopeHeader, "third")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"logged out"}`, rec.Body.String())
	assert.False(t, env.sessions.Current("test").Authenticated())

	rec = env.do(http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
