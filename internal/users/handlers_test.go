package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemoryStore()
	handlers := NewUserHandlers(newTestService(store), zap.NewNop())

	router := gin.New()
	handlers.RegisterRoutes(router)
	return router, store
}

func doRequest(router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &envelope)
	return w, envelope
}

const khalilJSON = `{"email":"khalil@example.com","username":"khalil","firstName":"Khalil","lastName":"Stemmler"}`

func TestCreateUserHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	w, envelope := doRequest(router, http.MethodPost, "/users/new", khalilJSON)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, envelope["success"])
	assert.NotContains(t, envelope, "error")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "khalil@example.com", data["email"])
	assert.Equal(t, "khalil", data["username"])
	assert.Equal(t, "Khalil", data["firstName"])
	assert.Equal(t, "Stemmler", data["lastName"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, w.Body.String(), "argon2id")
}

func TestCreateUserHandlerErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	w, _ := doRequest(router, http.MethodPost, "/users/new", khalilJSON)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "username taken",
			body:   `{"email":"new@example.com","username":"khalil","firstName":"A","lastName":"B"}`,
			status: http.StatusConflict,
			code:   "UsernameAlreadyTaken",
		},
		{
			name:   "email in use",
			body:   `{"email":"khalil@example.com","username":"new","firstName":"A","lastName":"B"}`,
			status: http.StatusConflict,
			code:   "EmailAlreadyInUse",
		},
		{
			name:   "missing email",
			body:   `{"username":"new","firstName":"A","lastName":"B"}`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
		{
			name:   "empty first name",
			body:   `{"email":"new@example.com","username":"new","firstName":"","lastName":"B"}`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
		{
			name:   "wrong type",
			body:   `{"email":"new@example.com","username":"new","firstName":7,"lastName":"B"}`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
		{
			name:   "username taken wins over non-string first name",
			body:   `{"email":"new@example.com","username":"khalil","firstName":7,"lastName":"B"}`,
			status: http.StatusConflict,
			code:   "UsernameAlreadyTaken",
		},
		{
			name:   "email in use wins over non-string last name",
			body:   `{"email":"khalil@example.com","username":"new","firstName":"A","lastName":["B"]}`,
			status: http.StatusConflict,
			code:   "EmailAlreadyInUse",
		},
		{
			name:   "non-string email",
			body:   `{"email":7,"username":"khalil","firstName":"A","lastName":"B"}`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
		{
			name:   "malformed json",
			body:   `{"email":`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
		{
			name:   "array body",
			body:   `[]`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, envelope := doRequest(router, http.MethodPost, "/users/new", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, envelope["error"])
			assert.Equal(t, false, envelope["success"])
			assert.NotContains(t, envelope, "data")
		})
	}
}

func TestEditUserHandler(t *testing.T) {
	router, _ := newTestRouter(t)
	w, _ := doRequest(router, http.MethodPost, "/users/new", khalilJSON)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = doRequest(router, http.MethodPost, "/users/new", `{"email":"bob@example.com","username":"bob","firstName":"Bob","lastName":"B"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, envelope := doRequest(router, http.MethodPost, "/users/edit/1",
		`{"email":"khalil@example.com","username":"khalil","firstName":"K","lastName":"S"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "K", data["firstName"])
	assert.NotContains(t, data, "password")

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{
			name:   "unknown user",
			target: "/users/edit/99",
			body:   khalilJSON,
			status: http.StatusNotFound,
			code:   "UserNotFound",
		},
		{
			name:   "unknown user with invalid body",
			target: "/users/edit/99",
			body:   `{}`,
			status: http.StatusNotFound,
			code:   "UserNotFound",
		},
		{
			name:   "non-numeric id",
			target: "/users/edit/abc",
			body:   khalilJSON,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
		{
			name:   "username of another user",
			target: "/users/edit/1",
			body:   `{"email":"khalil@example.com","username":"bob","firstName":"K","lastName":"S"}`,
			status: http.StatusConflict,
			code:   "UsernameAlreadyTaken",
		},
		{
			name:   "email of another user",
			target: "/users/edit/1",
			body:   `{"email":"bob@example.com","username":"khalil","firstName":"K","lastName":"S"}`,
			status: http.StatusConflict,
			code:   "EmailAlreadyInUse",
		},
		{
			name:   "username of another user with non-string first name",
			target: "/users/edit/1",
			body:   `{"email":"khalil@example.com","username":"bob","firstName":false,"lastName":"S"}`,
			status: http.StatusConflict,
			code:   "UsernameAlreadyTaken",
		},
		{
			name:   "non-string last name",
			target: "/users/edit/1",
			body:   `{"email":"khalil@example.com","username":"khalil","firstName":"K","lastName":{}}`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
		{
			name:   "empty last name",
			target: "/users/edit/1",
			body:   `{"email":"khalil@example.com","username":"khalil","firstName":"K","lastName":""}`,
			status: http.StatusBadRequest,
			code:   "ValidationError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, envelope := doRequest(router, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, envelope["error"])
			assert.Equal(t, false, envelope["success"])
			assert.NotContains(t, envelope, "data")
		})
	}
}

func TestGetUserByEmailHandler(t *testing.T) {
	router, _ := newTestRouter(t)
	w, _ := doRequest(router, http.MethodPost, "/users/new", khalilJSON)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = doRequest(router, http.MethodPost, "/users/new",
		`{"email":"khalil+forum@example.com","username":"khalil2","firstName":"Khalil","lastName":"Stemmler"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name     string
		target   string
		status   int
		username string
		code     string
	}{
		{name: "plain", target: "/users?email=khalil@example.com", status: http.StatusOK, username: "khalil"},
		{name: "encoded", target: "/users?email=khalil%40example.com", status: http.StatusOK, username: "khalil"},
		{name: "raw plus alias", target: "/users?email=khalil+forum@example.com", status: http.StatusOK, username: "khalil2"},
		{name: "encoded plus alias", target: "/users?email=khalil%2Bforum%40example.com", status: http.StatusOK, username: "khalil2"},
		{name: "other params", target: "/users?page=2&email=khalil%40example.com", status: http.StatusOK, username: "khalil"},
		{name: "unknown", target: "/users?email=ghost%40example.com", status: http.StatusNotFound, code: "UserNotFound"},
		{name: "missing", target: "/users", status: http.StatusBadRequest, code: "ValidationError"},
		{name: "empty", target: "/users?email=", status: http.StatusBadRequest, code: "ValidationError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, envelope := doRequest(router, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, envelope["error"])
				assert.Equal(t, false, envelope["success"])
				assert.NotContains(t, envelope, "data")
				return
			}
			assert.Equal(t, true, envelope["success"])
			data := envelope["data"].(map[string]interface{})
			assert.Equal(t, tt.username, data["username"])
			assert.NotContains(t, data, "password")
		})
	}
}

func TestRawQueryValue(t *testing.T) {
	assert.Equal(t, "a+b%40c", rawQueryValue("x=1&email=a+b%40c", "email"))
	assert.Equal(t, "v", rawQueryValue("%65mail=v", "email"))
	assert.Equal(t, "", rawQueryValue("emails=v", "email"))
	assert.Equal(t, "", rawQueryValue("", "email"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(CodeUsernameAlreadyTaken))
	assert.Equal(t, http.StatusConflict, StatusFor(CodeEmailAlreadyInUse))
	assert.Equal(t, http.StatusBadRequest, StatusFor(CodeValidationError))
	assert.Equal(t, http.StatusNotFound, StatusFor(CodeUserNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(CodeServerError))
}
