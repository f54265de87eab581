package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/dumpster-coordination/internal/model"
	"github.com/greenloop/dumpster-coordination/internal/session"
)

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	sessions := session.NewManager()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	rec := httptest.NewRecorder()
	RequireAuth(sessions)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsUnknownToken(t *testing.T) {
	sessions := session.NewManager()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "no-such-token")
	rec := httptest.NewRecorder()
	RequireAuth(sessions)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthInjectsEmployee(t *testing.T) {
	sessions := session.NewManager()
	sessions.Store("tok-1", model.EmployeeData{EmployeeID: "E001", Name: "Alice"})

	var seen model.EmployeeData
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		employee, ok := EmployeeFrom(r.Context())
		require.True(t, ok)
		seen = employee
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "tok-1")
	rec := httptest.NewRecorder()
	RequireAuth(sessions)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "E001", seen.EmployeeID)
}

func TestCORSAnswersPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/plants", nil)
	rec := httptest.NewRecorder()
	CORS(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
