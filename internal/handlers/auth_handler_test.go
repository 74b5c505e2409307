package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskbuddy-api/internal/auth"
	"taskbuddy-api/internal/database"
	"taskbuddy-api/internal/middleware"
	"taskbuddy-api/internal/models"
	"taskbuddy-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	r.POST("/api/login", Login)
	r.GET("/api/me", middleware.JWTAuthMiddleware(), Me)
	return r
}

func postLogin(r *gin.Engine, payload map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_CreatesUserIfNotExists(t *testing.T) {
	r := newAuthRouter(t)

	w := postLogin(r, map[string]string{
		"username":    "newuser",
		"password":    "s3cret",
		"displayName": "New User",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.UserID)
	require.Equal(t, "New User", resp.DisplayName)

	var stored models.User
	require.NoError(t, database.GetDB().Where("username = ?", "newuser").First(&stored).Error)
	require.NotEqual(t, "s3cret", stored.Password)
	require.NoError(t, auth.CheckPassword(stored.Password, "s3cret"))
}

func TestLogin_ExistingUser(t *testing.T) {
	r := newAuthRouter(t)

	first := postLogin(r, map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, first.Code)
	var a LoginResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.Equal(t, "alice", a.DisplayName)

	again := postLogin(r, map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, again.Code)
	var b LoginResponse
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &b))
	require.Equal(t, a.UserID, b.UserID)

	wrong := postLogin(r, map[string]string{"username": "alice", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
}

func TestLogin_RequiresCredentials(t *testing.T) {
	r := newAuthRouter(t)
	w := postLogin(r, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe_ReturnsProfile(t *testing.T) {
	r := newAuthRouter(t)

	w := postLogin(r, map[string]string{"username": "carol", "password": "pw", "photoUrl": "https://example.com/c.png"})
	require.Equal(t, http.StatusOK, w.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var profile auth.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Equal(t, login.UserID, profile.UserID)
	require.Equal(t, "carol", profile.Username)
	require.Equal(t, "https://example.com/c.png", profile.PhotoURL)
}
