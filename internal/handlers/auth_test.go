package handlers

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/middleware"
)

func newTestAuth(t *testing.T, repo PlayerRepository) (*Auth, http.Handler) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cookies := config.NewCookiesWith(
		config.NewJWTFromKeys(key, &key.PublicKey, time.Hour), "", false, http.SameSiteLaxMode,
	)
	auth := NewAuth(discardLogger(), repo, cookies)
	auth.cost = bcrypt.MinCost

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", auth.Register)
	mux.HandleFunc("POST /login", auth.Login)
	mux.HandleFunc("POST /logout", auth.Logout)
	mux.HandleFunc("GET /auth/status", auth.Status)
	return auth, middleware.Auth(discardLogger(), cookies)(mux)
}

func credentials(path, username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func cookieNames(rec *httptest.ResponseRecorder) []string {
	var names []string
	for _, c := range rec.Result().Cookies() {
		names = append(names, c.Name)
	}
	return names
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeRepo()
	_, h := newTestAuth(t, repo)

	rec := serve(t, h, credentials("/register", "alice", "hunter2"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"auth", "sign"}, cookieNames(rec))
	assert.NotEqual(t, []byte("hunter2"), repo.players["alice"].PasswordHash)

	rec = serve(t, h, credentials("/register", "alice", "other"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrUsernameTaken.Error())

	rec = serve(t, h, credentials("/login", "alice", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, h, credentials("/login", "bob", "hunter2"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, h, credentials("/login", "alice", "hunter2"))
	require.Equal(t, http.StatusOK, rec.Code)
	var status Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "alice", status.Player.Username)

	// the issued cookies authenticate later requests
	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	rec = serve(t, h, r)
	require.Equal(t, http.StatusOK, rec.Code)
	status = Status{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.LoggedIn)
	assert.Equal(t, repo.players["alice"].PlayerId, status.Player.PlayerId)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	_, h := newTestAuth(t, newFakeRepo())

	rec := serve(t, h, credentials("/register", "", "pw"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, credentials("/register", "carol", strings.Repeat("x", 73)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrBadPasswordTooLong.Error())
}

func TestStatusAnonymousAndLogout(t *testing.T) {
	_, h := newTestAuth(t, newFakeRepo())

	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"logged_in": false}`, rec.Body.String())

	rec = serve(t, h, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Negative(t, c.MaxAge, c.Name)
	}
}
