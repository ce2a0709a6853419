package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	userService "anoa.com/skillswap/internal/modules/user/service"
	"anoa.com/skillswap/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, email, name string, expires time.Time) string {
	t.Helper()

	claims := SessionClaims{Email: email}
	claims.UserMetadata.FullName = name
	claims.Subject = "provider|" + email
	claims.ExpiresAt = jwt.NewNumericDate(expires)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newRouter(store *testutil.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := NewAuthMiddleware(userService.NewIdentityService(store.Users()), testSecret)

	r := gin.New()
	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	}
	r.GET("/private", auth.RequireAuth(), echo)
	r.GET("/public", auth.OptionalAuth(), echo)
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	store := testutil.NewStore()
	r := newRouter(store)
	valid := signToken(t, testSecret, "Ana@Example.com", "Ana", time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "other", "ana@example.com", "Ana", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", signToken(t, testSecret, "ana@example.com", "Ana", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"no email", signToken(t, testSecret, "", "Ana", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"valid", valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "/private", tt.token)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	user, err := store.Users().FindByEmail(t.Context(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, 1, store.Count("users"))
}

func TestRequireAuthReusesUser(t *testing.T) {
	store := testutil.NewStore()
	r := newRouter(store)
	token := signToken(t, testSecret, "ana@example.com", "Ana", time.Now().Add(time.Hour))

	first := do(r, "/private", token)
	second := do(r, "/private", token)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, store.Count("users"))
}

func TestTokenFromQuery(t *testing.T) {
	store := testutil.NewStore()
	r := newRouter(store)
	token := signToken(t, testSecret, "ana@example.com", "", time.Now().Add(time.Hour))

	w := do(r, "/private?token="+token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	user, err := store.Users().FindByEmail(t.Context(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New User", user.Name)
}

func TestOptionalAuth(t *testing.T) {
	store := testutil.NewStore()
	r := newRouter(store)

	w := do(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":""}`, w.Body.String())

	w = do(r, "/public", "broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":""}`, w.Body.String())

	w = do(r, "/public", signToken(t, testSecret, "ana@example.com", "Ana", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"user_id":""`)
}
