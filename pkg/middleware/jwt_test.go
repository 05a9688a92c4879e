package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mkowalski/todo-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedRouter(issuer *security.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewRequestIDMiddleware())
	router.GET("/protected", NewJWTMiddleware(issuer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.MustGet("userID")})
	})

	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestJWTMiddlewareAllowsValidToken(t *testing.T) {
	issuer := security.NewTokenIssuer([]byte("test-secret"), time.Hour)
	router := newGuardedRouter(issuer)

	token, err := issuer.Issue("user123")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user123")
}

func TestJWTMiddlewareUniformRejection(t *testing.T) {
	issuer := security.NewTokenIssuer([]byte("test-secret"), time.Hour)
	router := newGuardedRouter(issuer)

	forged, err := security.NewTokenIssuer([]byte("other-secret"), time.Hour).Issue("user123")
	require.NoError(t, err)

	expired, err := security.NewTokenIssuer([]byte("test-secret"), -time.Minute).Issue("user123")
	require.NoError(t, err)

	cases := map[string]string{
		"no header":       "",
		"no bearer":       "Basic dXNlcjpwYXNz",
		"empty bearer":    "Bearer ",
		"malformed":       "Bearer not.a.token",
		"wrong signature": "Bearer " + forged,
		"expired":         "Bearer " + expired,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, header)

			// Every failure mode collapses into the same answer
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Authorization token invalid")
			assert.NotContains(t, w.Body.String(), "user123")
		})
	}
}
