package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitcoach/coaching-app/internal/domain"
)

const testJWTSecret = "middleware-test-secret"

func signToken(t *testing.T, secret string, uid uint, role string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  uid,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthTestRouter(roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", AuthMiddleware(testJWTSecret))
	if len(roles) > 0 {
		group.Use(RoleMiddleware(roles...))
	}
	group.GET("/secure", func(c *gin.Context) {
		id, err := currentUserID(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	return router
}

func performRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthTestRouter()

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, testJWTSecret, 42, "athlete", time.Hour)
		res := performRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "42")
	})

	t.Run("missing header", func(t *testing.T) {
		res := performRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		res := performRequest(router, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "some-other-secret", 42, "athlete", time.Hour)
		res := performRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testJWTSecret, 42, "athlete", -time.Hour)
		res := performRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Contains(t, res.Body.String(), "expired")
	})

	t.Run("unknown role claim", func(t *testing.T) {
		token := signToken(t, testJWTSecret, 42, "superadmin", time.Hour)
		res := performRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}

func TestRoleMiddleware(t *testing.T) {
	router := newAuthTestRouter(domain.RoleTrainer)

	trainerToken := signToken(t, testJWTSecret, 1, "trainer", time.Hour)
	res := performRequest(router, "Bearer "+trainerToken)
	assert.Equal(t, http.StatusOK, res.Code)

	athleteToken := signToken(t, testJWTSecret, 2, "athlete", time.Hour)
	res = performRequest(router, "Bearer "+athleteToken)
	assert.Equal(t, http.StatusForbidden, res.Code)
}
