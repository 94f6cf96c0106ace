package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-api/backend/internal/config"
	"todo-api/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:      "test-secret",
		Issuer:         "todo-api",
		AccessTokenTTL: 15 * time.Minute,
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func setupAuthRouter(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/protected", func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": userID.String()})
	})
	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testAuthConfig()
	router := setupAuthRouter(cfg)
	userID := uuid.Must(uuid.NewV4())

	token := signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     cfg.Issuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cfg := testAuthConfig()
	router := setupAuthRouter(cfg)
	userID := uuid.Must(uuid.NewV4())

	expired := signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     cfg.Issuer,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongSecret := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     cfg.Issuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	wrongIssuer := signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     "someone-else",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	noIssuer := signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	noUserID := signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"iss": cfg.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signature", "Bearer " + wrongSecret},
		{"wrong issuer", "Bearer " + wrongIssuer},
		{"missing issuer", "Bearer " + noIssuer},
		{"missing user claim", "Bearer " + noUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCurrentUser_EmptyContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := middleware.CurrentUser(c); ok {
		t.Error("Expected no principal on an untouched context")
	}
}
