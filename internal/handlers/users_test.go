package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"todo-api/backend/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

func TestGetProfile(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "alice")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(principalAs(owner))
	router.GET("/users/me", handlers.NewUserHandler(db).GetProfile)

	w := doJSON(t, router, http.MethodGet, "/users/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var profile handlers.UserProfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("Expected alice, got %q", profile.Username)
	}
	if profile.ID != owner.String() {
		t.Errorf("Expected id %s, got %s", owner, profile.ID)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	db := setupTestDB(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(principalAs(uuid.Must(uuid.NewV4())))
	router.GET("/users/me", handlers.NewUserHandler(db).GetProfile)

	w := doJSON(t, router, http.MethodGet, "/users/me", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a deleted account, got %d", w.Code)
	}
}
