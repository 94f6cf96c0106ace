package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"todo-api/backend/internal/handlers"
	"todo-api/backend/internal/models"
	"todo-api/backend/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

func setupTagRouter(db *gorm.DB, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTagHandler(repositories.NewTagRepository(db))

	router := gin.New()
	router.Use(principalAs(userID))
	router.GET("/tags", handler.ListTags)
	router.POST("/tags", handler.CreateTag)
	router.GET("/tags/:id", handler.GetTag)
	router.PUT("/tags/:id", handler.UpdateTag)
	router.DELETE("/tags/:id", handler.DeleteTag)
	return router
}

func TestCreateTag(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "alice")
	router := setupTagRouter(db, owner)

	w := doJSON(t, router, http.MethodPost, "/tags", `{"name": "home"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var tag models.Tag
	if err := json.Unmarshal(w.Body.Bytes(), &tag); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if tag.Name != "home" {
		t.Errorf("Expected name 'home', got %q", tag.Name)
	}
	if tag.UserID != owner {
		t.Errorf("Expected owner %v, got %v", owner, tag.UserID)
	}
}

func TestCreateTagValidation(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "alice")
	router := setupTagRouter(db, owner)

	tests := []struct {
		body     string
		expected string
	}{
		{`{}`, "This field is required."},
		{`{"name": null}`, "This field may not be null."},
		{`{"name": "   "}`, "This field may not be blank."},
	}

	for _, tt := range tests {
		w := doJSON(t, router, http.MethodPost, "/tags", tt.body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Body %s: expected 400, got %d", tt.body, w.Code)
		}
		errs := decodeFieldErrors(t, w)
		if len(errs["name"]) != 1 || errs["name"][0] != tt.expected {
			t.Errorf("Body %s: expected %q, got %v", tt.body, tt.expected, errs)
		}
	}
}

func TestUpdateTag(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "alice")
	router := setupTagRouter(db, owner)

	w := doJSON(t, router, http.MethodPost, "/tags", `{"name": "old"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	var tag models.Tag
	if err := json.Unmarshal(w.Body.Bytes(), &tag); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	w = doJSON(t, router, http.MethodPut, "/tags/"+tag.ID.String(), `{"name": "new"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tag); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if tag.Name != "new" {
		t.Errorf("Expected renamed tag, got %q", tag.Name)
	}
}

func TestTagOwnerScopingOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	aliceRouter := setupTagRouter(db, alice)
	w := doJSON(t, aliceRouter, http.MethodPost, "/tags", `{"name": "private"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	var tag models.Tag
	if err := json.Unmarshal(w.Body.Bytes(), &tag); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	bobRouter := setupTagRouter(db, bob)
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w = doJSON(t, bobRouter, method, "/tags/"+tag.ID.String(), "")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 for a foreign owner, got %d", method, w.Code)
		}
	}

	w = doJSON(t, bobRouter, http.MethodGet, "/tags", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var tags []models.Tag
	if err := json.Unmarshal(w.Body.Bytes(), &tags); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Expected bob to list no tags, got %d", len(tags))
	}
}

func TestDeleteTag(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "alice")
	router := setupTagRouter(db, owner)

	w := doJSON(t, router, http.MethodPost, "/tags", `{"name": "doomed"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	var tag models.Tag
	if err := json.Unmarshal(w.Body.Bytes(), &tag); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	w = doJSON(t, router, http.MethodDelete, "/tags/"+tag.ID.String(), "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/tags/"+tag.ID.String(), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestListTagsFiltering(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "alice")
	router := setupTagRouter(db, owner)

	for _, name := range []string{"home", "homework", "errands"} {
		if w := doJSON(t, router, http.MethodPost, "/tags", `{"name": "`+name+`"}`); w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", w.Code)
		}
	}

	tests := []struct {
		query    string
		expected int
	}{
		{"", 3},
		{"?name=home", 1},
		{"?search=home", 2},
	}

	for _, tt := range tests {
		w := doJSON(t, router, http.MethodGet, "/tags"+tt.query, "")
		if w.Code != http.StatusOK {
			t.Fatalf("Query %q: expected 200, got %d", tt.query, w.Code)
		}
		var tags []models.Tag
		if err := json.Unmarshal(w.Body.Bytes(), &tags); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if len(tags) != tt.expected {
			t.Errorf("Query %q: expected %d tags, got %d", tt.query, tt.expected, len(tags))
		}
	}
}

func TestTagHandlersWithoutPrincipal(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTagHandler(repositories.NewTagRepository(db))

	router := gin.New()
	router.GET("/tags", handler.ListTags)

	w := doJSON(t, router, http.MethodGet, "/tags", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}
