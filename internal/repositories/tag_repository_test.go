package repositories_test

import (
	"context"
	"errors"
	"testing"

	"todo-api/backend/internal/models"
	"todo-api/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

func TestTagRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewTagRepository(db)
	owner := createTestUser(t, db, "alice")

	created, err := repo.Create(context.Background(), owner, "home")
	if err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	if created.UserID != owner {
		t.Errorf("Expected owner %v, got %v", owner, created.UserID)
	}

	got, err := repo.Get(context.Background(), owner, created.ID)
	if err != nil {
		t.Fatalf("Failed to get tag: %v", err)
	}
	if got.Name != "home" {
		t.Errorf("Expected name 'home', got %q", got.Name)
	}
}

func TestTagRepository_OwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewTagRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	tag, err := repo.Create(context.Background(), alice, "private")
	if err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	if _, err := repo.Get(context.Background(), bob, tag.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a foreign owner, got %v", err)
	}
	if _, err := repo.Update(context.Background(), bob, tag.ID, "stolen"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on foreign update, got %v", err)
	}
	if err := repo.Delete(context.Background(), bob, tag.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on foreign delete, got %v", err)
	}

	tags, err := repo.List(context.Background(), bob, repositories.TagFilter{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Expected bob to see no tags, got %d", len(tags))
	}
}

func TestTagRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewTagRepository(db)
	owner := createTestUser(t, db, "alice")

	for _, name := range []string{"home", "homework", "errands"} {
		if _, err := repo.Create(context.Background(), owner, name); err != nil {
			t.Fatalf("Failed to create tag: %v", err)
		}
	}

	name := "home"
	tags, err := repo.List(context.Background(), owner, repositories.TagFilter{Name: &name})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "home" {
		t.Errorf("Name filter should match exactly, got %d tags", len(tags))
	}

	tags, err = repo.List(context.Background(), owner, repositories.TagFilter{Search: "HOME"})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("Search should match case-insensitive substrings, got %d tags", len(tags))
	}
}

func TestTagRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewTagRepository(db)
	owner := createTestUser(t, db, "alice")

	tag, err := repo.Create(context.Background(), owner, "old")
	if err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	updated, err := repo.Update(context.Background(), owner, tag.ID, "new")
	if err != nil {
		t.Fatalf("Failed to update tag: %v", err)
	}
	if updated.Name != "new" {
		t.Errorf("Expected renamed tag, got %q", updated.Name)
	}
}

func TestTagRepository_DeleteDetachesFromTasks(t *testing.T) {
	db := setupTestDB(t)
	tagRepo := repositories.NewTagRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	owner := createTestUser(t, db, "alice")

	tag, err := tagRepo.Create(context.Background(), owner, "home")
	if err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	task, err := taskRepo.Create(context.Background(), owner, models.Task{Title: "Vacuum", Priority: 2}, []models.Tag{tag})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := tagRepo.Delete(context.Background(), owner, tag.ID); err != nil {
		t.Fatalf("Failed to delete tag: %v", err)
	}

	// The task survives with the association gone.
	got, err := taskRepo.Get(context.Background(), owner, task.ID)
	if err != nil {
		t.Fatalf("Expected the task to survive, got %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Expected no tags on the task, got %v", got.Tags)
	}
}

func TestTagRepository_DeleteAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewTagRepository(db)
	owner := createTestUser(t, db, "alice")

	err := repo.Delete(context.Background(), owner, uuid.Must(uuid.NewV4()))
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
