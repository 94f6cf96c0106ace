package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"todo-api/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// taskOrderable lists the fields the ordering query parameter may name.
var taskOrderable = map[string]bool{
	"created_at": true,
	"finish_at":  true,
	"priority":   true,
}

type TaskFilter struct {
	Priority  *int
	Completed *bool
	CreatedAt *time.Time
	FinishAt  *time.Time
	Search    string
	Ordering  []string
}

// TaskRepository is the data-access layer for tasks. Every method takes the
// owner explicitly and never returns or touches another owner's rows.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]models.Task, error) {
	q := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", ownerID)

	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.CreatedAt != nil {
		q = q.Where("created_at = ?", *filter.CreatedAt)
	}
	if filter.FinishAt != nil {
		q = q.Where("finish_at = ?", *filter.FinishAt)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", needle, needle)
	}

	for _, field := range filter.Ordering {
		desc := strings.HasPrefix(field, "-")
		name := strings.TrimPrefix(field, "-")
		if !taskOrderable[name] {
			continue
		}
		if desc {
			name += " DESC"
		}
		q = q.Order(name)
	}

	tasks := make([]models.Task, 0)
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return task, ErrNotFound
	}
	return task, err
}

// ResolveTags loads the caller's tags for the given ids. Ids that do not
// resolve within the owner's tag set are reported back as missing; they are
// indistinguishable from ids that exist under another owner.
func (r *TaskRepository) ResolveTags(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.Tag, []uuid.UUID, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil, nil
	}

	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Find(&tags).Error
	if err != nil {
		return nil, nil, err
	}

	found := make(map[uuid.UUID]bool, len(tags))
	for _, tag := range tags {
		found[tag.ID] = true
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return tags, missing, nil
}

// Create inserts the task and its tag associations in one transaction. The
// id and owner are set here; created_at is set by the store.
func (r *TaskRepository) Create(ctx context.Context, ownerID uuid.UUID, task models.Task, tags []models.Tag) (models.Task, error) {
	task.ID = uuid.Must(uuid.NewV4())
	task.UserID = ownerID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(&task).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(&task).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return r.Get(ctx, ownerID, task.ID)
}

// Update applies full-replacement semantics. A nil tags pointer leaves the
// existing associations untouched; a non-nil one replaces them wholesale.
// created_at is never overwritten.
func (r *TaskRepository) Update(ctx context.Context, ownerID uuid.UUID, updated models.Task, tags *[]models.Tag) (models.Task, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("id = ? AND user_id = ?", updated.ID, ownerID).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		task.Title = updated.Title
		task.Description = updated.Description
		task.Priority = updated.Priority
		task.Completed = updated.Completed
		task.FinishAt = updated.FinishAt
		task.ParentTaskID = updated.ParentTaskID
		task.Attachment = updated.Attachment
		task.RelatedURL = updated.RelatedURL
		task.Image = updated.Image
		task.ExtraData = updated.ExtraData

		if err := tx.Omit("Tags").Save(&task).Error; err != nil {
			return err
		}
		if tags != nil {
			if err := tx.Model(&task).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return r.Get(ctx, ownerID, updated.ID)
}

// MarkCompleted sets completed on an owned task. Calling it on an already
// completed task re-asserts the flag and succeeds.
func (r *TaskRepository) MarkCompleted(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("completed", true)
	if result.Error != nil {
		return models.Task{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Task{}, ErrNotFound
	}
	return r.Get(ctx, ownerID, id)
}

// Delete removes the task, its tag-join rows, and every descendant task in
// a single transaction.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		doomed := []uuid.UUID{id}
		seen := map[uuid.UUID]bool{id: true}
		frontier := []uuid.UUID{id}
		for len(frontier) > 0 {
			var children []uuid.UUID
			err := tx.Model(&models.Task{}).
				Where("parent_task_id IN ?", frontier).
				Pluck("id", &children).Error
			if err != nil {
				return err
			}
			// A cycle in parent links must not re-feed the frontier.
			frontier = frontier[:0]
			for _, child := range children {
				if seen[child] {
					continue
				}
				seen[child] = true
				doomed = append(doomed, child)
				frontier = append(frontier, child)
			}
		}

		if err := tx.Exec("DELETE FROM task_tags WHERE task_id IN ?", doomed).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", doomed).Delete(&models.Task{}).Error
	})
}
