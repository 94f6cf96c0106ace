package repositories

import (
	"context"
	"errors"
	"strings"

	"todo-api/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TagFilter struct {
	Name   *string
	User   *uuid.UUID
	Search string
}

// TagRepository is the owner-scoped data-access layer for tags.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context, ownerID uuid.UUID, filter TagFilter) ([]models.Tag, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)

	if filter.Name != nil {
		q = q.Where("name = ?", *filter.Name)
	}
	if filter.User != nil {
		// Owner scoping already applies; the user filter can only narrow
		// the result to the caller's own rows or to nothing.
		q = q.Where("user_id = ?", *filter.User)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	tags := make([]models.Tag, 0)
	if err := q.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tag, ErrNotFound
	}
	return tag, err
}

func (r *TagRepository) Create(ctx context.Context, ownerID uuid.UUID, name string) (models.Tag, error) {
	tag := models.Tag{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: ownerID,
		Name:   name,
	}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

func (r *TagRepository) Update(ctx context.Context, ownerID, id uuid.UUID, name string) (models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		tag.Name = name
		return tx.Save(&tag).Error
	})
	if err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

// Delete removes the tag and detaches it from every task in the same
// transaction. The tasks themselves survive.
func (r *TagRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM task_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}
