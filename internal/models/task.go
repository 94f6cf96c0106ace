package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/datatypes"
)

const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"user" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description string     `json:"description"`
	Priority    int        `json:"priority" gorm:"not null;default:2"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	FinishAt    *time.Time `json:"finish_at"`

	ParentTaskID *uuid.UUID `json:"parent_task" gorm:"type:uuid;index"`
	ParentTask   *Task      `json:"-" gorm:"foreignKey:ParentTaskID;constraint:OnDelete:CASCADE"`

	Attachment *string        `json:"attachment"`
	RelatedURL *string        `json:"related_url" gorm:"size:200"`
	Image      *string        `json:"image"`
	ExtraData  datatypes.JSON `json:"extra_data" gorm:"type:json"`

	Tags []Tag `json:"-" gorm:"many2many:task_tags"`
}

// TagIDs returns the identifiers of the loaded tag associations.
func (t *Task) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Tags))
	for _, tag := range t.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}
