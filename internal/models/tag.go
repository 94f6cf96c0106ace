package models

import (
	"github.com/gofrs/uuid"
)

type Tag struct {
	ID     uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID uuid.UUID `json:"user" gorm:"type:uuid;not null;index"`
	Name   string    `json:"name" gorm:"size:30;not null"`

	Tasks []Task `json:"-" gorm:"many2many:task_tags"`
}
