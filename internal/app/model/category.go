package model

import (
	"github.com/google/uuid"
)

// Category is a self-referential tree via ParentID; traversal is done with
// explicit queries on the adjacency list.
type Category struct {
	Base
	Name        string     `gorm:"size:100;not null" json:"name"`
	Slug        string     `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	ImageURL    string     `gorm:"size:500" json:"image_url,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	SortOrder   int        `gorm:"default:0" json:"sort_order"`
}

func (Category) TableName() string {
	return "categories"
}
