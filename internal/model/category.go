package model

import "time"

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

// Category groups activities by area (frontend, databases, devops, etc.).
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;index;not null"`
	Color     string `gorm:"size:7;default:#3B82F6"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
