package model

import "time"

// ActivityStatus is the lifecycle state of a learning activity.
type ActivityStatus string

const (
	StatusPending   ActivityStatus = "pending"
	StatusCompleted ActivityStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s ActivityStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// LearningActivity is a single logged learning event.
type LearningActivity struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;index:idx_activity_user_date,priority:1;not null"`
	Topic       string `gorm:"size:200;not null"`
	Description string
	CategoryID  *uint          `gorm:"index"`
	Category    *Category      `gorm:"constraint:OnDelete:SET NULL"`
	Date        Date           `gorm:"index:idx_activity_user_date,priority:2;not null"`
	Status      ActivityStatus `gorm:"size:10;default:pending;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCompleted reports whether the activity has been marked done.
func (a LearningActivity) IsCompleted() bool {
	return a.Status == StatusCompleted
}
