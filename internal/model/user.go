package model

import "time"

// User is the local record of an identity issued elsewhere.
// ExternalID holds the token subject, or "telegram:<id>" for chat-only users.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	ExternalID string `gorm:"size:191;uniqueIndex;not null"`
	TelegramID *int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Activities []LearningActivity `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
