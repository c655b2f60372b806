package api

import (
	"bytes"
	"encoding/json"
	"time"

	"skillup-tracker/internal/model"
)

// CreateActivityRequest is the body of POST /api/activities/.
type CreateActivityRequest struct {
	Topic       string      `json:"topic" binding:"required,max=200"`
	Description string      `json:"description"`
	Category    *uint       `json:"category"`
	Date        *model.Date `json:"date"`
	Status      string      `json:"status" binding:"omitempty,oneof=pending completed"`
}

// UpdateActivityRequest is the body of PUT and PATCH /api/activities/:id/.
// Absent fields are nil; Category distinguishes absent from an explicit null.
type UpdateActivityRequest struct {
	Topic       *string     `json:"topic" binding:"omitempty,max=200"`
	Description *string     `json:"description"`
	Category    OptionalID  `json:"category"`
	Date        *model.Date `json:"date"`
	Status      *string     `json:"status" binding:"omitempty,oneof=pending completed"`
}

// OptionalID is a nullable foreign key that remembers whether it was sent at all.
type OptionalID struct {
	Set   bool
	Value *uint
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// ActivityResponse is the wire representation of a learning activity.
type ActivityResponse struct {
	ID            uint      `json:"id"`
	Topic         string    `json:"topic"`
	Description   string    `json:"description"`
	Category      *uint     `json:"category"`
	CategoryName  *string   `json:"category_name"`
	CategoryColor *string   `json:"category_color"`
	Date          string    `json:"date"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DashboardStatsResponse is the body of GET /api/dashboard/stats/.
type DashboardStatsResponse struct {
	TotalActivities     int                `json:"total_activities"`
	CompletedActivities int                `json:"completed_activities"`
	PendingActivities   int                `json:"pending_activities"`
	CompletionRate      float64            `json:"completion_rate"`
	CurrentStreak       int                `json:"current_streak"`
	TodayActivities     []ActivityResponse `json:"today_activities"`
}

type CategoryResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ProfileResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	ExternalID string    `json:"external_id"`
	DateJoined time.Time `json:"date_joined"`
}
