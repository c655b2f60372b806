package api

import (
	"skillup-tracker/internal/model"
	"skillup-tracker/internal/service"
)

func toActivityResponse(activity model.LearningActivity) ActivityResponse {
	resp := ActivityResponse{
		ID:          activity.ID,
		Topic:       activity.Topic,
		Description: activity.Description,
		Category:    activity.CategoryID,
		Date:        activity.Date.String(),
		Status:      string(activity.Status),
		CreatedAt:   activity.CreatedAt,
		UpdatedAt:   activity.UpdatedAt,
	}
	if activity.CategoryID != nil && activity.Category != nil {
		name, color := activity.Category.Name, activity.Category.Color
		resp.CategoryName = &name
		resp.CategoryColor = &color
	}
	return resp
}

func toActivityResponses(activities []model.LearningActivity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		out = append(out, toActivityResponse(activity))
	}
	return out
}

// toDashboardStatsResponse keeps today's activities in store order.
func toDashboardStatsResponse(stats service.DashboardStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		TotalActivities:     stats.TotalActivities,
		CompletedActivities: stats.CompletedActivities,
		PendingActivities:   stats.PendingActivities,
		CompletionRate:      stats.CompletionRate,
		CurrentStreak:       stats.CurrentStreak,
		TodayActivities:     toActivityResponses(stats.TodayActivities),
	}
}

func toCategoryResponses(categories []model.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, CategoryResponse{ID: category.ID, Name: category.Name, Color: category.Color})
	}
	return out
}

func toProfileResponse(user model.User) ProfileResponse {
	return ProfileResponse{
		ID:         user.ID,
		Username:   user.Username,
		ExternalID: user.ExternalID,
		DateJoined: user.CreatedAt,
	}
}
