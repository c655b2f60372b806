package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"skillup-tracker/internal/model"
)

// ActivityLister is the store capability the dashboard needs.
type ActivityLister interface {
	ListByUser(ctx context.Context, userID uint) ([]model.LearningActivity, error)
}

// DashboardStats is the derived progress view of one user. It is never persisted.
type DashboardStats struct {
	Today               model.Date
	TotalActivities     int
	CompletedActivities int
	PendingActivities   int
	CompletionRate      float64
	CurrentStreak       int
	TodayActivities     []model.LearningActivity
}

// DashboardService computes DashboardStats on every call.
type DashboardService struct {
	activities ActivityLister
	loc        *time.Location
	now        func() time.Time
}

func NewDashboardService(activities ActivityLister, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{activities: activities, loc: loc, now: time.Now}
}

// WithClock overrides the time source.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Today returns the current calendar day in the service timezone.
func (s *DashboardService) Today() model.Date {
	return model.Today(s.now(), s.loc)
}

// ComputeStats loads every activity of userID once and derives the dashboard from
// that single snapshot. A failed load fails the whole computation.
func (s *DashboardService) ComputeStats(ctx context.Context, userID uint) (*DashboardStats, error) {
	activities, err := s.activities.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	stats := Summarize(activities, s.Today())
	return &stats, nil
}

// Summarize derives dashboard statistics from activities as of today.
// today_activities keeps the order of the input slice.
func Summarize(activities []model.LearningActivity, today model.Date) DashboardStats {
	stats := DashboardStats{
		Today:           today,
		TotalActivities: len(activities),
		TodayActivities: make([]model.LearningActivity, 0),
	}

	for _, a := range activities {
		switch a.Status {
		case model.StatusCompleted:
			stats.CompletedActivities++
		case model.StatusPending:
			stats.PendingActivities++
		}
		if a.Date == today {
			stats.TodayActivities = append(stats.TodayActivities, a)
		}
	}

	stats.CompletionRate = CompletionRate(stats.CompletedActivities, stats.TotalActivities)
	stats.CurrentStreak = ComputeStreak(ActivityDates(activities), today)
	return stats
}

// CompletionRate returns completed/total as a percentage rounded to two decimals, or 0 for total 0.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(completed) * 100 / float64(total)
	return math.Round(rate*100) / 100
}
