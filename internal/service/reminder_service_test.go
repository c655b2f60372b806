package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillup-tracker/internal/model"
)

func TestFormatStats(t *testing.T) {
	today := model.DateOf(fixedNow)
	stats := Summarize([]model.LearningActivity{
		{ID: 3, Topic: "Rust <ownership>", Date: today, Status: model.StatusCompleted, Category: &model.Category{Name: "Backend"}},
		{ID: 2, Topic: "Flexbox", Description: "finish the exercises", Date: today, Status: model.StatusPending},
		{ID: 1, Topic: "Docker", Date: today.AddDays(-1), Status: model.StatusCompleted},
	}, today)

	text := FormatStats(stats)

	assert.Contains(t, text, "2026-10-16")
	assert.Contains(t, text, "Streak: <b>2</b> days")
	assert.Contains(t, text, "Completion rate: 66.67%")
	assert.Contains(t, text, "✅ #3 Rust &lt;ownership&gt; <i>(Backend)</i>")
	assert.Contains(t, text, "⏳ #2 Flexbox\n   📝 finish the exercises")
	assert.NotContains(t, text, "Docker")
}

func TestReminder(t *testing.T) {
	today := model.DateOf(fixedNow)
	ctx := context.Background()

	t.Run("new user", func(t *testing.T) {
		svc := NewReminderService(newTestDashboard(&fakeLister{}))
		text, err := svc.Reminder(ctx, model.User{ID: 1})
		require.NoError(t, err)
		assert.Contains(t, text, "first learning activity")
	})

	t.Run("streak at stake", func(t *testing.T) {
		lister := &fakeLister{activities: []model.LearningActivity{activityOn(1, today.AddDays(-1), model.StatusCompleted)}}
		svc := NewReminderService(newTestDashboard(lister))
		text, err := svc.Reminder(ctx, model.User{ID: 1})
		require.NoError(t, err)
		assert.Contains(t, text, "keep your streak going")
	})

	t.Run("already logged", func(t *testing.T) {
		lister := &fakeLister{activities: []model.LearningActivity{activityOn(1, today, model.StatusCompleted)}}
		svc := NewReminderService(newTestDashboard(lister))
		text, err := svc.Reminder(ctx, model.User{ID: 1})
		require.NoError(t, err)
		assert.Contains(t, text, "Streak: <b>1</b> day\n")
	})
}
