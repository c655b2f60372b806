package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"skillup-tracker/internal/model"
)

// ReminderService builds human-readable progress reports for chat notifications.
type ReminderService struct {
	dashboard *DashboardService
}

func NewReminderService(dashboard *DashboardService) *ReminderService {
	return &ReminderService{dashboard: dashboard}
}

// DailySummary renders the user's dashboard as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User) (string, error) {
	stats, err := s.dashboard.ComputeStats(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return FormatStats(*stats), nil
}

// Reminder renders the evening nudge. Users who already logged something today get
// their stats; everyone else is reminded that the streak is at stake.
func (s *ReminderService) Reminder(ctx context.Context, user model.User) (string, error) {
	stats, err := s.dashboard.ComputeStats(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(stats.TodayActivities) > 0 {
		return FormatStats(*stats), nil
	}

	var builder strings.Builder
	builder.WriteString("⏰ <b>Nothing logged today yet</b>\n")
	if stats.TotalActivities == 0 {
		builder.WriteString("Log your first learning activity with /log to start a streak.")
	} else {
		builder.WriteString("Log something with /log before midnight to keep your streak going.")
	}
	return builder.String(), nil
}

// FormatStats renders dashboard statistics as Telegram HTML.
func FormatStats(stats DashboardStats) string {
	var builder strings.Builder
	builder.WriteString("📊 <b>Learning progress</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", stats.Today))

	builder.WriteString(fmt.Sprintf("🔥 Streak: <b>%d</b> %s\n", stats.CurrentStreak, plural(stats.CurrentStreak, "day", "days")))
	builder.WriteString(fmt.Sprintf("📚 Total: %d\n", stats.TotalActivities))
	builder.WriteString(fmt.Sprintf("✅ Completed: %d\n", stats.CompletedActivities))
	builder.WriteString(fmt.Sprintf("⏳ Pending: %d\n", stats.PendingActivities))
	builder.WriteString(fmt.Sprintf("🎯 Completion rate: %.2f%%\n", stats.CompletionRate))

	builder.WriteString("\n<b>Today</b>\n")
	if len(stats.TodayActivities) == 0 {
		builder.WriteString("• nothing logged yet\n")
	} else {
		for _, activity := range stats.TodayActivities {
			builder.WriteString(FormatActivity(activity))
		}
	}

	return strings.TrimSpace(builder.String())
}

// FormatActivity renders one activity line (plus optional details) as Telegram HTML.
func FormatActivity(activity model.LearningActivity) string {
	var sb strings.Builder

	icon := "⏳"
	if activity.IsCompleted() {
		icon = "✅"
	}

	topic := html.EscapeString(strings.TrimSpace(activity.Topic))
	sb.WriteString(fmt.Sprintf("%s #%d %s", icon, activity.ID, topic))

	if activity.Category != nil {
		if name := strings.TrimSpace(activity.Category.Name); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
		}
	}

	if activity.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(activity.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
