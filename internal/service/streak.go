package service

import "skillup-tracker/internal/model"

// ComputeStreak counts consecutive days, ending at today, that contain at least
// one entry in dates. Repeated dates count once; an empty today yields 0.
func ComputeStreak(dates []model.Date, today model.Date) int {
	if len(dates) == 0 {
		return 0
	}

	days := make(map[model.Date]struct{}, len(dates))
	for _, d := range dates {
		days[d] = struct{}{}
	}

	streak := 0
	for day := today; ; day = day.AddDays(-1) {
		if _, ok := days[day]; !ok {
			return streak
		}
		streak++
	}
}

// ActivityDates extracts the calendar day of every activity.
func ActivityDates(activities []model.LearningActivity) []model.Date {
	dates := make([]model.Date, 0, len(activities))
	for _, a := range activities {
		dates = append(dates, a.Date)
	}
	return dates
}
