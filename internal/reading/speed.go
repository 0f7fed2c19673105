package reading

import (
	"fmt"
	"math"
	"time"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

// RecentSessionWindow is how many of the latest sessions feed the
// reading-speed estimate.
const RecentSessionWindow = 5

// PagesPerMinute derives reading speed from the most recent sessions.
// Reports false when either sum is zero, so callers never divide by zero or
// surface an infinite estimate.
func PagesPerMinute(sessions []entities.ReadingSession) (float64, bool) {
	recent := sessions
	if len(recent) > RecentSessionWindow {
		recent = recent[len(recent)-RecentSessionWindow:]
	}

	var pages int
	var durationMs int64
	for _, s := range recent {
		pages += s.PagesRead
		durationMs += s.Duration
	}
	if pages == 0 || durationMs == 0 {
		return 0, false
	}
	return float64(pages) / (float64(durationMs) / 60000), true
}

// EstimateTimeLeft projects the remaining reading time from recent speed.
// Reports false when no estimate is available.
func EstimateTimeLeft(sessions []entities.ReadingSession, totalPages, currentPage int) (string, bool) {
	ppm, ok := PagesPerMinute(sessions)
	if !ok || totalPages <= 0 {
		return "", false
	}
	remaining := totalPages - currentPage
	if remaining <= 0 {
		return "", false
	}
	minutes := int(math.Ceil(float64(remaining) / ppm))
	return FormatTimeLeft(minutes), true
}

// FormatTimeLeft renders a minute count as "~Nm left", or "~Hh Mm left"
// from an hour up.
func FormatTimeLeft(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("~%dm left", minutes)
	}
	return fmt.Sprintf("~%dh %dm left", minutes/60, minutes%60)
}

// DailyReadingTime sums the duration (ms) of sessions whose start falls on
// the same local calendar date as day.
func DailyReadingTime(sessions []entities.ReadingSession, day time.Time) int64 {
	date := day.Local().Format("2006-01-02")
	var total int64
	for _, s := range sessions {
		if s.StartedAt.Local().Format("2006-01-02") == date {
			total += s.Duration
		}
	}
	return total
}

// Streak counts consecutive goal-met days ending today or yesterday: a day
// still in progress does not break a run that reached yesterday.
func Streak(completedDays []string, today time.Time) int {
	met := make(map[string]struct{}, len(completedDays))
	for _, d := range completedDays {
		met[d] = struct{}{}
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if _, ok := met[day.Format("2006-01-02")]; !ok {
		// Today not yet met; an unbroken run may still end yesterday
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := met[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
