package progression

import (
	"math"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/record"
)

// WeekStart returns Monday 00:00 of the week containing t, in t's location
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// BuildWeeklyVolumeTrend returns exactly weeks buckets ending with the week
// containing now, oldest first. Weeks without sets are present with zeros.
// Sets are bucketed in now's location.
func BuildWeeklyVolumeTrend(sets []*domain.LoggedSet, weeks int, now time.Time) []domain.WeekBucket {
	if weeks <= 0 {
		return []domain.WeekBucket{}
	}

	first := WeekStart(now).AddDate(0, 0, -7*(weeks-1))
	buckets := make([]domain.WeekBucket, weeks)
	sessions := make([]map[string]struct{}, weeks)
	for i := range buckets {
		buckets[i].WeekStart = first.AddDate(0, 0, 7*i)
		sessions[i] = make(map[string]struct{})
	}

	for _, set := range sets {
		if set == nil {
			continue
		}
		start := WeekStart(set.LoggedAt.In(now.Location()))
		// Day count rounded so DST shifts don't move a week
		days := int(math.Round(start.Sub(first).Hours() / 24))
		if days < 0 {
			continue
		}
		idx := days / 7
		if idx >= weeks {
			continue
		}

		if v, ok := record.Volume(set); ok {
			buckets[idx].Volume += v
		}
		if set.SessionID != "" {
			sessions[idx][set.SessionID] = struct{}{}
		}
	}

	for i := range buckets {
		buckets[i].Workouts = len(sessions[i])
	}
	return buckets
}
