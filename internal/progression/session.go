package progression

import (
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

// BuildSessionTrend plots average mood and total minutes trained per day.
// Open sessions contribute to mood only.
func BuildSessionTrend(sessions []*domain.WorkoutSession, from *time.Time) domain.SessionTrend {
	mood := newDailySeries()
	minutes := newDailySeries()
	for _, s := range sessions {
		if s == nil || !inRange(s.StartedAt, from) {
			continue
		}
		if s.Mood != nil {
			mood.add(s.StartedAt, float64(*s.Mood))
		}
		if s.EndedAt != nil {
			minutes.add(s.StartedAt, s.Duration().Minutes())
		}
	}

	return domain.SessionTrend{
		Mood: mood.points(func(vs []float64) float64 {
			return round1(meanOf(vs))
		}),
		Duration: minutes.points(func(vs []float64) float64 {
			return round1(sumOf(vs))
		}),
	}
}
