package progression

import (
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/record"
)

// Summarize totals a set history
func Summarize(sets []*domain.LoggedSet) domain.TrainingSummary {
	var summary domain.TrainingSummary
	sessions := make(map[string]struct{})
	for _, set := range sets {
		if set == nil {
			continue
		}
		summary.TotalSets++
		if set.CountsForRecords() {
			summary.WorkingSets++
		}
		if set.Reps != nil {
			summary.TotalReps += *set.Reps
		}
		if v, ok := record.Volume(set); ok {
			summary.TotalVolume += v
		}
		if set.SessionID != "" {
			sessions[set.SessionID] = struct{}{}
		}
	}
	summary.Workouts = len(sessions)
	return summary
}
