package progression

import "github.com/mansoorceksport/liftlog/internal/domain"

const (
	minRPE = 1
	maxRPE = 10
)

// BuildRpeDistribution summarizes perceived effort over rated sets.
// The distribution always carries every bucket from 1 to 10.
func BuildRpeDistribution(sets []*domain.LoggedSet) domain.RpeSummary {
	dist := make(map[int]int, maxRPE)
	for r := minRPE; r <= maxRPE; r++ {
		dist[r] = 0
	}

	trend := newDailySeries()
	var sum, rated int
	for _, set := range sets {
		if set == nil || set.RPE == nil {
			continue
		}
		rpe := *set.RPE
		if rpe < minRPE || rpe > maxRPE {
			continue
		}
		dist[rpe]++
		sum += rpe
		rated++
		trend.add(set.LoggedAt, float64(rpe))
	}

	summary := domain.RpeSummary{
		TotalRatedSets: rated,
		Distribution:   dist,
		Trend: trend.points(func(vs []float64) float64 {
			return round1(meanOf(vs))
		}),
	}
	if rated > 0 {
		summary.AvgRpe = round1(float64(sum) / float64(rated))
	}
	return summary
}
