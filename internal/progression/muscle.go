package progression

import (
	"math"
	"sort"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

// BuildMuscleGroupDistribution counts working sets per muscle group.
// Each percentage is rounded on its own, so the total may drift from 100.
// Sorted by count descending, then muscle name.
func BuildMuscleGroupDistribution(sets []*domain.LoggedSet, catalog domain.ExerciseCatalog) []domain.MuscleShare {
	counts := make(map[domain.MuscleGroup]int)
	total := 0
	for _, set := range sets {
		if set == nil || !set.CountsForRecords() {
			continue
		}
		meta, ok := catalog.Lookup(set.ExerciseID)
		if !ok {
			continue
		}
		counts[meta.MuscleGroup]++
		total++
	}

	shares := make([]domain.MuscleShare, 0, len(counts))
	for muscle, count := range counts {
		shares = append(shares, domain.MuscleShare{
			Muscle:     muscle,
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(total) * 100)),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Muscle < shares[j].Muscle
	})
	return shares
}
