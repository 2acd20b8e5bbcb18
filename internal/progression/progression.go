// Package progression turns raw set and session history into chart-ready
// aggregates. Every builder is a pure function over its inputs; callers decide
// the time zone by converting timestamps before handing them in.
package progression

import (
	"math"
	"sort"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

// civilDay identifies a calendar date independent of the clock time
type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) civilDay {
	y, m, d := t.Date()
	return civilDay{year: y, month: m, day: d}
}

func (d civilDay) before(o civilDay) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dailySeries accumulates values per calendar day and renders them in date order
type dailySeries struct {
	days   map[civilDay]time.Time
	values map[civilDay][]float64
}

func newDailySeries() *dailySeries {
	return &dailySeries{
		days:   make(map[civilDay]time.Time),
		values: make(map[civilDay][]float64),
	}
}

func (s *dailySeries) add(at time.Time, v float64) {
	key := dayOf(at)
	if _, ok := s.days[key]; !ok {
		s.days[key] = StartOfDay(at)
	}
	s.values[key] = append(s.values[key], v)
}

// points reduces each day's values with fn, ascending by date
func (s *dailySeries) points(fn func([]float64) float64) []domain.DataPoint {
	keys := make([]civilDay, 0, len(s.days))
	for k := range s.days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

	out := make([]domain.DataPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.DataPoint{Date: s.days[k], Value: fn(s.values[k])})
	}
	return out
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func sumOf(vs []float64) float64 {
	var total float64
	for _, v := range vs {
		total += v
	}
	return total
}

func meanOf(vs []float64) float64 {
	return sumOf(vs) / float64(len(vs))
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func inRange(t time.Time, from *time.Time) bool {
	return from == nil || !t.Before(*from)
}

// SetsSince keeps the sets logged at or after from. A nil from keeps all.
func SetsSince(sets []*domain.LoggedSet, from *time.Time) []*domain.LoggedSet {
	if from == nil {
		return sets
	}
	out := make([]*domain.LoggedSet, 0, len(sets))
	for _, set := range sets {
		if set != nil && inRange(set.LoggedAt, from) {
			out = append(out, set)
		}
	}
	return out
}
